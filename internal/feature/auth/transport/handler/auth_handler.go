// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/transport/http/dto"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler は /signup と /login のJSONエンドポイントを処理します。
// 失敗の詳細はログにのみ残し、応答は固定文言に畳み込みます
// （メールアドレスの登録有無を外部から観測させないため）。
type AuthHandler struct {
	auth AuthUsecase
	log  *slog.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth, log: slog.Default()}
}

// Signup はユーザー登録を処理します。バリデーション失敗は400、
// 登録失敗（メール重複を含む）は409、成功は201を返します。
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("signup request rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.auth.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		h.log.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "signup failed"})
		return
	}

	h.log.Info("user registered", "email", req.Email)
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "ok"})
}

// Login は資格情報を検証してアクセストークンを返します。
// バリデーション失敗は400、認証失敗（トークン発行失敗も含む）は401です。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("login request rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		return
	}

	h.log.Info("user logged in", "email", req.Email)
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}
