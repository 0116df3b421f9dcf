package jwtmw

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"portfolio_backend/internal/api"
)

const (
	// ContextUserID is the gin context key under which the authenticated user ID is stored.
	ContextUserID = "userID"
	// ContextUserEmail is the gin context key for the authenticated user's email.
	ContextUserEmail = "userEmail"
)

// AuthRequired は保護されたルートへのアクセスを認証済みユーザーに限定する
// ミドルウェアを返します。HS256署名・発行者・有効期限を検証し、
// 通過したリクエストのコンテキストにユーザーIDとメールアドレスを載せます。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}

		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured"})
			return
		}

		claims := &AccessClaims{}
		token, err := jwt.ParseWithClaims(
			strings.TrimPrefix(auth, "Bearer "),
			claims,
			func(t *jwt.Token) (any, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
