// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/transport/http/dto"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// MatrixBuilder は保存済み価格からリターン行列を構築するインターフェイスです。
// Goの慣例に従い、利用者（handler）側で定義します。
type MatrixBuilder interface {
	BuildReturnMatrix(ctx context.Context, symbols []string, days int) (entity.ReturnMatrix, map[string]entity.AssetClass, error)
}

// PortfolioOptimizer は最適化パイプラインのユースケースインターフェイスです。
type PortfolioOptimizer interface {
	Optimize(raw entity.ReturnMatrix, classes map[string]entity.AssetClass, cfg usecase.OptimizeConfig) (entity.OptimizationResult, entity.CleanReport, error)
	FrontierFromRaw(raw entity.ReturnMatrix, classes map[string]entity.AssetClass, cfg usecase.OptimizeConfig, points int) ([]entity.FrontierPoint, error)
}

// PortfolioHandler はポートフォリオ最適化のHTTPリクエストを処理します。
type PortfolioHandler struct {
	matrix MatrixBuilder
	uc     PortfolioOptimizer
}

// NewPortfolioHandler は指定された依存でPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(matrix MatrixBuilder, uc PortfolioOptimizer) *PortfolioHandler {
	return &PortfolioHandler{matrix: matrix, uc: uc}
}

// Optimize は最適化APIエンドポイントを処理します。
//
// エンドポイント例:
// POST /portfolio/optimize {"symbols":["AAPL","MSFT","BTC/USD"],"objective":"max_sharpe"}
//
// データ品質エラー（資産数不足、共分散の正則化失敗）は422を返します。
// ソルバーの失敗はエラーではなく、レスポンスのfallback_usedに現れます。
func (h *PortfolioHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	raw, classes, err := h.matrix.BuildReturnMatrix(c.Request.Context(), req.Symbols, req.Days)
	if err != nil {
		slog.Warn("return matrix build failed", "symbols", req.Symbols, "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, report, err := h.uc.Optimize(raw, classes, configFromReq(req))
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientAssets) || errors.Is(err, domain.ErrCovarianceRegularization) {
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.OptimizeResp{Result: result, Report: report})
}

// Frontier は効率的フロンティアAPIエンドポイントを処理します。
//
// エンドポイント例:
// GET /portfolio/frontier?symbols=AAPL,MSFT,GOOG&days=300&points=50
func (h *PortfolioHandler) Frontier(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	if len(symbols) < 2 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "at least two symbols are required"})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	points, _ := strconv.Atoi(c.DefaultQuery("points", "0"))

	raw, classes, err := h.matrix.BuildReturnMatrix(c.Request.Context(), symbols, days)
	if err != nil {
		slog.Warn("return matrix build failed", "symbols", symbols, "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	pts, err := h.uc.FrontierFromRaw(raw, classes, usecase.DefaultOptimizeConfig(), points)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientAssets) || errors.Is(err, domain.ErrCovarianceRegularization) {
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FrontierResp{Points: pts})
}

// configFromReq はリクエストのオプション項目をデフォルト設定に重ねます。
func configFromReq(req dto.OptimizeReq) usecase.OptimizeConfig {
	cfg := usecase.DefaultOptimizeConfig()
	if req.Objective != "" {
		cfg.Objective = entity.Objective(req.Objective)
	}
	cfg.TargetReturn = req.TargetReturn
	if req.LowerBound != nil {
		cfg.LowerBound = *req.LowerBound
	}
	if req.UpperBound != nil {
		cfg.UpperBound = *req.UpperBound
	}
	if req.RiskFreeRate != nil {
		cfg.RiskFreeRate = *req.RiskFreeRate
	}
	return cfg
}

// splitSymbols はカンマ区切りの銘柄リストをパースします。
func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
