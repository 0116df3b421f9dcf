// Package handler はanalyticsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/analytics/domain/entity"
	"portfolio_backend/internal/feature/analytics/transport/http/dto"
	pdomain "portfolio_backend/internal/feature/portfolio/domain"
	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// AnalyticsUsecase はパフォーマンス・リスク分析のユースケースインターフェイスです。
// Goの慣例に従い、利用者（handler）側で定義します。
type AnalyticsUsecase interface {
	Performance(ctx context.Context, weights pentity.Weights, days int) (entity.PerformanceSeries, entity.PerformanceStats, []entity.RollingPoint, error)
	Risk(ctx context.Context, weights pentity.Weights, days int) ([]entity.RiskContribution, error)
}

// AnalyticsHandler は分析系エンドポイントのHTTPリクエストを処理します。
type AnalyticsHandler struct {
	uc AnalyticsUsecase
}

// NewAnalyticsHandler は指定されたusecaseでAnalyticsHandlerの新しいインスタンスを生成します。
func NewAnalyticsHandler(uc AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// Performance はウェイトベクトルの実績パフォーマンスを返します。
//
// エンドポイント例:
// POST /analytics/performance {"weights":{"AAPL":0.5,"MSFT":0.5},"days":300}
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	var req dto.PerformanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	series, stats, rolling, err := h.uc.Performance(c.Request.Context(), req.Weights, req.Days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PerformanceResp{Series: series, Stats: stats, RollingSharpe: rolling})
}

// Risk はウェイトベクトルの限界リスク寄与（MCTR）を返します。
//
// エンドポイント例:
// POST /analytics/risk {"weights":{"AAPL":0.5,"MSFT":0.5}}
func (h *AnalyticsHandler) Risk(c *gin.Context) {
	var req dto.RiskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	contribs, err := h.uc.Risk(c.Request.Context(), req.Weights, req.Days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RiskResp{Contributions: contribs})
}

// writeError はデータ品質エラーを422、それ以外を502にマップします。
func (h *AnalyticsHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, pdomain.ErrInsufficientAssets) || errors.Is(err, pdomain.ErrCovarianceRegularization) {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
}
