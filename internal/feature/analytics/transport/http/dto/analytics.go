// Package dto はanalyticsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "portfolio_backend/internal/feature/analytics/domain/entity"

// PerformanceReq は/analytics/performanceエンドポイントのリクエストボディです。
type PerformanceReq struct {
	Weights map[string]float64 `json:"weights" binding:"required,min=1"`
	Days    int                `json:"days" binding:"omitempty,min=0"`
}

// PerformanceResp は実績パフォーマンスの系列と統計です。
type PerformanceResp struct {
	Series        entity.PerformanceSeries `json:"series"`
	Stats         entity.PerformanceStats  `json:"stats"`
	RollingSharpe []entity.RollingPoint    `json:"rolling_sharpe"`
}

// RiskReq は/analytics/riskエンドポイントのリクエストボディです。
type RiskReq struct {
	Weights map[string]float64 `json:"weights" binding:"required,min=1"`
	Days    int                `json:"days" binding:"omitempty,min=0"`
}

// RiskResp は限界リスク寄与の一覧です。
type RiskResp struct {
	Contributions []entity.RiskContribution `json:"contributions"`
}
