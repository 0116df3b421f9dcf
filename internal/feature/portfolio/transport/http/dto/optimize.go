// Package dto はportfolioフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "portfolio_backend/internal/feature/portfolio/domain/entity"

// OptimizeReq は/portfolio/optimizeエンドポイントのリクエストボディを表します。
// 省略されたパラメータにはサーバー側のデフォルト値が使われます。
type OptimizeReq struct {
	Symbols      []string `json:"symbols" binding:"required,min=2"`
	Objective    string   `json:"objective" binding:"omitempty,oneof=max_sharpe min_volatility efficient_return"`
	TargetReturn float64  `json:"target_return"` // efficient_return のみで使用
	LowerBound   *float64 `json:"lower_bound"`
	UpperBound   *float64 `json:"upper_bound"`
	RiskFreeRate *float64 `json:"risk_free_rate"`
	Days         int      `json:"days" binding:"omitempty,min=0"`
}

// OptimizeResp は最適化結果と浄化レポートをまとめたレスポンスです。
type OptimizeResp struct {
	Result entity.OptimizationResult `json:"result"`
	Report entity.CleanReport        `json:"report"`
}

// FrontierResp は効率的フロンティアのサンプル点列です。
type FrontierResp struct {
	Points []entity.FrontierPoint `json:"points"`
}
