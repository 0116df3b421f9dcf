package usecase

import (
	"fmt"

	"portfolio_backend/internal/feature/analytics/domain/entity"
	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// RiskContributions は各資産の限界リスク寄与（MCTR）を計算します。
//
//	MCTR_i = w_i * (Σw)_i / (wᵗΣw)
//
// 返り値の寄与率は合計1に正規化されます。ポートフォリオ分散がゼロの
// 場合はエラーを返します（リスクの無い配分に寄与は定義できないため）。
func RiskContributions(weights pentity.Weights, cov pentity.CovarianceMatrix) ([]entity.RiskContribution, error) {
	n := len(cov.Symbols)
	w := make([]float64, n)
	for i, sym := range cov.Symbols {
		w[i] = weights[sym]
	}

	// Σw
	sw := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sw[i] += cov.Data[i][j] * w[j]
		}
	}
	var variance float64
	for i := 0; i < n; i++ {
		variance += w[i] * sw[i]
	}
	if variance <= 0 {
		return nil, fmt.Errorf("portfolio variance %g is not positive", variance)
	}

	mctr := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		mctr[i] = w[i] * sw[i] / variance
		total += mctr[i]
	}

	out := make([]entity.RiskContribution, n)
	for i, sym := range cov.Symbols {
		contrib := mctr[i]
		if total != 0 {
			contrib /= total
		}
		out[i] = entity.RiskContribution{Symbol: sym, Weight: w[i], Contribution: contrib}
	}
	return out, nil
}
