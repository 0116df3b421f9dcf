package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

func TestRiskContributions_DiagonalCovariance(t *testing.T) {
	t.Parallel()

	// 対角共分散ではMCTR_i ∝ w_i^2 * σ_i^2
	cov := pentity.CovarianceMatrix{
		Symbols: []string{"AAA", "BBB"},
		Data: [][]float64{
			{0.04, 0.00},
			{0.00, 0.01},
		},
	}
	weights := pentity.Weights{"AAA": 0.5, "BBB": 0.5}

	contribs, err := RiskContributions(weights, cov)
	require.NoError(t, err)
	require.Len(t, contribs, 2)

	// 0.25*0.04 : 0.25*0.01 = 0.8 : 0.2
	assert.InDelta(t, 0.8, contribs[0].Contribution, 1e-9)
	assert.InDelta(t, 0.2, contribs[1].Contribution, 1e-9)

	var total float64
	for _, c := range contribs {
		total += c.Contribution
		assert.InDelta(t, 0.5, c.Weight, 1e-12)
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRiskContributions_SumToOneWithCorrelation(t *testing.T) {
	t.Parallel()

	cov := pentity.CovarianceMatrix{
		Symbols: []string{"AAA", "BBB", "CCC"},
		Data: [][]float64{
			{0.20, 0.05, 0.01},
			{0.05, 0.15, 0.03},
			{0.01, 0.03, 0.10},
		},
	}
	weights := pentity.Weights{"AAA": 0.2, "BBB": 0.3, "CCC": 0.5}

	contribs, err := RiskContributions(weights, cov)
	require.NoError(t, err)

	var total float64
	for _, c := range contribs {
		total += c.Contribution
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRiskContributions_ZeroVariance(t *testing.T) {
	t.Parallel()

	cov := pentity.CovarianceMatrix{
		Symbols: []string{"AAA", "BBB"},
		Data: [][]float64{
			{0.04, 0.00},
			{0.00, 0.01},
		},
	}
	// 全ウェイトがゼロ → 分散ゼロ
	_, err := RiskContributions(pentity.Weights{}, cov)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not positive")
}
