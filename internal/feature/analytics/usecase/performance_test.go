package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

func matrixOf(symbols []string, data [][]float64) pentity.ReturnMatrix {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(data))
	for i := range data {
		dates[i] = base.AddDate(0, 0, i)
	}
	return pentity.ReturnMatrix{Dates: dates, Symbols: symbols, Data: data}
}

func TestPerformanceAnalyzer_Analyze(t *testing.T) {
	t.Parallel()
	a := NewPerformanceAnalyzer(DefaultPerformanceConfig())

	m := matrixOf([]string{"AAA", "BBB"}, [][]float64{
		{0.10, 0.00},
		{-0.20, 0.00},
		{0.10, 0.00},
	})
	weights := pentity.Weights{"AAA": 1.0, "BBB": 0.0}

	series, stats := a.Analyze(weights, m)
	require.Len(t, series.Returns, 3)

	// 累積: 1.1 * 0.8 * 1.1 - 1 = -0.032
	assert.InDelta(t, -0.032, stats.CumulativeReturn, 1e-9)
	assert.InDelta(t, -0.032, series.Cumulative[2], 1e-9)

	// ピーク1.1から谷0.88へのドローダウン: 0.88/1.1 - 1 = -0.2
	assert.InDelta(t, -0.2, stats.MaxDrawdown, 1e-9)

	require.NotNil(t, stats.SharpeRatio)
	assert.False(t, math.IsNaN(*stats.SharpeRatio))
	assert.Greater(t, stats.AnnualizedVolatility, 0.0)
}

// TestPerformanceAnalyzer_Analyze_ZeroVolatility はボラティリティゼロの系列で
// シャープレシオが未定義（nil）になることを検証します。
func TestPerformanceAnalyzer_Analyze_ZeroVolatility(t *testing.T) {
	t.Parallel()
	a := NewPerformanceAnalyzer(DefaultPerformanceConfig())

	m := matrixOf([]string{"AAA"}, [][]float64{{0.0}, {0.0}, {0.0}})
	_, stats := a.Analyze(pentity.Weights{"AAA": 1.0}, m)

	assert.Nil(t, stats.SharpeRatio)
	assert.Zero(t, stats.AnnualizedVolatility)
	assert.Zero(t, stats.MaxDrawdown)
}

func TestPerformanceAnalyzer_Analyze_EmptyMatrix(t *testing.T) {
	t.Parallel()
	a := NewPerformanceAnalyzer(DefaultPerformanceConfig())

	series, stats := a.Analyze(pentity.Weights{}, pentity.ReturnMatrix{})
	assert.Empty(t, series.Returns)
	assert.Nil(t, stats.SharpeRatio)
	assert.Zero(t, stats.CumulativeReturn)
}

// TestPerformanceAnalyzer_Analyze_UnknownSymbols はウェイトに無い銘柄が
// 寄与しないことを検証します。
func TestPerformanceAnalyzer_Analyze_UnknownSymbols(t *testing.T) {
	t.Parallel()
	a := NewPerformanceAnalyzer(DefaultPerformanceConfig())

	m := matrixOf([]string{"AAA", "BBB"}, [][]float64{
		{0.10, 0.50},
		{0.10, -0.50},
	})
	series, _ := a.Analyze(pentity.Weights{"AAA": 1.0}, m)

	assert.InDelta(t, 0.10, series.Returns[0], 1e-12)
	assert.InDelta(t, 0.10, series.Returns[1], 1e-12)
}

func TestPerformanceAnalyzer_RollingSharpe(t *testing.T) {
	t.Parallel()
	a := NewPerformanceAnalyzer(PerformanceConfig{TradingPeriods: 252, RollingWindow: 3})

	m := matrixOf([]string{"AAA"}, [][]float64{
		{0.01}, {0.02}, {-0.01}, {0.03}, {0.01},
	})
	points := a.RollingSharpe(pentity.Weights{"AAA": 1.0}, m)

	// 5観測、ウィンドウ3 → 3点
	require.Len(t, points, 3)
	assert.Equal(t, m.Dates[2], points[0].Date)
	assert.Equal(t, m.Dates[4], points[2].Date)
	for _, p := range points {
		assert.False(t, math.IsNaN(p.Sharpe))
	}
}

func TestPerformanceAnalyzer_RollingSharpe_ShortSeries(t *testing.T) {
	t.Parallel()
	a := NewPerformanceAnalyzer(PerformanceConfig{TradingPeriods: 252, RollingWindow: 10})

	m := matrixOf([]string{"AAA"}, [][]float64{{0.01}, {0.02}})
	assert.Nil(t, a.RollingSharpe(pentity.Weights{"AAA": 1.0}, m))
}
