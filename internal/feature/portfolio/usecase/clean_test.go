package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// testMatrix builds a ReturnMatrix with sequential dates for the given columns.
func testMatrix(symbols []string, data [][]float64) entity.ReturnMatrix {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(data))
	for i := range data {
		dates[i] = base.AddDate(0, 0, i)
	}
	return entity.ReturnMatrix{Dates: dates, Symbols: symbols, Data: data}
}

func allEquity(symbols []string) map[string]entity.AssetClass {
	classes := make(map[string]entity.AssetClass, len(symbols))
	for _, s := range symbols {
		classes[s] = entity.AssetClassEquity
	}
	return classes
}

func TestCleaner_Clean_ReplacesInfAndFills(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	nan := math.NaN()
	m := testMatrix([]string{"AAA", "BBB"}, [][]float64{
		{0.01, 0.02},
		{math.Inf(1), 0.01},
		{nan, -0.02},
		{0.03, math.Inf(-1)},
		{-0.01, 0.02},
	})

	cleaned, report, err := c.Clean(m, allEquity(m.Symbols))
	require.NoError(t, err)

	assert.Equal(t, 2, report.InfsReplaced)
	// AAA: 2セル（Inf由来とNaN）がffillで0.01に、BBB: 1セルがffillで-0.02に
	assert.Equal(t, 3, report.CellsFilled)
	assert.InDelta(t, 0.01, cleaned.Data[1][0], 1e-12)
	assert.InDelta(t, 0.01, cleaned.Data[2][0], 1e-12)
	assert.InDelta(t, -0.02, cleaned.Data[3][1], 1e-12)

	// 入力は変更されない
	assert.True(t, math.IsInf(m.Data[1][0], 1))
	assert.True(t, math.IsNaN(m.Data[2][0]))
}

func TestCleaner_Clean_BackwardAndZeroFill(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	nan := math.NaN()
	// AAAは先頭が欠損（bfill対象）
	m := testMatrix([]string{"AAA", "BBB"}, [][]float64{
		{nan, 0.02},
		{nan, -0.01},
		{0.05, 0.01},
		{0.01, 0.03},
	})

	cleaned, report, err := c.Clean(m, allEquity(m.Symbols))
	require.NoError(t, err)

	assert.InDelta(t, 0.05, cleaned.Data[0][0], 1e-12)
	assert.InDelta(t, 0.05, cleaned.Data[1][0], 1e-12)
	assert.Equal(t, 2, report.CellsFilled)
}

func TestCleaner_Clean_ClipsExtremes(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	m := testMatrix([]string{"AAA", "BBB"}, [][]float64{
		{2.5, 0.02},
		{-0.9, 0.01},
		{0.01, -0.02},
		{0.02, 0.015},
	})

	cleaned, report, err := c.Clean(m, allEquity(m.Symbols))
	require.NoError(t, err)

	assert.Equal(t, 2, report.CellsClipped)
	assert.InDelta(t, DefaultClipCeil, cleaned.Data[0][0], 1e-12)
	assert.InDelta(t, DefaultClipFloor, cleaned.Data[1][0], 1e-12)
}

// TestCleaner_Clean_Idempotent は浄化済み行列の再浄化が恒等変換であることを検証します。
func TestCleaner_Clean_Idempotent(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	nan := math.NaN()
	m := testMatrix([]string{"AAA", "BBB", "CCC"}, [][]float64{
		{3.0, 0.02, nan},
		{math.Inf(1), 0.01, 0.04},
		{-0.7, -0.02, 0.01},
		{0.03, 0.015, -0.02},
		{-0.01, 0.02, 0.05},
	})
	classes := allEquity(m.Symbols)

	once, _, err := c.Clean(m, classes)
	require.NoError(t, err)

	twice, report, err := c.Clean(once, classes)
	require.NoError(t, err)

	assert.Zero(t, report.InfsReplaced)
	assert.Zero(t, report.CellsFilled)
	assert.Zero(t, report.CellsClipped)
	assert.Empty(t, report.Dropped)
	assert.Equal(t, once.Symbols, twice.Symbols)
	for i := range once.Data {
		assert.InDeltaSlice(t, once.Data[i], twice.Data[i], 1e-12)
	}
}

// TestCleaner_Clean_DropsByClassThreshold は資産クラスごとの欠損しきい値を検証します。
// 同じ欠損割合（60%）でも、暗号資産（しきい値0.5）は除外され株式（0.8）は残ります。
func TestCleaner_Clean_DropsByClassThreshold(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	nan := math.NaN()
	m := testMatrix([]string{"AAPL", "MSFT", "BTC/USD"}, [][]float64{
		{0.01, 0.02, nan},
		{nan, 0.01, nan},
		{nan, -0.02, nan},
		{0.03, 0.03, 0.08},
		{-0.01, 0.02, -0.05},
	})
	classes := map[string]entity.AssetClass{
		"AAPL":    entity.AssetClassEquity,
		"MSFT":    entity.AssetClassEquity,
		"BTC/USD": entity.AssetClassCrypto,
	}

	cleaned, report, err := c.Clean(m, classes)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cleaned.Symbols)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, "BTC/USD", report.Dropped[0].Symbol)
	assert.Contains(t, report.Dropped[0].Reason, "missing fraction")
}

func TestCleaner_Clean_DropsZeroVariance(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	m := testMatrix([]string{"AAA", "BBB", "FLAT"}, [][]float64{
		{0.01, 0.02, 0.0},
		{0.02, 0.01, 0.0},
		{-0.01, -0.02, 0.0},
		{0.03, 0.015, 0.0},
	})

	cleaned, report, err := c.Clean(m, allEquity(m.Symbols))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB"}, cleaned.Symbols)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, "FLAT", report.Dropped[0].Symbol)
	assert.Equal(t, "zero variance after cleaning", report.Dropped[0].Reason)
}

func TestCleaner_Clean_InsufficientAssets(t *testing.T) {
	t.Parallel()
	c := NewCleaner(DefaultCleanConfig())

	// 1列は分散ゼロで除外され、残りは1資産のみ
	m := testMatrix([]string{"AAA", "FLAT"}, [][]float64{
		{0.01, 0.0},
		{0.02, 0.0},
		{-0.01, 0.0},
	})

	_, report, err := c.Clean(m, allEquity(m.Symbols))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientAssets)
	assert.Contains(t, err.Error(), "1 assets remain")
	assert.Len(t, report.Dropped, 1)
}
