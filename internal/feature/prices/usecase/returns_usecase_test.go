package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
)

// mockPriceRepository はPriceRepositoryのテスト用モック実装です。
type mockPriceRepository struct {
	FindBySymbolFunc func(ctx context.Context, symbol string, limit int) ([]entity.Price, error)
	UpsertBatchFunc  func(ctx context.Context, prices []entity.Price) error
	UpsertCalls      int
}

func (m *mockPriceRepository) UpsertBatch(ctx context.Context, prices []entity.Price) error {
	m.UpsertCalls++
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, prices)
	}
	return nil
}

func (m *mockPriceRepository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
	if m.FindBySymbolFunc != nil {
		return m.FindBySymbolFunc(ctx, symbol, limit)
	}
	return nil, errors.New("FindBySymbolFunc is not implemented")
}

// mockSymbolRepository はSymbolRepositoryのテスト用モック実装です。
type mockSymbolRepository struct {
	ListActiveFunc func(ctx context.Context) ([]entity.Symbol, error)
}

func (m *mockSymbolRepository) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func pricesFromCloses(symbol string, start time.Time, closes []float64) []entity.Price {
	out := make([]entity.Price, len(closes))
	for i, c := range closes {
		out[i] = entity.Price{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i),
			Close:  c,
		}
	}
	return out
}

func TestReturnsUsecase_BuildReturnMatrix(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := &mockPriceRepository{
		FindBySymbolFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
			assert.Equal(t, 11, limit, "one extra bar for the first return")
			switch symbol {
			case "AAA":
				return pricesFromCloses("AAA", base, []float64{100, 110, 99}), nil
			case "BBB":
				return pricesFromCloses("BBB", base, []float64{50, 50, 55}), nil
			}
			return nil, nil
		},
	}
	symbols := &mockSymbolRepository{
		ListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) {
			return []entity.Symbol{
				{Code: "AAA", Class: pentity.AssetClassEquity, Active: true},
				{Code: "BBB", Class: pentity.AssetClassCrypto, Active: true},
			}, nil
		},
	}

	uc := NewReturnsUsecase(prices, symbols)
	m, classes, err := uc.BuildReturnMatrix(context.Background(), []string{"AAA", "BBB"}, 10)
	require.NoError(t, err)

	require.Equal(t, []string{"AAA", "BBB"}, m.Symbols)
	require.Len(t, m.Dates, 2, "returns start at the second bar")

	assert.InDelta(t, 0.10, m.Data[0][0], 1e-9)
	assert.InDelta(t, -0.10, m.Data[1][0], 1e-9)
	assert.InDelta(t, 0.00, m.Data[0][1], 1e-9)
	assert.InDelta(t, 0.10, m.Data[1][1], 1e-9)

	assert.Equal(t, pentity.AssetClassEquity, classes["AAA"])
	assert.Equal(t, pentity.AssetClassCrypto, classes["BBB"])
}

// TestReturnsUsecase_BuildReturnMatrix_MissingDates は銘柄ごとに存在しない
// 日付のセルがNaNになることを検証します。
func TestReturnsUsecase_BuildReturnMatrix_MissingDates(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := &mockPriceRepository{
		FindBySymbolFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
			if symbol == "AAA" {
				return pricesFromCloses("AAA", base, []float64{100, 110, 121}), nil
			}
			// BBBは1日遅れて始まる
			return pricesFromCloses("BBB", base.AddDate(0, 0, 1), []float64{50, 55}), nil
		},
	}
	uc := NewReturnsUsecase(prices, &mockSymbolRepository{})

	m, _, err := uc.BuildReturnMatrix(context.Background(), []string{"AAA", "BBB"}, 10)
	require.NoError(t, err)

	require.Len(t, m.Dates, 2)
	// BBBの最初のリターン日はAAAの2番目のリターン日
	assert.True(t, math.IsNaN(m.Data[0][1]))
	assert.InDelta(t, 0.10, m.Data[1][1], 1e-9)
}

// TestReturnsUsecase_BuildReturnMatrix_ZeroPrice はゼロ割りが+Infセルとして
// 表現されることを検証します（下流のクリーナーが欠損として扱う）。
func TestReturnsUsecase_BuildReturnMatrix_ZeroPrice(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := &mockPriceRepository{
		FindBySymbolFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
			return pricesFromCloses("AAA", base, []float64{0, 110}), nil
		},
	}
	uc := NewReturnsUsecase(prices, &mockSymbolRepository{})

	m, _, err := uc.BuildReturnMatrix(context.Background(), []string{"AAA"}, 10)
	require.NoError(t, err)
	assert.True(t, math.IsInf(m.Data[0][0], 1))
}

func TestReturnsUsecase_BuildReturnMatrix_NoHistory(t *testing.T) {
	t.Parallel()

	prices := &mockPriceRepository{
		FindBySymbolFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
			return nil, nil
		},
	}
	uc := NewReturnsUsecase(prices, &mockSymbolRepository{})

	_, _, err := uc.BuildReturnMatrix(context.Background(), []string{"AAA"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price history")
}

func TestReturnsUsecase_BuildReturnMatrix_DaysClamped(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var seenLimit int
	prices := &mockPriceRepository{
		FindBySymbolFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
			seenLimit = limit
			return pricesFromCloses("AAA", base, []float64{100, 110, 99}), nil
		},
	}
	uc := NewReturnsUsecase(prices, &mockSymbolRepository{})

	tests := []struct {
		name      string
		days      int
		wantLimit int
	}{
		{"zero uses default", 0, DefaultReturnDays + 1},
		{"negative uses default", -5, DefaultReturnDays + 1},
		{"above max uses default", MaxReturnDays + 1, DefaultReturnDays + 1},
		{"valid passes through", 30, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := uc.BuildReturnMatrix(context.Background(), []string{"AAA"}, tt.days)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, seenLimit)
		})
	}
}
