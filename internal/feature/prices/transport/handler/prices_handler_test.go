package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
)

// mockReturnsUsecase はReturnsUsecaseのテスト用モック実装です。
type mockReturnsUsecase struct {
	BuildReturnMatrixFunc func(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error)
}

func (m *mockReturnsUsecase) BuildReturnMatrix(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error) {
	if m.BuildReturnMatrixFunc != nil {
		return m.BuildReturnMatrixFunc(ctx, symbols, days)
	}
	return pentity.ReturnMatrix{}, nil, errors.New("BuildReturnMatrixFunc is not implemented")
}

// mockSymbolsUsecase はSymbolsUsecaseのテスト用モック実装です。
type mockSymbolsUsecase struct {
	ListActiveFunc func(ctx context.Context) ([]entity.Symbol, error)
}

func (m *mockSymbolsUsecase) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, errors.New("ListActiveFunc is not implemented")
}

func TestPricesHandler_GetReturns(t *testing.T) {
	gin.SetMode(gin.TestMode)

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	matrix := pentity.ReturnMatrix{
		Dates:   []time.Time{base, base.AddDate(0, 0, 1)},
		Symbols: []string{"AAPL", "BTC/USD"},
		Data: [][]float64{
			{0.01, math.NaN()},
			{-0.005, 0.03},
		},
	}

	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error)
		expectedStatus int
	}{
		{
			name:  "success: returns matrix with nulls for missing cells",
			query: "?symbols=AAPL,BTC/USD&days=300",
			mockFunc: func(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error) {
				assert.Equal(t, []string{"AAPL", "BTC/USD"}, symbols)
				assert.Equal(t, 300, days)
				return matrix, nil, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: missing symbols parameter",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "failure: upstream error",
			query: "?symbols=AAPL",
			mockFunc: func(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error) {
				return pentity.ReturnMatrix{}, nil, errors.New("no price history for AAPL")
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPricesHandler(&mockReturnsUsecase{BuildReturnMatrixFunc: tt.mockFunc}, &mockSymbolsUsecase{})

			router := gin.New()
			router.GET("/returns", h.GetReturns)

			req, _ := http.NewRequest(http.MethodGet, "/returns"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Dates   []string     `json:"dates"`
					Symbols []string     `json:"symbols"`
					Data    [][]*float64 `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, resp.Dates)
				assert.Equal(t, []string{"AAPL", "BTC/USD"}, resp.Symbols)
				// NaNセルはnullとしてシリアライズされる
				require.Len(t, resp.Data, 2)
				assert.Nil(t, resp.Data[0][1])
				require.NotNil(t, resp.Data[1][1])
				assert.InDelta(t, 0.03, *resp.Data[1][1], 1e-12)
			}
		})
	}
}

func TestPricesHandler_GetSymbols(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context) ([]entity.Symbol, error)
		expectedStatus int
		expectedLen    int
	}{
		{
			name: "success: active universe",
			mockFunc: func(ctx context.Context) ([]entity.Symbol, error) {
				return []entity.Symbol{
					{Code: "AAPL", Name: "Apple", Class: pentity.AssetClassEquity, Active: true},
					{Code: "BTC/USD", Name: "Bitcoin", Class: pentity.AssetClassCrypto, Active: true},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedLen:    2,
		},
		{
			name: "failure: repository error",
			mockFunc: func(ctx context.Context) ([]entity.Symbol, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPricesHandler(&mockReturnsUsecase{}, &mockSymbolsUsecase{ListActiveFunc: tt.mockFunc})

			router := gin.New()
			router.GET("/symbols", h.GetSymbols)

			req, _ := http.NewRequest(http.MethodGet, "/symbols", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var list []entity.Symbol
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
				assert.Len(t, list, tt.expectedLen)
			}
		})
	}
}
