// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/transport/http/dto"
)

// ReturnsUsecase はリターン行列構築のユースケースインターフェイスです。
// Goの慣例に従い、利用者（handler）側で定義します。
type ReturnsUsecase interface {
	BuildReturnMatrix(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error)
}

// SymbolsUsecase はユニバース参照のユースケースインターフェイスです。
type SymbolsUsecase interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
}

// PricesHandler は価格・リターンデータのHTTPリクエストを処理します。
type PricesHandler struct {
	returns ReturnsUsecase
	symbols SymbolsUsecase
}

// NewPricesHandler は指定されたusecaseでPricesHandlerの新しいインスタンスを生成します。
func NewPricesHandler(returns ReturnsUsecase, symbols SymbolsUsecase) *PricesHandler {
	return &PricesHandler{returns: returns, symbols: symbols}
}

// GetReturns は生のリターン行列をJSONで返します。
//
// エンドポイント例:
// GET /returns?symbols=AAPL,MSFT&days=300
func (h *PricesHandler) GetReturns(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbols query parameter is required"})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	m, _, err := h.returns.BuildReturnMatrix(c.Request.Context(), symbols, days)
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewReturnMatrixResp(m))
}

// GetSymbols は構成済みユニバースの有効銘柄一覧を返します。
//
// エンドポイント例:
// GET /symbols
func (h *PricesHandler) GetSymbols(c *gin.Context) {
	list, err := h.symbols.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
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
