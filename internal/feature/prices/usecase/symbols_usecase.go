package usecase

import (
	"context"

	"portfolio_backend/internal/feature/prices/domain/entity"
)

// SymbolsUsecase は構成済みユニバースの参照ユースケースです。
type SymbolsUsecase struct {
	symbols SymbolRepository
}

// NewSymbolsUsecase は新しいSymbolsUsecaseを作成します。
func NewSymbolsUsecase(symbols SymbolRepository) *SymbolsUsecase {
	return &SymbolsUsecase{symbols: symbols}
}

// ListActive は有効な銘柄の一覧を返します。
func (su *SymbolsUsecase) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	return su.symbols.ListActive(ctx)
}
