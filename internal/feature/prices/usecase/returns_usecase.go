package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultReturnDays はリターン行列構築に使う既定の観測日数です。
	DefaultReturnDays = 300
	// MaxReturnDays はリターン行列の最大観測日数です。
	MaxReturnDays = 5000
)

// ReturnsUsecase は保存済みの日次価格からリターン行列を構築します。
type ReturnsUsecase struct {
	prices  PriceRepository
	symbols SymbolRepository
}

// NewReturnsUsecase は新しいReturnsUsecaseを作成します。
func NewReturnsUsecase(prices PriceRepository, symbols SymbolRepository) *ReturnsUsecase {
	return &ReturnsUsecase{prices: prices, symbols: symbols}
}

// BuildReturnMatrix は指定銘柄の終値から単純日次リターンを計算し、
// 共通の日付軸にピボットした行列と銘柄→資産クラスのマップを返します。
// リターンは銘柄ごとの連続するバー間で計算するため、ある銘柄に存在しない
// 日付のセルは欠損（NaN）になります。欠損日付はエラーではなく、下流の
// クリーナーが資産クラス別のルールで処理します。
func (ru *ReturnsUsecase) BuildReturnMatrix(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error) {
	if days <= 0 || days > MaxReturnDays {
		days = DefaultReturnDays
	}

	classes, err := ru.assetClasses(ctx)
	if err != nil {
		return pentity.ReturnMatrix{}, nil, err
	}

	// 銘柄ごとのリターン系列（日付→リターン）と日付集合を作る
	type column struct {
		symbol  string
		returns map[time.Time]float64
	}
	cols := make([]column, 0, len(symbols))
	dateSet := make(map[time.Time]struct{})
	for _, sym := range symbols {
		// 初日のリターン計算に前日の終値が1本必要
		bars, err := ru.prices.FindBySymbol(ctx, sym, days+1)
		if err != nil {
			return pentity.ReturnMatrix{}, nil, fmt.Errorf("load prices for %s: %w", sym, err)
		}
		col := column{symbol: sym, returns: make(map[time.Time]float64, len(bars))}
		for i := 1; i < len(bars); i++ {
			date := bars[i].Date.UTC().Truncate(24 * time.Hour)
			prev := bars[i-1].Close
			if prev == 0 {
				col.returns[date] = math.Inf(1) // クリーナーが欠損として処理する
			} else {
				col.returns[date] = bars[i].Close/prev - 1
			}
			dateSet[date] = struct{}{}
		}
		cols = append(cols, col)
	}

	if len(dateSet) == 0 {
		return pentity.ReturnMatrix{}, nil, fmt.Errorf("no price history for symbols %v", symbols)
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	m := pentity.ReturnMatrix{
		Dates:   dates,
		Symbols: make([]string, len(cols)),
		Data:    make([][]float64, len(dates)),
	}
	for j, col := range cols {
		m.Symbols[j] = col.symbol
	}
	for i, d := range dates {
		row := make([]float64, len(cols))
		for j, col := range cols {
			if r, ok := col.returns[d]; ok {
				row[j] = r
			} else {
				row[j] = math.NaN()
			}
		}
		m.Data[i] = row
	}
	return m, classes, nil
}

// assetClasses はユニバース定義から銘柄→資産クラスのマップを作ります。
func (ru *ReturnsUsecase) assetClasses(ctx context.Context) (map[string]pentity.AssetClass, error) {
	list, err := ru.symbols.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	classes := make(map[string]pentity.AssetClass, len(list))
	for _, s := range list {
		classes[s.Code] = s.Class
	}
	return classes, nil
}
