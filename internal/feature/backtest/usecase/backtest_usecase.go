package usecase

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	aentity "portfolio_backend/internal/feature/analytics/domain/entity"
	"portfolio_backend/internal/feature/backtest/domain/entity"
	prusecase "portfolio_backend/internal/feature/prices/usecase"
)

const (
	// DefaultQuantile はロング/ショート各サイドに入れる銘柄割合です。
	DefaultQuantile = 0.2
	// minAssetsPerDate はポートフォリオ形成に必要な1日あたりの最小銘柄数です。
	minAssetsPerDate = 5
	// backtestLookback はバックテストで取得する日次バーの件数です。
	// モメンタムの長期ウィンドウ分を確保します。
	backtestLookback = MomentumLongWindow * 2
	// tradingPeriods は年率化に使う取引日数です。
	tradingPeriods = 252
)

// BacktestConfig はクォンタイル・バックテストの設定です。
type BacktestConfig struct {
	Quantile  float64 // 各サイドの銘柄割合
	LongShort bool    // false の場合はロングオンリー
}

// DefaultBacktestConfig は文書化されたデフォルト値のBacktestConfigを返します。
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{Quantile: DefaultQuantile, LongShort: true}
}

// BacktestUsecase はマルチファクタースコアに基づくクォンタイル・
// ポートフォリオのバックテストを実行します。
type BacktestUsecase struct {
	prices  prusecase.PriceRepository
	symbols prusecase.SymbolRepository
}

// NewBacktestUsecase は新しいBacktestUsecaseを作成します。
func NewBacktestUsecase(prices prusecase.PriceRepository, symbols prusecase.SymbolRepository) *BacktestUsecase {
	return &BacktestUsecase{prices: prices, symbols: symbols}
}

// Run はユニバース全銘柄のファクターを構築し、日付ごとにスコア上位
// クォンタイルをロング（LongShort時は下位をショート）して実績
// パフォーマンスを計算します。銘柄数が不足する日付はスキップします。
func (bu *BacktestUsecase) Run(ctx context.Context, cfg BacktestConfig) (aentity.PerformanceSeries, aentity.PerformanceStats, error) {
	if cfg.Quantile <= 0 || cfg.Quantile >= 1 {
		cfg.Quantile = DefaultQuantile
	}

	universe, err := bu.symbols.ListActive(ctx)
	if err != nil {
		return aentity.PerformanceSeries{}, aentity.PerformanceStats{}, err
	}

	// 銘柄ごとにファクターを構築して日付でグループ化する
	byDate := make(map[time.Time][]entity.FactorRow)
	for _, sym := range universe {
		bars, err := bu.prices.FindBySymbol(ctx, sym.Code, backtestLookback)
		if err != nil {
			slog.Error("failed to load prices for backtest", "symbol", sym.Code, "error", err)
			continue
		}
		rows := StandardizeFactors(BuildFactors(bars))
		for _, r := range rows {
			if math.IsNaN(r.Score) {
				continue
			}
			d := r.Date.UTC().Truncate(24 * time.Hour)
			byDate[d] = append(byDate[d], r)
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := aentity.PerformanceSeries{}
	wealth := 1.0
	for _, d := range dates {
		group := byDate[d]
		if len(group) < minAssetsPerDate {
			continue
		}
		positions := formPositions(group, cfg)
		if len(positions) == 0 {
			continue
		}
		var r float64
		for _, p := range positions {
			r += p.Weight * p.Return
		}
		series.Dates = append(series.Dates, d)
		series.Returns = append(series.Returns, r)
		wealth *= 1 + r
		series.Cumulative = append(series.Cumulative, wealth-1)
	}

	return series, performanceStats(series), nil
}

// formPositions はスコア順に上位クォンタイルをロング、LongShort時は
// 下位クォンタイルをショートするポジションを作ります。各サイド内は
// 等ウェイトです。
func formPositions(group []entity.FactorRow, cfg BacktestConfig) []entity.Position {
	cutoff := int(float64(len(group)) * cfg.Quantile)
	if cutoff == 0 {
		return nil
	}

	sorted := append([]entity.FactorRow(nil), group...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	positions := make([]entity.Position, 0, 2*cutoff)
	for _, r := range sorted[:cutoff] {
		positions = append(positions, entity.Position{
			Symbol: r.Symbol,
			Date:   r.Date,
			Weight: 1 / float64(cutoff),
			Return: zeroIfNaN(r.Return),
		})
	}
	if cfg.LongShort {
		for _, r := range sorted[len(sorted)-cutoff:] {
			positions = append(positions, entity.Position{
				Symbol: r.Symbol,
				Date:   r.Date,
				Weight: -1 / float64(cutoff),
				Return: zeroIfNaN(r.Return),
			})
		}
	}
	return positions
}

// performanceStats は日次リターン系列からスカラー統計を計算します。
func performanceStats(series aentity.PerformanceSeries) aentity.PerformanceStats {
	stats := aentity.PerformanceStats{}
	if len(series.Returns) == 0 {
		return stats
	}
	mean := stat.Mean(series.Returns, nil)
	sd := stat.StdDev(series.Returns, nil)

	stats.CumulativeReturn = series.Cumulative[len(series.Cumulative)-1]
	stats.AnnualizedReturn = mean * tradingPeriods
	stats.AnnualizedVolatility = sd * math.Sqrt(tradingPeriods)
	if stats.AnnualizedVolatility > 0 {
		s := stats.AnnualizedReturn / stats.AnnualizedVolatility
		stats.SharpeRatio = &s
	}

	worst := 0.0
	peak := math.Inf(-1)
	for _, c := range series.Cumulative {
		w := 1 + c
		if w > peak {
			peak = w
		}
		if peak > 0 {
			if dd := w/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	stats.MaxDrawdown = worst
	return stats
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
