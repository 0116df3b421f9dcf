// Package usecase はポートフォリオの実績パフォーマンス分析を実装します。
package usecase

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"portfolio_backend/internal/feature/analytics/domain/entity"
	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultRollingWindow はローリング指標の既定ウィンドウ幅（観測数）です。
	DefaultRollingWindow = 60
	// DefaultTradingPeriods は年率化に使う取引日数です。
	DefaultTradingPeriods = 252
)

// PerformanceConfig はパフォーマンス分析の設定です。
type PerformanceConfig struct {
	TradingPeriods int // 年率化の乗数
	RollingWindow  int // ローリング指標のウィンドウ幅
}

// DefaultPerformanceConfig は文書化されたデフォルト値のPerformanceConfigを返します。
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		TradingPeriods: DefaultTradingPeriods,
		RollingWindow:  DefaultRollingWindow,
	}
}

// PerformanceAnalyzer はウェイトベクトルを過去リターンに適用した
// 実績統計を計算します。
type PerformanceAnalyzer struct {
	cfg PerformanceConfig
}

// NewPerformanceAnalyzer は指定された設定でPerformanceAnalyzerの新しいインスタンスを生成します。
func NewPerformanceAnalyzer(cfg PerformanceConfig) *PerformanceAnalyzer {
	if cfg.TradingPeriods <= 0 {
		cfg.TradingPeriods = DefaultTradingPeriods
	}
	if cfg.RollingWindow <= 1 {
		cfg.RollingWindow = DefaultRollingWindow
	}
	return &PerformanceAnalyzer{cfg: cfg}
}

// Analyze はポートフォリオ日次リターン（各日のウェイト加重和）から
// 累積リターン・年率ボラティリティ・シャープレシオ・最大ドローダウンを
// 計算します。ボラティリティがゼロの場合、シャープレシオは未定義（nil）です。
func (a *PerformanceAnalyzer) Analyze(weights pentity.Weights, m pentity.ReturnMatrix) (entity.PerformanceSeries, entity.PerformanceStats) {
	series := a.portfolioSeries(weights, m)

	stats := entity.PerformanceStats{MaxDrawdown: 0}
	if len(series.Returns) == 0 {
		return series, stats
	}

	periods := float64(a.cfg.TradingPeriods)
	mean := stat.Mean(series.Returns, nil)
	sd := stat.StdDev(series.Returns, nil)

	stats.CumulativeReturn = series.Cumulative[len(series.Cumulative)-1]
	stats.AnnualizedReturn = mean * periods
	stats.AnnualizedVolatility = sd * math.Sqrt(periods)
	if stats.AnnualizedVolatility > 0 {
		s := stats.AnnualizedReturn / stats.AnnualizedVolatility
		stats.SharpeRatio = &s
	}
	stats.MaxDrawdown = maxDrawdown(series.Cumulative)
	return series, stats
}

// RollingSharpe はスライディングウィンドウでシャープレシオを再計算し、
// 日付付き系列として返します。ウィンドウが埋まるまでの日付は含まれません。
func (a *PerformanceAnalyzer) RollingSharpe(weights pentity.Weights, m pentity.ReturnMatrix) []entity.RollingPoint {
	series := a.portfolioSeries(weights, m)
	w := a.cfg.RollingWindow
	if len(series.Returns) < w {
		return nil
	}
	out := make([]entity.RollingPoint, 0, len(series.Returns)-w+1)
	for i := w - 1; i < len(series.Returns); i++ {
		window := series.Returns[i-w+1 : i+1]
		mean := stat.Mean(window, nil)
		sd := stat.StdDev(window, nil)
		sharpe := 0.0
		if sd > 0 {
			sharpe = mean / sd
		}
		out = append(out, entity.RollingPoint{Date: series.Dates[i], Sharpe: sharpe})
	}
	return out
}

// portfolioSeries は各日の加重リターンと累積リターン曲線を構築します。
// ウェイトに無い銘柄は0、行列に無い銘柄は寄与しません。
func (a *PerformanceAnalyzer) portfolioSeries(weights pentity.Weights, m pentity.ReturnMatrix) entity.PerformanceSeries {
	series := entity.PerformanceSeries{
		Dates:      append([]time.Time(nil), m.Dates...),
		Returns:    make([]float64, m.Rows()),
		Cumulative: make([]float64, m.Rows()),
	}
	wealth := 1.0
	for i := 0; i < m.Rows(); i++ {
		var r float64
		for j, sym := range m.Symbols {
			r += weights[sym] * m.Data[i][j]
		}
		series.Returns[i] = r
		wealth *= 1 + r
		series.Cumulative[i] = wealth - 1
	}
	return series
}

// maxDrawdown は累積リターン曲線の最大ピーク・トゥ・トラフ下落率を返します。
func maxDrawdown(cumulative []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, c := range cumulative {
		wealth := 1 + c
		if wealth > peak {
			peak = wealth
		}
		if peak > 0 {
			dd := wealth/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
