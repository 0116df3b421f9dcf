// Package usecase はファクター構築とクォンタイル・バックテストを実装します。
package usecase

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"portfolio_backend/internal/feature/backtest/domain/entity"
	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	prentity "portfolio_backend/internal/feature/prices/domain/entity"
)

const (
	// MomentumLongWindow はモメンタムの長期ルックバック（約12ヶ月）です。
	MomentumLongWindow = 252
	// MomentumShortWindow はモメンタムから除外する直近期間（約1ヶ月）です。
	MomentumShortWindow = 21
	// VolatilityWindow はボラティリティファクターのウィンドウ幅です。
	VolatilityWindow = 30
	// QualityWindow はクオリティファクター（平滑リターン）のウィンドウ幅です。
	QualityWindow = 60

	// winsorLower / winsorUpper はウィンザライズの分位点です。
	winsorLower = 0.05
	winsorUpper = 0.95
)

// BuildFactors は銘柄ごとの日次バー（日付昇順）からファクター列を構築します。
// モメンタム = 12ヶ月リターン − 1ヶ月リターン。ボラティリティ = 日次
// リターンのローリング標準偏差。バリュー = 終値の逆数（株式のみの代理
// 変数）。クオリティ = 平滑化リターン。ウィンドウが埋まるまでの値はNaNです。
func BuildFactors(bars []prentity.Price) []entity.FactorRow {
	rows := make([]entity.FactorRow, len(bars))
	closes := make([]float64, len(bars))
	returns := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		returns[i] = math.NaN()
		if i > 0 && closes[i-1] != 0 {
			returns[i] = b.Close/closes[i-1] - 1
		}
	}

	for i, b := range bars {
		row := entity.FactorRow{
			Symbol:     b.Symbol,
			Class:      b.Class,
			Date:       b.Date,
			Return:     returns[i],
			Momentum:   math.NaN(),
			Volatility: math.NaN(),
			Value:      math.NaN(),
			Quality:    math.NaN(),
			Score:      math.NaN(),
		}

		if i >= MomentumLongWindow && closes[i-MomentumLongWindow] != 0 && closes[i-MomentumShortWindow] != 0 {
			long := closes[i]/closes[i-MomentumLongWindow] - 1
			short := closes[i]/closes[i-MomentumShortWindow] - 1
			row.Momentum = long - short
		}
		if sd, ok := rollingStdDev(returns, i, VolatilityWindow); ok {
			row.Volatility = sd
		}
		if b.Class == pentity.AssetClassEquity && b.Close != 0 {
			row.Value = 1 / b.Close
		}
		if mean, ok := rollingMean(returns, i, QualityWindow); ok {
			row.Quality = mean
		}
		rows[i] = row
	}
	return rows
}

// StandardizeFactors はファクターをウィンザライズ（5%/95%分位点で裁断）
// してからz-scoreに標準化し、有効なファクターの平均をScoreに設定します。
// 暗号資産はバリューを持たないため、存在するファクターだけで平均します。
func StandardizeFactors(rows []entity.FactorRow) []entity.FactorRow {
	out := append([]entity.FactorRow(nil), rows...)

	fields := []struct {
		get func(*entity.FactorRow) *float64
	}{
		{func(r *entity.FactorRow) *float64 { return &r.Momentum }},
		{func(r *entity.FactorRow) *float64 { return &r.Volatility }},
		{func(r *entity.FactorRow) *float64 { return &r.Value }},
		{func(r *entity.FactorRow) *float64 { return &r.Quality }},
	}

	for _, f := range fields {
		vals := make([]float64, 0, len(out))
		for i := range out {
			if v := *f.get(&out[i]); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) < 2 {
			continue
		}
		sort.Float64s(vals)
		lo := stat.Quantile(winsorLower, stat.Empirical, vals, nil)
		hi := stat.Quantile(winsorUpper, stat.Empirical, vals, nil)

		clipped := make([]float64, 0, len(vals))
		for i := range out {
			p := f.get(&out[i])
			if math.IsNaN(*p) {
				continue
			}
			v := math.Max(lo, math.Min(hi, *p))
			*p = v
			clipped = append(clipped, v)
		}
		mean := stat.Mean(clipped, nil)
		sd := stat.StdDev(clipped, nil)
		for i := range out {
			p := f.get(&out[i])
			if math.IsNaN(*p) {
				continue
			}
			if sd > 0 {
				*p = (*p - mean) / sd
			} else {
				*p = 0
			}
		}
	}

	for i := range out {
		var sum float64
		var n int
		for _, v := range []float64{out[i].Momentum, out[i].Volatility, out[i].Value, out[i].Quality} {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 {
			out[i].Score = sum / float64(n)
		}
	}
	return out
}

// rollingStdDev は位置iを右端とするウィンドウの標準偏差を返します。
func rollingStdDev(xs []float64, i, window int) (float64, bool) {
	vals, ok := rollingWindow(xs, i, window)
	if !ok {
		return 0, false
	}
	return stat.StdDev(vals, nil), true
}

// rollingMean は位置iを右端とするウィンドウの平均を返します。
func rollingMean(xs []float64, i, window int) (float64, bool) {
	vals, ok := rollingWindow(xs, i, window)
	if !ok {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

func rollingWindow(xs []float64, i, window int) ([]float64, bool) {
	if i+1 < window {
		return nil, false
	}
	vals := make([]float64, 0, window)
	for _, v := range xs[i+1-window : i+1] {
		if math.IsNaN(v) {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}
