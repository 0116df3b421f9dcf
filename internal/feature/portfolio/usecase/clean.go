// Package usecase はポートフォリオ最適化パイプラインのビジネスロジックを実装します。
package usecase

import (
	"fmt"
	"math"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultClipFloor は日次リターンのクリップ下限です（-50%）。
	DefaultClipFloor = -0.5
	// DefaultClipCeil は日次リターンのクリップ上限です（+100%）。
	DefaultClipCeil = 1.0
	// DefaultEquityMissingThreshold は株式の欠損値許容割合です。
	DefaultEquityMissingThreshold = 0.8
	// DefaultCryptoMissingThreshold は暗号資産の欠損値許容割合です。
	// 暗号資産はヒストリーが短いため株式より厳しくします。
	DefaultCryptoMissingThreshold = 0.5
	// MinInvestableAssets は最適化に必要な最小資産数です。
	MinInvestableAssets = 2

	// zeroVarianceEps を下回る標準偏差の列は分散ゼロとして除外します。
	zeroVarianceEps = 1e-6
)

// CleanConfig はリターンクリーナーの設定です。
type CleanConfig struct {
	ClipFloor float64 // クリップ範囲の下限
	ClipCeil  float64 // クリップ範囲の上限
	// MissingThresholds は資産クラスごとの欠損値許容割合です。
	// 生データの欠損割合がこの値を超えた資産は補完せずに除外します。
	MissingThresholds map[entity.AssetClass]float64
}

// DefaultCleanConfig は文書化されたデフォルト値のCleanConfigを返します。
func DefaultCleanConfig() CleanConfig {
	return CleanConfig{
		ClipFloor: DefaultClipFloor,
		ClipCeil:  DefaultClipCeil,
		MissingThresholds: map[entity.AssetClass]float64{
			entity.AssetClassEquity: DefaultEquityMissingThreshold,
			entity.AssetClassCrypto: DefaultCryptoMissingThreshold,
		},
	}
}

// Cleaner は生のリターン行列を数値的に健全な行列へ浄化します。
type Cleaner struct {
	cfg CleanConfig
}

// NewCleaner は指定された設定でCleanerの新しいインスタンスを生成します。
func NewCleaner(cfg CleanConfig) *Cleaner {
	if cfg.ClipCeil <= cfg.ClipFloor {
		cfg.ClipFloor = DefaultClipFloor
		cfg.ClipCeil = DefaultClipCeil
	}
	if cfg.MissingThresholds == nil {
		cfg.MissingThresholds = DefaultCleanConfig().MissingThresholds
	}
	return &Cleaner{cfg: cfg}
}

// Clean は生のリターン行列を浄化し、新しい行列と変更内容のレポートを返します。
// 入力行列は変更しません。手順:
//  1. ±Inf を欠損値に置換
//  2. 資産クラス別の欠損割合しきい値を超える資産を除外（補完より先に判定）
//  3. 列ごとに forward-fill → backward-fill → zero-fill の順で補完
//  4. 全値をクリップ範囲に制限
//  5. 分散ゼロの列を除外
//
// 浄化後の資産数が2未満の場合は domain.ErrInsufficientAssets を返します。
func (c *Cleaner) Clean(raw entity.ReturnMatrix, classes map[string]entity.AssetClass) (entity.ReturnMatrix, entity.CleanReport, error) {
	m := raw.Clone()
	report := entity.CleanReport{}

	// 1. ±Inf → NaN（補完対象にする）
	for i := range m.Data {
		for j := range m.Data[i] {
			if math.IsInf(m.Data[i][j], 0) {
				m.Data[i][j] = math.NaN()
				report.InfsReplaced++
			}
		}
	}

	// 2. 欠損割合がしきい値を超える資産を除外。
	// 疎なデータを補完すると存在しないシグナルを捏造してしまうため。
	keep := make([]int, 0, m.Assets())
	for j, sym := range m.Symbols {
		missing := 0
		for i := range m.Data {
			if math.IsNaN(m.Data[i][j]) {
				missing++
			}
		}
		frac := 0.0
		if m.Rows() > 0 {
			frac = float64(missing) / float64(m.Rows())
		}
		if frac > c.thresholdFor(classes[sym]) {
			report.Dropped = append(report.Dropped, entity.DroppedSymbol{
				Symbol: sym,
				Reason: fmt.Sprintf("missing fraction %.2f exceeds threshold %.2f", frac, c.thresholdFor(classes[sym])),
			})
			continue
		}
		keep = append(keep, j)
	}
	m = selectColumns(m, keep)

	// 3. 列ごとに ffill → bfill → zero-fill。
	// 直近の既知リターンを先に引き継ぎ、それも無ければ「変動なし」とみなします。
	for j := range m.Symbols {
		last := math.NaN()
		for i := 0; i < m.Rows(); i++ {
			if math.IsNaN(m.Data[i][j]) {
				if !math.IsNaN(last) {
					m.Data[i][j] = last
					report.CellsFilled++
				}
			} else {
				last = m.Data[i][j]
			}
		}
		next := math.NaN()
		for i := m.Rows() - 1; i >= 0; i-- {
			if math.IsNaN(m.Data[i][j]) {
				if !math.IsNaN(next) {
					m.Data[i][j] = next
				} else {
					m.Data[i][j] = 0
				}
				report.CellsFilled++
			} else {
				next = m.Data[i][j]
			}
		}
	}

	// 4. クリップ
	for i := range m.Data {
		for j := range m.Data[i] {
			if m.Data[i][j] < c.cfg.ClipFloor {
				m.Data[i][j] = c.cfg.ClipFloor
				report.CellsClipped++
			} else if m.Data[i][j] > c.cfg.ClipCeil {
				m.Data[i][j] = c.cfg.ClipCeil
				report.CellsClipped++
			}
		}
	}

	// 5. 分散ゼロの列を除外（共分散行列を特異にするため）
	keep = keep[:0]
	for j, sym := range m.Symbols {
		if stddev(m.Column(j)) > zeroVarianceEps {
			keep = append(keep, j)
			continue
		}
		report.Dropped = append(report.Dropped, entity.DroppedSymbol{
			Symbol: sym,
			Reason: "zero variance after cleaning",
		})
	}
	m = selectColumns(m, keep)

	if m.Assets() < MinInvestableAssets {
		return entity.ReturnMatrix{}, report, fmt.Errorf("%w: %d assets remain", domain.ErrInsufficientAssets, m.Assets())
	}
	return m, report, nil
}

// thresholdFor は資産クラスに対応する欠損しきい値を返します。
// 未知のクラスは株式のしきい値を適用します。
func (c *Cleaner) thresholdFor(class entity.AssetClass) float64 {
	if t, ok := c.cfg.MissingThresholds[class]; ok {
		return t
	}
	return c.cfg.MissingThresholds[entity.AssetClassEquity]
}

// selectColumns は指定された列だけを持つ新しい行列を返します。
func selectColumns(m entity.ReturnMatrix, cols []int) entity.ReturnMatrix {
	out := entity.ReturnMatrix{
		Dates:   m.Dates,
		Symbols: make([]string, 0, len(cols)),
		Data:    make([][]float64, m.Rows()),
	}
	for _, j := range cols {
		out.Symbols = append(out.Symbols, m.Symbols[j])
	}
	for i := range out.Data {
		row := make([]float64, 0, len(cols))
		for _, j := range cols {
			row = append(row, m.Data[i][j])
		}
		out.Data[i] = row
	}
	return out
}

// stddev は標本標準偏差を返します。
func stddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
