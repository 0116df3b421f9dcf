package usecase

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultTradingPeriods は年間の取引日数です（株式・暗号資産の日次データ）。
	DefaultTradingPeriods = 252
	// DefaultDiagonalLoading は対角荷重の初期値です。
	// 数値誤差に対して正定値性を保証するために対角成分へ加算します。
	DefaultDiagonalLoading = 0.1
	// DefaultMaxLoadingRetries は固有値が非正だった場合に荷重を
	// 引き上げて再試行する最大回数です。
	DefaultMaxLoadingRetries = 3
)

// CovarianceConfig は共分散推定の設定です。
type CovarianceConfig struct {
	TradingPeriods    int     // 年率化の乗数
	DiagonalLoading   float64 // 対角荷重の初期値
	MaxLoadingRetries int     // 荷重引き上げの最大回数
}

// DefaultCovarianceConfig は文書化されたデフォルト値のCovarianceConfigを返します。
func DefaultCovarianceConfig() CovarianceConfig {
	return CovarianceConfig{
		TradingPeriods:    DefaultTradingPeriods,
		DiagonalLoading:   DefaultDiagonalLoading,
		MaxLoadingRetries: DefaultMaxLoadingRetries,
	}
}

// CovarianceEstimator は浄化済みリターン行列から年率化された
// 正定値共分散行列を推定します。
type CovarianceEstimator struct {
	cfg CovarianceConfig
}

// NewCovarianceEstimator は指定された設定でCovarianceEstimatorの新しいインスタンスを生成します。
func NewCovarianceEstimator(cfg CovarianceConfig) *CovarianceEstimator {
	if cfg.TradingPeriods <= 0 {
		cfg.TradingPeriods = DefaultTradingPeriods
	}
	if cfg.DiagonalLoading <= 0 {
		cfg.DiagonalLoading = DefaultDiagonalLoading
	}
	if cfg.MaxLoadingRetries <= 0 {
		cfg.MaxLoadingRetries = DefaultMaxLoadingRetries
	}
	return &CovarianceEstimator{cfg: cfg}
}

// Periods は年率化に使う取引期間数を返します。
// 期待リターン推定と次元を揃えるために共有します。
func (e *CovarianceEstimator) Periods() int {
	return e.cfg.TradingPeriods
}

// Estimate はLedoit-Wolf縮小推定量で共分散行列を計算します。
// 標本共分散は資産数が観測数に近い場合や裾の重いリターン（暗号資産）で
// 条件数が悪化するため、構造化ターゲットへ縮小して推定誤差を抑えます。
// 縮小後に年率化し、対角荷重を加え、(M+Mᵗ)/2 で対称化します。
// 固有値検査で非正の固有値が残る場合は荷重を10倍ずつ引き上げ、
// 上限回数を超えたら domain.ErrCovarianceRegularization を返します。
func (e *CovarianceEstimator) Estimate(m entity.ReturnMatrix) (entity.CovarianceMatrix, error) {
	n := m.Assets()
	if n < MinInvestableAssets || m.Rows() < 2 {
		return entity.CovarianceMatrix{}, fmt.Errorf("%w: %d assets, %d observations", domain.ErrInsufficientAssets, n, m.Rows())
	}

	sample := sampleCovariance(m)
	shrunk := ledoitWolfShrink(sample)

	// 年率化
	periods := float64(e.cfg.TradingPeriods)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			shrunk[i][j] *= periods
		}
	}

	loading := e.cfg.DiagonalLoading
	applied := 0.0
	for attempt := 0; attempt <= e.cfg.MaxLoadingRetries; attempt++ {
		// 対角荷重（前回適用分との差分だけ加算）
		for i := 0; i < n; i++ {
			shrunk[i][i] += loading - applied
		}
		applied = loading

		// 対称化。直前の演算による浮動小数点の非対称を除去します。
		// 下流のソルバーは厳密に対称な入力を要求します。
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				avg := (shrunk[i][j] + shrunk[j][i]) / 2
				shrunk[i][j], shrunk[j][i] = avg, avg
			}
		}

		if minEigenvalue(shrunk) > 0 {
			return entity.CovarianceMatrix{
				Symbols: append([]string(nil), m.Symbols...),
				Data:    shrunk,
			}, nil
		}
		loading *= 10
	}

	return entity.CovarianceMatrix{}, fmt.Errorf("%w: final loading %g", domain.ErrCovarianceRegularization, applied)
}

// sampleCovariance は標本共分散行列（N-1分母）を計算します。
func sampleCovariance(m entity.ReturnMatrix) [][]float64 {
	n := m.Assets()
	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = m.Column(j)
	}
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := stat.Covariance(cols[i], cols[j], nil)
			cov[i][j], cov[j][i] = c, c
		}
	}
	return cov
}

// ledoitWolfShrink は標本共分散を定相関モデルのターゲットへ縮小します。
//
// 参考: Ledoit, O., & Wolf, M. (2004).
// "A well-conditioned estimator for large-dimensional covariance matrices"
func ledoitWolfShrink(sample [][]float64) [][]float64 {
	n := len(sample)

	var avgVar, avgCov float64
	for i := 0; i < n; i++ {
		avgVar += sample[i][i]
		for j := 0; j < n; j++ {
			if i != j {
				avgCov += sample[i][j]
			}
		}
	}
	avgVar /= float64(n)
	if n > 1 {
		avgCov /= float64(n * (n - 1))
	}

	// ターゲット: 対角は平均分散、非対角は平均共分散
	target := make([][]float64, n)
	for i := range target {
		target[i] = make([]float64, n)
		for j := range target[i] {
			if i == j {
				target[i][j] = avgVar
			} else if avgVar > 0 {
				target[i][j] = avgCov
			}
		}
	}

	// 縮小強度。標本要素の分散とターゲットからの乖離の比で推定します。
	shrinkage := 0.2
	if n > 2 && avgVar > 0 {
		var sumSqDiff, sumSq, mean float64
		count := float64(n * n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				d := sample[i][j] - target[i][j]
				sumSqDiff += d * d
				mean += sample[i][j]
				sumSq += sample[i][j] * sample[i][j]
			}
		}
		meanSqDiff := sumSqDiff / count
		mean /= count
		varSample := sumSq/count - mean*mean
		if varSample > 0 && meanSqDiff > 0 {
			shrinkage = clamp(varSample/(varSample+meanSqDiff), 0, 0.5)
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = (1-shrinkage)*sample[i][j] + shrinkage*target[i][j]
		}
	}
	return out
}

// minEigenvalue は対称行列の最小固有値を返します。
func minEigenvalue(m [][]float64) float64 {
	n := len(m)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, m[i][j])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return -1
	}
	vals := eig.Values(nil)
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
