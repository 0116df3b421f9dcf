package usecase

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// ReturnEstimator は期待リターンの推定モデルを抽象化します。
// デフォルトはヒストリカル平均ですが、呼び出し側を変更せずに
// 別モデル（ファクターモデル等）を注入できます。
type ReturnEstimator interface {
	// EstimateReturns は浄化済みリターン行列から年率化された
	// 期待リターンベクトルを推定します。periods は年率化の乗数で、
	// 共分散推定と同じ値を使い次元を揃えます。
	EstimateReturns(m entity.ReturnMatrix, periods int) entity.ExpectedReturns
}

// HistoricalMeanEstimator は日次リターンの単純平均を年率化する
// デフォルトのReturnEstimator実装です。
type HistoricalMeanEstimator struct{}

var _ ReturnEstimator = (*HistoricalMeanEstimator)(nil)

// NewHistoricalMeanEstimator はHistoricalMeanEstimatorの新しいインスタンスを生成します。
func NewHistoricalMeanEstimator() *HistoricalMeanEstimator {
	return &HistoricalMeanEstimator{}
}

// EstimateReturns は列ごとの平均リターン × periods を返します。
// 非有限値が生じた場合は0に置換します（浄化済み入力では起こりませんが、
// 注入された別モデルと同じ契約を守ります）。
func (e *HistoricalMeanEstimator) EstimateReturns(m entity.ReturnMatrix, periods int) entity.ExpectedReturns {
	if periods <= 0 {
		periods = DefaultTradingPeriods
	}
	out := entity.ExpectedReturns{
		Symbols: append([]string(nil), m.Symbols...),
		Values:  make([]float64, m.Assets()),
	}
	for j := 0; j < m.Assets(); j++ {
		mu := stat.Mean(m.Column(j), nil) * float64(periods)
		if math.IsNaN(mu) || math.IsInf(mu, 0) {
			mu = 0
		}
		out.Values[j] = mu
	}
	return out
}
