package usecase

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultLowerBound はウェイトの下限（ロングオンリー）です。
	DefaultLowerBound = 0.0
	// DefaultUpperBound は1資産あたりのウェイト上限です。
	DefaultUpperBound = 0.5
	// DefaultRiskFreeRate はシャープレシオ計算に使う無リスク金利です。
	DefaultRiskFreeRate = 0.02
	// FallbackVolatilityFloor は等ウェイトフォールバック時の実現
	// ボラティリティの下限です。シャープレシオのゼロ除算を防ぎます。
	FallbackVolatilityFloor = 0.01
)

// SolverProblem はソルバーに渡す凸最適化問題です。
// Mu と Sigma は同じ資産順で整列済みであることが前提です。
type SolverProblem struct {
	Mu           []float64
	Sigma        [][]float64
	Objective    entity.Objective
	TargetReturn float64 // ObjectiveEfficientReturn のときのみ使用
	LowerBound   float64
	UpperBound   float64
	RiskFreeRate float64
}

// SolverSolution はソルバーが返すウェイトベクトルです。
type SolverSolution struct {
	Weights []float64
}

// Solver は単一の最適化手法を抽象化します。
// Goの慣例に従い、インターフェースは利用者（orchestrator）側で定義します。
// 構築・求解のいかなる失敗もerrorで返し、panicしないことが契約です。
type Solver interface {
	Name() string
	Solve(p SolverProblem) (SolverSolution, error)
}

// OptimizeConfig は1回の最適化実行の設定です。
type OptimizeConfig struct {
	Objective    entity.Objective
	TargetReturn float64 // efficient_return のみで使用
	LowerBound   float64
	UpperBound   float64
	RiskFreeRate float64
	Periods      int // 年率化の乗数。0以下なら取引日数の既定値
}

// DefaultOptimizeConfig は文書化されたデフォルト値のOptimizeConfigを返します。
func DefaultOptimizeConfig() OptimizeConfig {
	return OptimizeConfig{
		Objective:    entity.ObjectiveMaxSharpe,
		LowerBound:   DefaultLowerBound,
		UpperBound:   DefaultUpperBound,
		RiskFreeRate: DefaultRiskFreeRate,
	}
}

// Orchestrator はソルバーを優先順で1回ずつ試行し、最初に検証を通った
// 結果を返します。全ソルバーが失敗した場合は等ウェイト配分へ
// フォールバックします（FallbackUsed=true）。パイプラインが数値的失敗で
// 停止しないことを最適性より優先する設計です。
type Orchestrator struct {
	solvers   []Solver
	validator *Validator
	log       *slog.Logger
}

// NewOrchestrator は指定されたソルバーリストでOrchestratorの新しいインスタンスを生成します。
func NewOrchestrator(solvers []Solver, validator *Validator) *Orchestrator {
	if validator == nil {
		validator = NewValidator(DefaultValidationTolerance)
	}
	return &Orchestrator{solvers: solvers, validator: validator, log: slog.Default()}
}

// Optimize は期待リターンと共分散行列に対して最適化を実行します。
// cleaned は浄化済みリターン行列で、全ソルバー失敗時のフォールバック
// 指標の計算に使います。ソルバーの構築・求解エラーや検証失敗はここで
// 吸収され、呼び出し側には伝播しません。各ソルバーの再試行はありません
// （リストの各要素を1回ずつ）。
func (o *Orchestrator) Optimize(cleaned entity.ReturnMatrix, mu entity.ExpectedReturns, cov entity.CovarianceMatrix, cfg OptimizeConfig) entity.OptimizationResult {
	if cfg.UpperBound <= cfg.LowerBound {
		cfg.LowerBound = DefaultLowerBound
		cfg.UpperBound = DefaultUpperBound
	}
	if cfg.Objective == "" {
		cfg.Objective = entity.ObjectiveMaxSharpe
	}
	if cfg.Periods <= 0 {
		cfg.Periods = DefaultTradingPeriods
	}

	problem := SolverProblem{
		Mu:           mu.Values,
		Sigma:        cov.Data,
		Objective:    cfg.Objective,
		TargetReturn: cfg.TargetReturn,
		LowerBound:   cfg.LowerBound,
		UpperBound:   cfg.UpperBound,
		RiskFreeRate: cfg.RiskFreeRate,
	}

	for _, s := range o.solvers {
		sol, err := s.Solve(problem)
		if err != nil {
			// 失敗を記録して次のソルバーへ。まだエラーは伝播させない。
			o.log.Warn("solver failed", "solver", s.Name(), "objective", string(cfg.Objective), "error", err)
			continue
		}
		ret, vol, sharpe := portfolioMetrics(sol.Weights, mu.Values, cov.Data, cfg.RiskFreeRate)
		if err := o.validator.Validate(sol.Weights, cfg.LowerBound, cfg.UpperBound, vol, sharpe); err != nil {
			// 検証失敗もソルバー失敗と同等に扱う
			o.log.Warn("solver result rejected", "solver", s.Name(), "error", err)
			continue
		}
		return entity.OptimizationResult{
			Weights:            toWeights(mu.Symbols, sol.Weights),
			ExpectedReturn:     ret,
			ExpectedVolatility: vol,
			SharpeRatio:        sharpe,
			SolverUsed:         s.Name(),
			FallbackUsed:       false,
		}
	}

	// 全ソルバー失敗 → 等ウェイトフォールバック。
	// 2資産以上が保証されていれば常に実行可能な配分です。
	// 指標はモデル（μ, Σ）ではなく実現リターン系列から計算します。
	// 対角荷重を加えたΣは等ウェイト配分のリスクを大きく過大評価するためです。
	o.log.Warn("all solvers failed, using equal-weight fallback", "objective", string(cfg.Objective))
	n := len(mu.Symbols)
	eq := make([]float64, n)
	for i := range eq {
		eq[i] = 1.0 / float64(n)
	}
	ret, vol, sharpe := realizedMetrics(cleaned, eq, cfg.Periods, cfg.RiskFreeRate)
	return entity.OptimizationResult{
		Weights:            toWeights(mu.Symbols, eq),
		ExpectedReturn:     ret,
		ExpectedVolatility: vol,
		SharpeRatio:        sharpe,
		SolverUsed:         "",
		FallbackUsed:       true,
	}
}

// realizedMetrics は w で保有した場合の実現ポートフォリオリターン系列から
// 年率リターン・ボラティリティ・シャープレシオを計算します。
// ボラティリティは FallbackVolatilityFloor を下限とします。
func realizedMetrics(m entity.ReturnMatrix, w []float64, periods int, riskFree float64) (ret, vol, sharpe float64) {
	rows := len(m.Data)
	port := make([]float64, rows)
	for t := 0; t < rows; t++ {
		for j, wj := range w {
			port[t] += wj * m.Data[t][j]
		}
	}
	mean, sd := stat.MeanStdDev(port, nil)
	ret = mean * float64(periods)
	vol = sd * math.Sqrt(float64(periods))
	if math.IsNaN(ret) {
		ret = 0
	}
	if math.IsNaN(vol) || vol < FallbackVolatilityFloor {
		vol = FallbackVolatilityFloor
	}
	sharpe = (ret - riskFree) / vol
	return ret, vol, sharpe
}

// portfolioMetrics は w に対する期待リターン・ボラティリティ・
// シャープレシオを mu と Σ から計算します。
func portfolioMetrics(w, mu []float64, sigma [][]float64, riskFree float64) (ret, vol, sharpe float64) {
	for i := range w {
		ret += mu[i] * w[i]
	}
	var variance float64
	for i := range w {
		for j := range w {
			variance += w[i] * w[j] * sigma[i][j]
		}
	}
	vol = math.Sqrt(math.Max(variance, 0))
	if vol > 0 {
		sharpe = (ret - riskFree) / vol
	}
	return ret, vol, sharpe
}

// toWeights はウェイトベクトルをシンボル→ウェイトのマップへ変換します。
func toWeights(symbols []string, w []float64) entity.Weights {
	out := make(entity.Weights, len(symbols))
	for i, sym := range symbols {
		out[sym] = w[i]
	}
	return out
}
