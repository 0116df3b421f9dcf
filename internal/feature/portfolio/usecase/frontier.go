package usecase

import (
	"math"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultFrontierPoints は効率的フロンティアの既定サンプル数です。
	DefaultFrontierPoints = 50
)

// Frontier は期待リターンの最小値から最大値まで目標リターンを等間隔に
// 振り、各点で分散最小化（目標リターン制約付き）を解いて効率的
// フロンティアを描きます。解けない点や非有限の点は失敗させずに
// スキップします。
func (o *Orchestrator) Frontier(mu entity.ExpectedReturns, cov entity.CovarianceMatrix, cfg OptimizeConfig, points int) []entity.FrontierPoint {
	if points <= 1 {
		points = DefaultFrontierPoints
	}
	if cfg.UpperBound <= cfg.LowerBound {
		cfg.LowerBound = DefaultLowerBound
		cfg.UpperBound = DefaultUpperBound
	}
	if len(mu.Values) == 0 {
		return nil
	}

	lo, hi := mu.Values[0], mu.Values[0]
	for _, v := range mu.Values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]entity.FrontierPoint, 0, points)
	step := (hi - lo) / float64(points-1)
	for k := 0; k < points; k++ {
		target := lo + step*float64(k)
		problem := SolverProblem{
			Mu:           mu.Values,
			Sigma:        cov.Data,
			Objective:    entity.ObjectiveEfficientReturn,
			TargetReturn: target,
			LowerBound:   cfg.LowerBound,
			UpperBound:   cfg.UpperBound,
			RiskFreeRate: cfg.RiskFreeRate,
		}
		for _, s := range o.solvers {
			sol, err := s.Solve(problem)
			if err != nil {
				continue
			}
			ret, vol, _ := portfolioMetrics(sol.Weights, mu.Values, cov.Data, cfg.RiskFreeRate)
			if math.IsNaN(ret) || math.IsInf(ret, 0) || math.IsNaN(vol) || math.IsInf(vol, 0) {
				continue
			}
			out = append(out, entity.FrontierPoint{Return: ret, Volatility: vol})
			break
		}
	}
	return out
}

// FrontierFromRaw は生のリターン行列からフロンティアを計算する
// パイプライン版のエントリポイントです。
func (u *PortfolioUsecase) FrontierFromRaw(raw entity.ReturnMatrix, classes map[string]entity.AssetClass, cfg OptimizeConfig, points int) ([]entity.FrontierPoint, error) {
	cleaned, _, err := u.cleaner.Clean(raw, classes)
	if err != nil {
		return nil, err
	}
	cov, mu, err := u.estimate(cleaned)
	if err != nil {
		return nil, err
	}
	return u.orch.Frontier(mu, cov, cfg, points), nil
}
