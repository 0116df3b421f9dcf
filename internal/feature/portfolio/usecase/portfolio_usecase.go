package usecase

import (
	"sync"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// PortfolioUsecase は浄化→推定→最適化→検証のパイプライン全体を実行します。
// 各ステージは入力を変更しない純粋関数なので、共分散推定と期待リターン
// 推定は同じ凍結行列に対して並行に実行します。
type PortfolioUsecase struct {
	cleaner    *Cleaner
	covariance *CovarianceEstimator
	returns    ReturnEstimator
	orch       *Orchestrator
}

// NewPortfolioUsecase は指定されたコンポーネントでPortfolioUsecaseの新しいインスタンスを生成します。
func NewPortfolioUsecase(cleaner *Cleaner, covariance *CovarianceEstimator, returns ReturnEstimator, orch *Orchestrator) *PortfolioUsecase {
	return &PortfolioUsecase{
		cleaner:    cleaner,
		covariance: covariance,
		returns:    returns,
		orch:       orch,
	}
}

// Optimize は生のリターン行列から検証済みのOptimizationResultを生成します。
// 返り値のerrorは致命的なデータ品質エラー（ErrInsufficientAssets,
// ErrCovarianceRegularization）のみです。ソルバーの失敗はフォールバックで
// 吸収され、結果のFallbackUsedフラグとしてのみ現れます。
func (u *PortfolioUsecase) Optimize(raw entity.ReturnMatrix, classes map[string]entity.AssetClass, cfg OptimizeConfig) (entity.OptimizationResult, entity.CleanReport, error) {
	cleaned, report, err := u.cleaner.Clean(raw, classes)
	if err != nil {
		return entity.OptimizationResult{}, report, err
	}

	cov, mu, err := u.estimate(cleaned)
	if err != nil {
		return entity.OptimizationResult{}, report, err
	}

	// フォールバック指標の年率化を推定器と揃える
	if cfg.Periods <= 0 {
		cfg.Periods = u.covariance.Periods()
	}
	result := u.orch.Optimize(cleaned, mu, cov, cfg)
	return result, report, nil
}

// estimate は共分散行列と期待リターンを並行に推定します。
func (u *PortfolioUsecase) estimate(cleaned entity.ReturnMatrix) (entity.CovarianceMatrix, entity.ExpectedReturns, error) {
	var (
		cov    entity.CovarianceMatrix
		covErr error
		mu     entity.ExpectedReturns
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cov, covErr = u.covariance.Estimate(cleaned)
	}()
	go func() {
		defer wg.Done()
		mu = u.returns.EstimateReturns(cleaned, u.covariance.Periods())
	}()
	wg.Wait()
	if covErr != nil {
		return entity.CovarianceMatrix{}, entity.ExpectedReturns{}, covErr
	}
	return cov, mu, nil
}
