package usecase

import (
	"context"
	"sort"

	"portfolio_backend/internal/feature/analytics/domain/entity"
	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	pusecase "portfolio_backend/internal/feature/portfolio/usecase"
)

// MatrixBuilder は保存済み価格からリターン行列を構築するインターフェイスです。
// Goの慣例に従い、利用者（usecase）側で定義します。
type MatrixBuilder interface {
	BuildReturnMatrix(ctx context.Context, symbols []string, days int) (pentity.ReturnMatrix, map[string]pentity.AssetClass, error)
}

// AnalyticsUsecase は保存済み価格に対するパフォーマンス・リスク分析を
// 実行します。分析前のデータ浄化は最適化パイプラインと同じクリーナーを
// 共有します。
type AnalyticsUsecase struct {
	matrix     MatrixBuilder
	cleaner    *pusecase.Cleaner
	covariance *pusecase.CovarianceEstimator
	analyzer   *PerformanceAnalyzer
}

// NewAnalyticsUsecase は新しいAnalyticsUsecaseを作成します。
func NewAnalyticsUsecase(matrix MatrixBuilder, cleaner *pusecase.Cleaner, covariance *pusecase.CovarianceEstimator, analyzer *PerformanceAnalyzer) *AnalyticsUsecase {
	return &AnalyticsUsecase{
		matrix:     matrix,
		cleaner:    cleaner,
		covariance: covariance,
		analyzer:   analyzer,
	}
}

// Performance はウェイトベクトルの実績パフォーマンスを計算します。
// クリーナーで除外された銘柄のウェイトは寄与しません。
func (au *AnalyticsUsecase) Performance(ctx context.Context, weights pentity.Weights, days int) (entity.PerformanceSeries, entity.PerformanceStats, []entity.RollingPoint, error) {
	cleaned, err := au.cleanedMatrix(ctx, weights, days)
	if err != nil {
		return entity.PerformanceSeries{}, entity.PerformanceStats{}, nil, err
	}
	series, stats := au.analyzer.Analyze(weights, cleaned)
	rolling := au.analyzer.RollingSharpe(weights, cleaned)
	return series, stats, rolling, nil
}

// Risk はウェイトベクトルの限界リスク寄与（MCTR）を計算します。
func (au *AnalyticsUsecase) Risk(ctx context.Context, weights pentity.Weights, days int) ([]entity.RiskContribution, error) {
	cleaned, err := au.cleanedMatrix(ctx, weights, days)
	if err != nil {
		return nil, err
	}
	cov, err := au.covariance.Estimate(cleaned)
	if err != nil {
		return nil, err
	}
	return RiskContributions(weights, cov)
}

// cleanedMatrix はウェイトの銘柄集合に対する浄化済みリターン行列を返します。
func (au *AnalyticsUsecase) cleanedMatrix(ctx context.Context, weights pentity.Weights, days int) (pentity.ReturnMatrix, error) {
	symbols := make([]string, 0, len(weights))
	for sym := range weights {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	raw, classes, err := au.matrix.BuildReturnMatrix(ctx, symbols, days)
	if err != nil {
		return pentity.ReturnMatrix{}, err
	}
	cleaned, _, err := au.cleaner.Clean(raw, classes)
	if err != nil {
		return pentity.ReturnMatrix{}, err
	}
	return cleaned, nil
}
