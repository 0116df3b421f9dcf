package di

import (
	analyticsusecase "portfolio_backend/internal/feature/analytics/usecase"
	"portfolio_backend/internal/feature/portfolio/adapters/gonumsolver"
	portfoliousecase "portfolio_backend/internal/feature/portfolio/usecase"
)

// NewPortfolioUsecase assembles the clean → estimate → optimize → validate
// pipeline with the default solver chain.
func NewPortfolioUsecase() *portfoliousecase.PortfolioUsecase {
	cleaner := portfoliousecase.NewCleaner(portfoliousecase.DefaultCleanConfig())
	covariance := portfoliousecase.NewCovarianceEstimator(portfoliousecase.DefaultCovarianceConfig())
	returns := portfoliousecase.NewHistoricalMeanEstimator()
	validator := portfoliousecase.NewValidator(portfoliousecase.DefaultValidationTolerance)
	orch := portfoliousecase.NewOrchestrator(gonumsolver.Defaults(), validator)
	return portfoliousecase.NewPortfolioUsecase(cleaner, covariance, returns, orch)
}

// NewAnalyticsUsecase assembles the analytics pipeline sharing the same
// cleaner and covariance configuration as the optimizer.
func NewAnalyticsUsecase(matrix analyticsusecase.MatrixBuilder) *analyticsusecase.AnalyticsUsecase {
	cleaner := portfoliousecase.NewCleaner(portfoliousecase.DefaultCleanConfig())
	covariance := portfoliousecase.NewCovarianceEstimator(portfoliousecase.DefaultCovarianceConfig())
	analyzer := analyticsusecase.NewPerformanceAnalyzer(analyticsusecase.DefaultPerformanceConfig())
	return analyticsusecase.NewAnalyticsUsecase(matrix, cleaner, covariance, analyzer)
}
