// Package domain defines domain-level errors for the portfolio feature.
package domain

import "errors"

// Domain errors for the optimization pipeline.
// Only these two are fatal to an optimization run; solver and validation
// failures are absorbed by the orchestrator's fallback chain and never
// surface as errors.
var (
	// ErrInsufficientAssets indicates that cleaning left fewer than two
	// investable assets. Optimization over fewer than 2 assets is undefined.
	ErrInsufficientAssets = errors.New("fewer than 2 investable assets after cleaning")

	// ErrCovarianceRegularization indicates that the covariance matrix could
	// not be made positive-definite within the bounded loading retries.
	ErrCovarianceRegularization = errors.New("covariance matrix could not be regularized to positive-definite")
)
