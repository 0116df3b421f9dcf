// Package entity defines the domain models for the analytics feature.
package entity

import "time"

// PerformanceSeries is the realized portfolio return series produced by
// applying a weight vector to historical returns. Computed on demand, never
// persisted.
type PerformanceSeries struct {
	Dates      []time.Time `json:"dates"`
	Returns    []float64   `json:"returns"`    // daily portfolio returns
	Cumulative []float64   `json:"cumulative"` // running product of (1+r) - 1
}

// PerformanceStats holds scalar risk/return statistics for a weight vector
// applied to a historical window.
type PerformanceStats struct {
	CumulativeReturn     float64  `json:"cumulative_return"`
	AnnualizedReturn     float64  `json:"annualized_return"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	// SharpeRatio is nil when volatility is zero (the ratio is undefined).
	SharpeRatio *float64 `json:"sharpe_ratio"`
	MaxDrawdown float64  `json:"max_drawdown"` // worst peak-to-trough decline, <= 0
}

// RollingPoint is one observation of a rolling metric series.
type RollingPoint struct {
	Date   time.Time `json:"date"`
	Sharpe float64   `json:"sharpe"`
}

// RiskContribution is one asset's share of total portfolio risk.
type RiskContribution struct {
	Symbol       string  `json:"symbol"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"` // fraction of total risk, sums to 1
}
