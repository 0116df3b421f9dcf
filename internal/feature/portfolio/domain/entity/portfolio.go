// Package entity defines the domain models for the portfolio feature.
package entity

import "time"

// AssetClass classifies a symbol for class-specific data-quality rules.
type AssetClass string

const (
	// AssetClassEquity is a listed stock (e.g., "AAPL", "7203.T").
	AssetClassEquity AssetClass = "equity"
	// AssetClassCrypto is a crypto pair (e.g., "BTC/USD"). Histories are
	// typically shorter and heavier-tailed than equities.
	AssetClassCrypto AssetClass = "crypto"
)

// Objective selects the optimization target.
type Objective string

const (
	// ObjectiveMaxSharpe maximizes (mu'w - rf) / sqrt(w'Σw).
	ObjectiveMaxSharpe Objective = "max_sharpe"
	// ObjectiveMinVolatility minimizes w'Σw.
	ObjectiveMinVolatility Objective = "min_volatility"
	// ObjectiveEfficientReturn minimizes variance subject to a target return.
	// Used internally by the efficient-frontier sweep.
	ObjectiveEfficientReturn Objective = "efficient_return"
)

// ReturnMatrix holds simple daily returns, rows aligned with Dates and
// columns aligned with Symbols. Raw matrices may contain NaN (missing) and
// ±Inf cells; a cleaned matrix contains neither.
type ReturnMatrix struct {
	Dates   []time.Time
	Symbols []string
	Data    [][]float64 // Data[i][j] = return of Symbols[j] on Dates[i]
}

// Rows returns the number of observations.
func (m ReturnMatrix) Rows() int { return len(m.Dates) }

// Assets returns the number of asset columns.
func (m ReturnMatrix) Assets() int { return len(m.Symbols) }

// Column returns a copy of the j-th asset column.
func (m ReturnMatrix) Column(j int) []float64 {
	col := make([]float64, len(m.Data))
	for i := range m.Data {
		col[i] = m.Data[i][j]
	}
	return col
}

// Clone returns a deep copy so that downstream stages never share backing
// arrays with their input.
func (m ReturnMatrix) Clone() ReturnMatrix {
	out := ReturnMatrix{
		Dates:   append([]time.Time(nil), m.Dates...),
		Symbols: append([]string(nil), m.Symbols...),
		Data:    make([][]float64, len(m.Data)),
	}
	for i := range m.Data {
		out.Data[i] = append([]float64(nil), m.Data[i]...)
	}
	return out
}

// CovarianceMatrix is a square, symmetric, annualized covariance matrix
// indexed by Symbols on both axes.
type CovarianceMatrix struct {
	Symbols []string
	Data    [][]float64
}

// ExpectedReturns is an annualized mean-return vector aligned index-for-index
// with the covariance matrix symbols.
type ExpectedReturns struct {
	Symbols []string
	Values  []float64
}

// Weights maps a symbol to its portfolio fraction.
type Weights map[string]float64

// OptimizationResult is the validated output of one optimization run.
type OptimizationResult struct {
	Weights            Weights `json:"weights"`
	ExpectedReturn     float64 `json:"expected_return"`
	ExpectedVolatility float64 `json:"expected_volatility"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	SolverUsed         string  `json:"solver_used"`
	FallbackUsed       bool    `json:"fallback_used"`
}

// DroppedSymbol records an asset removed by the cleaner and why.
type DroppedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// CleanReport summarizes the alterations made by the return cleaner.
type CleanReport struct {
	InfsReplaced int             `json:"infs_replaced"`
	CellsFilled  int             `json:"cells_filled"`
	CellsClipped int             `json:"cells_clipped"`
	Dropped      []DroppedSymbol `json:"dropped"`
}

// FrontierPoint is one (volatility, return) point on the efficient frontier.
type FrontierPoint struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
}
