// Package entity defines the domain models for the backtest feature.
package entity

import (
	"time"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// FactorRow holds the per-symbol, per-date factor observations used for
// portfolio formation. Factor fields are NaN until computed and may stay
// NaN where the lookback window is not yet filled.
type FactorRow struct {
	Symbol string
	Class  pentity.AssetClass
	Date   time.Time

	Return     float64 // simple daily return
	Momentum   float64 // 12-month minus 1-month price change
	Volatility float64 // rolling stddev of daily returns
	Value      float64 // inverse price proxy (equities only)
	Quality    float64 // rolling mean of daily returns

	Score float64 // combined multi-factor score (z-scored factors averaged)
}

// Position is one leg of a formed portfolio on a given date.
type Position struct {
	Symbol string
	Date   time.Time
	Weight float64 // positive = long, negative = short
	Return float64 // realized return weighted into the portfolio
}
