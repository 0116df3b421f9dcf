// Package entity defines the domain models for the prices feature.
package entity

import (
	"time"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// Price represents one daily OHLCV bar for an asset.
type Price struct {
	Symbol string                  // Asset identifier (e.g., "AAPL", "BTC/USD")
	Class  pentity.AssetClass      // Asset class used for data-quality rules
	Date   time.Time               // Trading date (UTC, midnight)
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Symbol is one entry of the configured asset universe.
type Symbol struct {
	Code   string             `json:"code"`
	Name   string             `json:"name"`
	Class  pentity.AssetClass `json:"asset_class"`
	Active bool               `json:"active"`
}
