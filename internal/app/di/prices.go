package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pricesadapters "portfolio_backend/internal/feature/prices/adapters"
	pricesusecase "portfolio_backend/internal/feature/prices/usecase"
	"portfolio_backend/internal/platform/cache"
)

// NewPriceRepository creates the price persistence layer. If Redis is
// available, reads are served through a caching decorator whose TTL expires
// at the next daily ingest.
func NewPriceRepository(rdb *redis.Client, db *gorm.DB) pricesusecase.PriceRepository {
	inner := pricesadapters.NewPriceRepository(db)
	if rdb == nil {
		return inner
	}
	return cache.NewCachingPriceRepository(rdb, cache.TimeUntilNextIngest(), inner, "prices")
}
