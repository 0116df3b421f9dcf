package main

import (
	"context"
	"log"
	"time"

	"portfolio_backend/internal/app/di"
	pricesadapters "portfolio_backend/internal/feature/prices/adapters"
	pricesusecase "portfolio_backend/internal/feature/prices/usecase"
	infradb "portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/externalapi/twelvedata"
)

func main() {
	db := infradb.OpenDB()
	marketRepo := di.NewMarket()
	priceRepo := pricesadapters.NewPriceRepository(db)
	symbolRepo := pricesadapters.NewSymbolRepository(db)

	// Twelve Data無料プランは8クレジット/分
	throttle := twelvedata.NewThrottle(8, time.Minute)
	uc := pricesusecase.NewIngestUsecase(marketRepo, priceRepo, throttle)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	symbols, err := symbolRepo.ListActive(ctx)
	if err != nil {
		log.Fatal("failed to load symbols:", err)
	}

	if err := uc.IngestAll(ctx, symbols); err != nil {
		log.Fatal(err)
	}
	log.Println("ingest ok")
}
