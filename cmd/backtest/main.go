package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	backtestusecase "portfolio_backend/internal/feature/backtest/usecase"
	pricesadapters "portfolio_backend/internal/feature/prices/adapters"
	infradb "portfolio_backend/internal/platform/db"
)

func main() {
	quantile := flag.Float64("quantile", backtestusecase.DefaultQuantile, "fraction of the universe per side")
	longOnly := flag.Bool("long-only", false, "disable the short leg")
	flag.Parse()

	db := infradb.OpenDB()
	priceRepo := pricesadapters.NewPriceRepository(db)
	symbolRepo := pricesadapters.NewSymbolRepository(db)
	uc := backtestusecase.NewBacktestUsecase(priceRepo, symbolRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := backtestusecase.BacktestConfig{Quantile: *quantile, LongShort: !*longOnly}
	series, stats, err := uc.Run(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	out := map[string]any{
		"days":  len(series.Returns),
		"stats": stats,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}
