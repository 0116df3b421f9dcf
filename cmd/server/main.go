package main

import (
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	analyticshandler "portfolio_backend/internal/feature/analytics/transport/handler"
	authadapters "portfolio_backend/internal/feature/auth/adapters"
	authhandler "portfolio_backend/internal/feature/auth/transport/handler"
	authusecase "portfolio_backend/internal/feature/auth/usecase"
	portfoliohandler "portfolio_backend/internal/feature/portfolio/transport/handler"
	pricesadapters "portfolio_backend/internal/feature/prices/adapters"
	priceshandler "portfolio_backend/internal/feature/prices/transport/handler"
	pricesusecase "portfolio_backend/internal/feature/prices/usecase"
	infradb "portfolio_backend/internal/platform/db"
	jwtmw "portfolio_backend/internal/platform/jwt"
	infraredis "portfolio_backend/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	symbolRepo := pricesadapters.NewSymbolRepository(db)
	priceRepo := di.NewPriceRepository(rdb, db)

	// Usecase
	jwtGen := jwtmw.NewGenerator(secret, 24*time.Hour)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen)
	returnsUC := pricesusecase.NewReturnsUsecase(priceRepo, symbolRepo)
	symbolsUC := pricesusecase.NewSymbolsUsecase(symbolRepo)
	portfolioUC := di.NewPortfolioUsecase()
	analyticsUC := di.NewAnalyticsUsecase(returnsUC)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	pricesH := priceshandler.NewPricesHandler(returnsUC, symbolsUC)
	portfolioH := portfoliohandler.NewPortfolioHandler(returnsUC, portfolioUC)
	analyticsH := analyticshandler.NewAnalyticsHandler(analyticsUC)

	// ルータ生成
	router := router.NewRouter(authH, portfolioH, analyticsH, pricesH)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
