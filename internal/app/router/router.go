// Package router はアプリケーションのHTTPルートを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	analyticshandler "portfolio_backend/internal/feature/analytics/transport/handler"
	authhandler "portfolio_backend/internal/feature/auth/transport/handler"
	portfoliohandler "portfolio_backend/internal/feature/portfolio/transport/handler"
	priceshandler "portfolio_backend/internal/feature/prices/transport/handler"
	"portfolio_backend/internal/platform/http/handler"
	jwtmw "portfolio_backend/internal/platform/jwt"
)

// NewRouter は全エンドポイントを配線したginエンジンを返します。
func NewRouter(authHandler *authhandler.AuthHandler, portfolio *portfoliohandler.PortfolioHandler,
	analytics *analyticshandler.AnalyticsHandler, prices *priceshandler.PricesHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", authHandler.Login)

	// 認証必須のルート
	auth := r.Group("/")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/symbols", prices.GetSymbols)
		auth.GET("/returns", prices.GetReturns)
		auth.POST("/portfolio/optimize", portfolio.Optimize)
		auth.GET("/portfolio/frontier", portfolio.Frontier)
		auth.POST("/analytics/performance", analytics.Performance)
		auth.POST("/analytics/risk", analytics.Risk)
	}

	return r
}
