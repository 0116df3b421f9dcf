// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceName は /healthz のレスポンスで名乗るサービス識別子です。
const serviceName = "portfolio-backend"

// Health は認証なしの /healthz を処理します。ロードバランサーの
// GET/HEAD/OPTIONSヘルスチェックに応答し、結果のキャッシュを禁止します。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	}
}
