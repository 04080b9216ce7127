package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/railguard/internal/config"
)

// CORSMiddleware добавляет CORS-заголовки к каждому ответу и отвечает 204 на preflight
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
