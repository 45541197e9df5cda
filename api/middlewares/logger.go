package middlewares

import (
	"time"

	"doi-frontend/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger 用 zap 记录每个请求，替代 gin 默认的控制台日志
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()))
	}
}
