package middleware

import (
	"context"
	"time"

	"cinecity-client/internal/metrics"
	"cinecity-client/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SourceKey is the gin context key handlers set to fresh, redis-cache or fallback
const SourceKey = "cache_source"

// Metrics records every request in Prometheus and, when stats is non-nil, in Redis
func Metrics(stats *repository.CallStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// 用路由模板分组，避免 :kind 之类的参数撑爆标签
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		latency := time.Since(start)
		status := c.Writer.Status()
		source := c.GetString(SourceKey)

		metrics.RecordRequest(route, status, source, latency)

		if stats == nil || route == "/metrics" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := stats.Record(ctx, route, status, latency, source); err != nil {
			log.Warn().Err(err).Msg("Failed to record call stats")
		}
	}
}
