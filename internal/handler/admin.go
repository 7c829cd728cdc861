package handler

import (
	"context"
	"net/http"
	"time"

	"cinecity-client/internal/repository"
	"cinecity-client/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// AdminHandler handles admin-related endpoints
type AdminHandler struct {
	client  *httpclient.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	cache   repository.ViewCache
	stats   *repository.CallStats
}

// NewAdminHandler creates a new AdminHandler. breaker, cache and stats may be nil.
func NewAdminHandler(client *httpclient.Client, breaker *gobreaker.CircuitBreaker[[]byte], cache repository.ViewCache, stats *repository.CallStats) *AdminHandler {
	return &AdminHandler{
		client:  client,
		breaker: breaker,
		cache:   cache,
		stats:   stats,
	}
}

// GetStatus returns gateway status
// GET /status
func (h *AdminHandler) GetStatus(c *gin.Context) {
	breaker := "disabled"
	if h.breaker != nil {
		breaker = h.breaker.State().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"upstream":      h.client.BaseURL(),
		"breaker":       breaker,
		"cache_enabled": h.cache != nil,
		"stats_enabled": h.stats != nil,
	})
}

func (h *AdminHandler) statsDisabled(c *gin.Context) bool {
	if h.stats != nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"code":  503,
		"error": "call stats require REDIS_URL",
	})
	return true
}

// GetAnalytics returns gateway call analytics
// GET /admin/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	if h.statsDisabled(c) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.stats.Overview(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": stats,
	})
}

// GetRouteStats returns stats for a specific gateway route
// GET /admin/analytics/route?route=/views/map
func (h *AdminHandler) GetRouteStats(c *gin.Context) {
	if h.statsDisabled(c) {
		return
	}
	route := c.Query("route")
	if route == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "route parameter required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.stats.Route(ctx, route)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": stats,
	})
}

// ResetAnalytics resets all analytics data
// DELETE /admin/analytics
func (h *AdminHandler) ResetAnalytics(c *gin.Context) {
	if h.statsDisabled(c) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.stats.Reset(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "所有统计数据已重置",
	})
}

// PurgeCache drops every cached view
// DELETE /admin/cache
func (h *AdminHandler) PurgeCache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":  503,
			"error": "view cache requires REDIS_URL",
		})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	deleted, err := h.cache.Purge(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	log.Info().Int64("deleted", deleted).Msg("View cache purged")
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "缓存已清除",
		"data":    gin.H{"deleted": deleted},
	})
}
