package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinecity-client/internal/config"
	"cinecity-client/internal/fallback"
	"cinecity-client/internal/handler"
	"cinecity-client/internal/metrics"
	"cinecity-client/internal/repository"
	"cinecity-client/internal/session"
	"cinecity-client/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.GinMode == gin.DebugMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg)

	log.Info().
		Str("port", cfg.Port).
		Str("mode", cfg.GinMode).
		Str("upstream", cfg.APIURL).
		Msg("Starting cinecity gateway")

	gin.SetMode(cfg.GinMode)

	// Upstream client
	client := httpclient.NewClient(cfg.APIURL, cfg.RequestTimeout).WithObserver(metrics.RecordUpstream)
	var breaker *gobreaker.CircuitBreaker[[]byte]
	if cfg.BreakerEnabled {
		breaker = httpclient.NewBreaker("cinecity-api", func(from, to gobreaker.State) {
			metrics.RecordBreakerTransition(from.String(), to.String(), int(to))
		})
		client = client.WithBreaker(breaker)
		log.Info().Msg("Circuit breaker enabled")
	}
	fallback.SetObserver(metrics.RecordFallback)

	deps := handler.Deps{
		Client:      client,
		Breaker:     breaker,
		Policy:      cfg.NormalizePolicy(),
		TTL:         handler.DefaultCacheTTL(cfg.CacheTTL),
		AdminAPIKey: cfg.AdminAPIKey,
		CORSOrigins: cfg.CORSOrigins,
	}

	// Redis 可选：缓存和调用统计共用一个连接
	if cfg.CacheEnabled() {
		cache, err := repository.NewCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer cache.Close()

		stats := repository.NewCallStats(cache.Client())
		stats.RecordStart(context.Background())

		deps.Cache = cache
		deps.Stats = stats
		log.Info().Msg("View cache and call stats enabled")
	} else {
		log.Warn().Msg("REDIS_URL not set, view cache and call stats disabled")
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
	}
	deps.Codec = session.NewCookieCodec(secret, cfg.CookieSecure)

	r := handler.NewRouter(deps)

	if cfg.AdminAPIKey != "" {
		log.Info().Msg("Admin API 认证已启用")
	} else {
		log.Warn().Msg("Admin API 未配置认证，管理接口对外开放")
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
