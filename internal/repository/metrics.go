package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statsPrefix    = "cinecity:stats:"
	statsRoutesKey = statsPrefix + "routes"
	statsStartKey  = statsPrefix + "start_time"
)

// RouteStats are the counters of one gateway route
type RouteStats struct {
	Route          string  `json:"route"`
	TotalCalls     int64   `json:"total_calls"`
	ErrorCalls     int64   `json:"error_calls"`
	CacheHits      int64   `json:"cache_hits"`
	FallbackServed int64   `json:"fallback_served"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	MaxLatencyMs   float64 `json:"max_latency_ms"`
}

// DailyCalls is one day of the call trend
type DailyCalls struct {
	Date       string `json:"date"`
	TotalCalls int64  `json:"total_calls"`
}

// Overview summarises gateway usage for the admin page
type Overview struct {
	TotalCalls   int64        `json:"total_calls"`
	TodayCalls   int64        `json:"today_calls"`
	CacheHitRate float64      `json:"cache_hit_rate"`
	FallbackRate float64      `json:"fallback_rate"`
	ErrorRate    float64      `json:"error_rate"`
	TopRoutes    []RouteStats `json:"top_routes"`
	DailyTrend   []DailyCalls `json:"daily_trend"`
	Uptime       int64        `json:"uptime_seconds"`
}

// CallStats keeps per-route gateway counters in Redis hashes
type CallStats struct {
	client *redis.Client
	now    func() time.Time
}

// NewCallStats records into the given connection
func NewCallStats(client *redis.Client) *CallStats {
	return &CallStats{client: client, now: time.Now}
}

func routeKey(route string) string {
	return statsPrefix + "route:" + route
}

func dailyKey(date string) string {
	return statsPrefix + "daily:" + date
}

// Record stores one finished request. source is fresh, redis-cache or fallback.
func (s *CallStats) Record(ctx context.Context, route string, status int, latency time.Duration, source string) error {
	ms := float64(latency.Microseconds()) / 1000
	key := routeKey(route)

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, key, "total", 1)
	pipe.HIncrByFloat(ctx, key, "latency_sum", ms)
	if status >= 400 {
		pipe.HIncrBy(ctx, key, "errors", 1)
	}
	switch source {
	case "redis-cache":
		pipe.HIncrBy(ctx, key, "cache_hits", 1)
	case "fallback":
		pipe.HIncrBy(ctx, key, "fallback", 1)
	}
	pipe.SAdd(ctx, statsRoutesKey, route)

	day := dailyKey(s.now().Format("2006-01-02"))
	pipe.HIncrBy(ctx, day, "total", 1)
	pipe.Expire(ctx, day, 30*24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record call stats: %w", err)
	}

	// max 需要读后写，不在 pipeline 里
	current, err := s.client.HGet(ctx, key, "max_latency").Float64()
	if err != nil || ms > current {
		s.client.HSet(ctx, key, "max_latency", ms)
	}
	return nil
}

// Route reads the counters of one route
func (s *CallStats) Route(ctx context.Context, route string) (*RouteStats, error) {
	result, err := s.client.HGetAll(ctx, routeKey(route)).Result()
	if err != nil {
		return nil, err
	}
	return parseRouteStats(route, result), nil
}

func parseRouteStats(route string, h map[string]string) *RouteStats {
	stats := &RouteStats{Route: route}
	stats.TotalCalls, _ = strconv.ParseInt(h["total"], 10, 64)
	stats.ErrorCalls, _ = strconv.ParseInt(h["errors"], 10, 64)
	stats.CacheHits, _ = strconv.ParseInt(h["cache_hits"], 10, 64)
	stats.FallbackServed, _ = strconv.ParseInt(h["fallback"], 10, 64)
	stats.MaxLatencyMs, _ = strconv.ParseFloat(h["max_latency"], 64)

	latencySum, _ := strconv.ParseFloat(h["latency_sum"], 64)
	if stats.TotalCalls > 0 {
		stats.AvgLatencyMs = latencySum / float64(stats.TotalCalls)
	}
	return stats
}

// Overview aggregates every route plus the last 7 days
func (s *CallStats) Overview(ctx context.Context) (*Overview, error) {
	routes, err := s.client.SMembers(ctx, statsRoutesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	out := &Overview{TopRoutes: []RouteStats{}}
	var hits, fallbacks, errs int64
	for _, route := range routes {
		rs, err := s.Route(ctx, route)
		if err != nil || rs.TotalCalls == 0 {
			continue
		}
		out.TopRoutes = append(out.TopRoutes, *rs)
		out.TotalCalls += rs.TotalCalls
		hits += rs.CacheHits
		fallbacks += rs.FallbackServed
		errs += rs.ErrorCalls
	}
	summarise(out, hits, fallbacks, errs)

	now := s.now()
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		total, _ := s.client.HGet(ctx, dailyKey(date), "total").Int64()
		out.DailyTrend = append(out.DailyTrend, DailyCalls{Date: date, TotalCalls: total})
	}
	if n := len(out.DailyTrend); n > 0 {
		out.TodayCalls = out.DailyTrend[n-1].TotalCalls
	}

	if start, err := s.client.Get(ctx, statsStartKey).Int64(); err == nil && start > 0 {
		out.Uptime = now.Unix() - start
	}
	return out, nil
}

// summarise fills the rates and keeps the ten busiest routes
func summarise(out *Overview, hits, fallbacks, errs int64) {
	sort.Slice(out.TopRoutes, func(i, j int) bool {
		return out.TopRoutes[i].TotalCalls > out.TopRoutes[j].TotalCalls
	})
	if len(out.TopRoutes) > 10 {
		out.TopRoutes = out.TopRoutes[:10]
	}
	if out.TotalCalls > 0 {
		total := float64(out.TotalCalls)
		out.CacheHitRate = float64(hits) / total * 100
		out.FallbackRate = float64(fallbacks) / total * 100
		out.ErrorRate = float64(errs) / total * 100
	}
}

// RecordStart stores the gateway start time
func (s *CallStats) RecordStart(ctx context.Context) {
	if err := s.client.Set(ctx, statsStartKey, s.now().Unix(), 0).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to record start time")
	}
}

// Reset drops every counter
func (s *CallStats) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, statsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
