package handler

import "time"

// CacheTTLConfig holds the cache TTL of each cached view.
// A zero TTL disables caching for that view.
type CacheTTLConfig struct {
	Explorer  time.Duration
	Map       time.Duration
	Charts    time.Duration
	Dashboard time.Duration
	Default   time.Duration
}

// DefaultCacheTTL derives the per-view TTLs from the configured base TTL
func DefaultCacheTTL(base time.Duration) *CacheTTLConfig {
	if base <= 0 {
		base = 5 * time.Minute
	}
	return &CacheTTLConfig{
		Explorer: base,
		// 地区热度和国家统计只在 ETL 跑完后变化
		Map:    3 * base,
		Charts: 3 * base,
		// 面板里有最新任务列表
		Dashboard: base / 2,
		Default:   base,
	}
}
