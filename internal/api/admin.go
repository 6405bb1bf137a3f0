package api

import (
	"context"
	"net/http"
)

type CacheStats struct {
	Enabled     bool   `json:"enabled"`
	CurrentSize int    `json:"current_size"`
	MaxSize     int    `json:"max_size"`
	TTLMinutes  int    `json:"ttl_minutes"`
	HitRate     string `json:"hit_rate,omitempty"`
}

// CacheStatsDetailed.HitRate is either a 0-1 ratio or a preformatted
// percentage string.
type CacheStatsDetailed struct {
	Enabled   bool  `json:"enabled"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	HitRate   any   `json:"hit_rate"`
	Evictions int64 `json:"evictions"`
}

type BackendHealth struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	Address        string `json:"address"`
	Weight         int    `json:"weight"`
	Healthy        bool   `json:"healthy"`
	Enabled        bool   `json:"enabled"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	LastCheck      string `json:"last_check"`
}

type LoadBalancerStats struct {
	Enabled         bool            `json:"enabled"`
	Strategy        string          `json:"strategy"`
	BackendGroups   int             `json:"backend_groups"`
	TotalBackends   int             `json:"total_backends"`
	HealthyBackends int             `json:"healthy_backends"`
	Backends        []BackendHealth `json:"backends,omitempty"`
}

type HealthCheckTarget struct {
	Target         string `json:"target"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Protocol       string `json:"protocol"`
	Healthy        bool   `json:"healthy"`
	LastCheck      string `json:"last_check"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	LastSuccess    string `json:"last_success,omitempty"`
	LastFailure    string `json:"last_failure,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	LastError      string `json:"last_error,omitempty"`
}

type HealthCheckStats struct {
	Enabled         bool                `json:"enabled"`
	TotalTargets    int                 `json:"total_targets"`
	HealthyTargets  int                 `json:"healthy_targets"`
	IntervalSeconds int                 `json:"interval_seconds"`
	TimeoutSeconds  int                 `json:"timeout_seconds"`
	Targets         []HealthCheckTarget `json:"targets,omitempty"`
	Results         []HealthCheckTarget `json:"results,omitempty"`
}

type QueryLogStats struct {
	Enabled        bool    `json:"enabled"`
	TotalQueries   int64   `json:"total_queries"`
	CachedQueries  int64   `json:"cached_queries"`
	BlockedQueries int64   `json:"blocked_queries"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	BlockedRate    float64 `json:"blocked_rate"`
}

type RateLimiterStats struct {
	Enabled        bool    `json:"enabled"`
	QPS            float64 `json:"qps"`
	Burst          int     `json:"burst"`
	ActiveLimiters int     `json:"active_limiters"`
	TotalBlocked   int64   `json:"total_blocked"`
}

type SystemStats struct {
	Cache        CacheStats        `json:"cache"`
	RateLimiter  RateLimiterStats  `json:"rate_limiter"`
	LoadBalancer LoadBalancerStats `json:"load_balancer"`
	HealthCheck  HealthCheckStats  `json:"health_check"`
	QueryLog     QueryLogStats     `json:"query_log"`
}

func (c *Client) SystemStats(ctx context.Context) (*SystemStats, error) {
	return getJSON[SystemStats](ctx, c, c.endpoint(nil, "admin", "stats"))
}

func (c *Client) CacheStats(ctx context.Context) (*CacheStatsDetailed, error) {
	return getJSON[CacheStatsDetailed](ctx, c, c.endpoint(nil, "admin", "cache", "stats"))
}

func (c *Client) ClearCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.endpoint(nil, "admin", "cache", "clear"), nil, nil)
}

func (c *Client) LoadBalancerStats(ctx context.Context) (*LoadBalancerStats, error) {
	return getJSON[LoadBalancerStats](ctx, c, c.endpoint(nil, "admin", "loadbalancer", "stats"))
}

func (c *Client) HealthCheckStats(ctx context.Context) (*HealthCheckStats, error) {
	return getJSON[HealthCheckStats](ctx, c, c.endpoint(nil, "admin", "healthcheck", "stats"))
}

func (c *Client) QueryLogStats(ctx context.Context) (*QueryLogStats, error) {
	return getJSON[QueryLogStats](ctx, c, c.endpoint(nil, "admin", "querylog", "stats"))
}

func (c *Client) RateLimiterStats(ctx context.Context) (*RateLimiterStats, error) {
	return getJSON[RateLimiterStats](ctx, c, c.endpoint(nil, "admin", "ratelimiter", "stats"))
}

func getJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
