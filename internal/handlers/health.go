package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
)

type HealthHandler struct {
	cfg       config.Config
	cache     cache.Cache
	client    *http.Client
	logger    *slog.Logger
	startTime time.Time
}

func NewHealthHandler(cfg config.Config, cache cache.Cache, client *http.Client, logger *slog.Logger) *HealthHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &HealthHandler{
		cfg:       cfg,
		cache:     cache,
		client:    client,
		logger:    logger,
		startTime: time.Now(),
	}
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Cache   CacheHealth   `json:"cache"`
	Backend BackendHealth `json:"backend"`
}

type CacheHealth struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type BackendHealth struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}

	response.Cache.Type = h.cfg.Cache.Type
	if err := h.cache.Set(ctx, "health:check", []byte("ok"), time.Minute); err != nil {
		response.Cache.Status = "error: " + err.Error()
		response.Status = "degraded"
	} else {
		response.Cache.Status = "connected"
		_ = h.cache.Delete(ctx, "health:check")
	}

	response.Backend.URL = h.cfg.API.URL
	response.Backend.Status = "reachable"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.API.URL, nil)
	if err == nil {
		var resp *http.Response
		if resp, err = h.client.Do(req); err == nil {
			resp.Body.Close()
		}
	}
	if err != nil {
		h.logger.Debug("dns api unreachable", "error", err)
		response.Backend.Status = "unreachable"
		response.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = json.NewEncoder(w).Encode(response)
}
