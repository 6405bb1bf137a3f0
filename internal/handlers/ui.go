package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marcogenualdo/godnsweb/internal/api"
	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/dns"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
	"github.com/marcogenualdo/godnsweb/internal/session"
	"github.com/marcogenualdo/godnsweb/internal/views"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

// UserInfoFetcher reads the identity provider's userinfo endpoint.
type UserInfoFetcher interface {
	UserInfo(ctx context.Context, accessToken string) (map[string]any, error)
}

// UIHandler serves the JSON endpoints behind the console pages.
type UIHandler struct {
	cfg      config.Config
	cache    cache.Cache
	api      *api.Client
	userInfo UserInfoFetcher
	csrf     *middleware.CSRFMiddleware
	logger   *slog.Logger
}

func NewUIHandler(cfg config.Config, cache cache.Cache, client *api.Client, userInfo UserInfoFetcher, csrf *middleware.CSRFMiddleware, logger *slog.Logger) *UIHandler {
	return &UIHandler{
		cfg:      cfg,
		cache:    cache,
		api:      client,
		userInfo: userInfo,
		csrf:     csrf,
		logger:   logger,
	}
}

type requestScope struct {
	provider *session.Provider
	client   *api.Client
	views    *views.Service
}

func (h *UIHandler) scope(w http.ResponseWriter, r *http.Request) (*requestScope, bool) {
	provider, ok := middleware.GetProvider(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	client := h.api.For(provider)
	store := views.NewStore(h.cache, provider.SessionID(), h.cfg.Server.SessionTTL)
	return &requestScope{
		provider: provider,
		client:   client,
		views:    views.NewService(client, store, h.cfg.UI, h.logger),
	}, true
}

// writeError maps validation, API and transport failures to a JSON error.
func (h *UIHandler) writeError(w http.ResponseWriter, err error) {
	var verr *dns.ValidationError
	var apiErr *api.APIError
	switch {
	case errors.As(err, &verr):
		middleware.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &apiErr):
		middleware.WriteError(w, apiErr.Status, apiErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		middleware.WriteError(w, http.StatusGatewayTimeout, "The DNS API did not respond in time")
	default:
		h.logger.Error("dns api request failed", "error", err)
		middleware.WriteError(w, http.StatusBadGateway, "The DNS API is unavailable")
	}
}

// writePage answers with a view that may carry a refresh error next to
// the rows it kept.
func (h *UIHandler) writePage(w http.ResponseWriter, page any, err error) {
	status := http.StatusOK
	if api.StatusOf(err) == http.StatusUnauthorized {
		status = http.StatusUnauthorized
	}
	middleware.WriteJSON(w, status, page)
}

func viewQuery(r *http.Request) views.Query {
	q := r.URL.Query()
	var vq views.Query
	if q.Has("filter") {
		f := q.Get("filter")
		vq.Filter = &f
	}
	if q.Has("type") {
		t := q.Get("type")
		vq.TypeFilter = &t
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		vq.Page = p
	}
	return vq
}

func sortQuery(w http.ResponseWriter, r *http.Request) (views.Query, bool) {
	key := r.FormValue("key")
	if key == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Sort key is required")
		return views.Query{}, false
	}
	return views.Query{Sort: key}, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

type meResponse struct {
	User          *session.Identity `json:"user"`
	Authenticated bool              `json:"authenticated"`
	DisplayName   string            `json:"display_name"`
	Initials      string            `json:"initials"`
	PrimaryRole   string            `json:"primary_role"`
	Theme         string            `json:"theme"`
}

func (h *UIHandler) me(r *http.Request, provider *session.Provider) meResponse {
	user := provider.User()
	resp := meResponse{
		User:          user,
		Authenticated: user != nil,
		Theme:         security.Theme(r, h.cfg.UI.DefaultTheme),
	}
	if user != nil {
		resp.DisplayName = user.DisplayName()
		resp.Initials = user.Initials()
		resp.PrimaryRole = user.PrimaryRole()
	}
	return resp
}

func (h *UIHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.me(r, s.provider))
}

type profileResponse struct {
	meResponse
	UserInfo      map[string]any `json:"userinfo,omitempty"`
	UserInfoError string         `json:"userinfo_error,omitempty"`
}

// Profile adds the identity provider's userinfo claims to Me.
func (h *UIHandler) Profile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}

	resp := profileResponse{meResponse: h.me(r, s.provider)}
	if token := s.provider.GetAccessToken(r.Context()); token != "" {
		info, err := h.userInfo.UserInfo(r.Context(), token)
		if err != nil {
			h.logger.Warn("failed to fetch userinfo", "error", err)
			resp.UserInfoError = err.Error()
		} else {
			resp.UserInfo = info
		}
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (h *UIHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.GenerateCSRFToken(r.Context())
	if err != nil {
		h.logger.Error("failed to generate CSRF token", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *UIHandler) Zones(w http.ResponseWriter, r *http.Request) {
	h.renderZones(w, r, viewQuery(r))
}

func (h *UIHandler) SortZones(w http.ResponseWriter, r *http.Request) {
	if q, ok := sortQuery(w, r); ok {
		h.renderZones(w, r, q)
	}
}

func (h *UIHandler) renderZones(w http.ResponseWriter, r *http.Request, q views.Query) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	page, err := s.views.Zones(r.Context(), q)
	h.writePage(w, page, err)
}

func (h *UIHandler) Records(w http.ResponseWriter, r *http.Request) {
	h.renderRecords(w, r, viewQuery(r))
}

func (h *UIHandler) SortRecords(w http.ResponseWriter, r *http.Request) {
	if q, ok := sortQuery(w, r); ok {
		h.renderRecords(w, r, q)
	}
}

func (h *UIHandler) renderRecords(w http.ResponseWriter, r *http.Request, q views.Query) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	page, err := s.views.Records(r.Context(), q)
	h.writePage(w, page, err)
}

func (h *UIHandler) ZoneDetail(w http.ResponseWriter, r *http.Request) {
	h.renderZone(w, r, viewQuery(r))
}

func (h *UIHandler) SortZone(w http.ResponseWriter, r *http.Request) {
	if q, ok := sortQuery(w, r); ok {
		h.renderZone(w, r, q)
	}
}

func (h *UIHandler) renderZone(w http.ResponseWriter, r *http.Request, q views.Query) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	page, err := s.views.ZoneDetail(r.Context(), chi.URLParam(r, "domain"), q)
	if err != nil && page.Zone == nil {
		h.writeError(w, err)
		return
	}
	h.writePage(w, page, err)
}

// reconcile re-renders the view a mutation touched. Record mutations made
// from the cross-zone list pass view=records.
func (h *UIHandler) reconcile(w http.ResponseWriter, r *http.Request, s *requestScope, domain string, status int) {
	var page any
	var err error
	switch {
	case r.URL.Query().Get("view") == views.ViewRecords:
		page, err = s.views.Records(r.Context(), views.Query{})
	case domain == "":
		page, err = s.views.Zones(r.Context(), views.Query{})
	default:
		page, err = s.views.ZoneDetail(r.Context(), domain, views.Query{})
	}
	if err != nil {
		h.logger.Warn("failed to reload view after mutation", "error", err)
	}
	middleware.WriteJSON(w, status, page)
}

func (h *UIHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	var zone dns.Zone
	if !decodeBody(w, r, &zone) {
		return
	}
	if _, err := s.views.CreateZone(r.Context(), zone); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, "", http.StatusCreated)
}

func (h *UIHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	var zone dns.Zone
	if !decodeBody(w, r, &zone) {
		return
	}
	domain := chi.URLParam(r, "domain")
	if _, err := s.views.UpdateZone(r.Context(), domain, zone); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, domain, http.StatusOK)
}

func (h *UIHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := s.views.DeleteZone(r.Context(), chi.URLParam(r, "domain")); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, "", http.StatusOK)
}

type statusBody struct {
	Enabled *bool `json:"enabled"`
}

func decodeStatus(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var body statusBody
	if !decodeBody(w, r, &body) {
		return false, false
	}
	if body.Enabled == nil {
		middleware.WriteError(w, http.StatusBadRequest, "enabled is required")
		return false, false
	}
	return *body.Enabled, true
}

func (h *UIHandler) SetZoneStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	enabled, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	domain := chi.URLParam(r, "domain")
	if err := s.views.SetZoneStatus(r.Context(), domain, enabled); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, domain, http.StatusOK)
}

func (h *UIHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	var record dns.Record
	if !decodeBody(w, r, &record) {
		return
	}
	domain := chi.URLParam(r, "domain")
	if _, err := s.views.CreateRecord(r.Context(), domain, record); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, domain, http.StatusCreated)
}

func (h *UIHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	var record dns.Record
	if !decodeBody(w, r, &record) {
		return
	}
	domain := chi.URLParam(r, "domain")
	if _, err := s.views.UpdateRecord(r.Context(), domain, chi.URLParam(r, "name"), chi.URLParam(r, "type"), record); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, domain, http.StatusOK)
}

func (h *UIHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	domain := chi.URLParam(r, "domain")
	if err := s.views.DeleteRecord(r.Context(), domain, chi.URLParam(r, "name"), chi.URLParam(r, "type")); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, domain, http.StatusOK)
}

func (h *UIHandler) SetRecordStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	enabled, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	domain := chi.URLParam(r, "domain")
	if err := s.views.SetRecordStatus(r.Context(), domain, chi.URLParam(r, "name"), chi.URLParam(r, "type"), enabled); err != nil {
		h.writeError(w, err)
		return
	}
	h.reconcile(w, r, s, domain, http.StatusOK)
}

func (h *UIHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	types := q["type"]
	for _, t := range types {
		if t != "zone" && t != "record" {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid type parameter. Allowed values: zone, record")
			return
		}
	}
	resp, err := s.client.Search(r.Context(), query, types...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Export downloads zone data as text. Only enabled zones are exported.
func (h *UIHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "bind"
	}
	if !slices.Contains(dns.ExportFormats, format) {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format %q", format))
		return
	}

	domain := chi.URLParam(r, "domain")
	var data string
	var err error
	name := "all-zones"
	if domain == "" {
		data, err = s.client.ExportAll(r.Context(), format)
	} else {
		name = domain
		data, err = s.client.ExportZone(r.Context(), domain, format)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"-"+format+".txt"))
	_, _ = w.Write([]byte(data))
}

// Admin returns one of the DNS server's statistics documents.
func (h *UIHandler) Admin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}

	var stats any
	var err error
	ctx := r.Context()
	switch chi.URLParam(r, "section") {
	case "stats":
		stats, err = s.client.SystemStats(ctx)
	case "cache":
		stats, err = s.client.CacheStats(ctx)
	case "loadbalancer":
		stats, err = s.client.LoadBalancerStats(ctx)
	case "healthcheck":
		stats, err = s.client.HealthCheckStats(ctx)
	case "querylog":
		stats, err = s.client.QueryLogStats(ctx)
	case "ratelimiter":
		stats, err = s.client.RateLimiterStats(ctx)
	default:
		middleware.WriteError(w, http.StatusNotFound, "Unknown statistics section")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, stats)
}

func (h *UIHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := s.client.ClearCache(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Theme reads or sets the light/dark preference.
func (h *UIHandler) Theme(w http.ResponseWriter, r *http.Request) {
	theme := security.Theme(r, h.cfg.UI.DefaultTheme)
	if r.Method == http.MethodPost {
		switch value := r.FormValue("theme"); value {
		case "light", "dark":
			theme = value
		case "toggle", "":
			if theme == "dark" {
				theme = "light"
			} else {
				theme = "dark"
			}
		default:
			middleware.WriteError(w, http.StatusBadRequest, "theme must be light or dark")
			return
		}
		http.SetCookie(w, security.CreateThemeCookie(h.cfg.Server, theme))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"theme": theme})
}
