package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

const csrfTTL = 10 * time.Minute

type CSRFMiddleware struct {
	cache  cache.Cache
	logger *slog.Logger
}

func NewCSRFMiddleware(cache cache.Cache, logger *slog.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{
		cache:  cache,
		logger: logger,
	}
}

// ValidateCSRF consumes a single-use token on every state-changing request.
// The token comes from the csrf_token form field or the X-CSRF-Token header.
func (cm *CSRFMiddleware) ValidateCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.FormValue("csrf_token")
		}

		if token == "" {
			cm.logger.Warn("missing CSRF token", "path", r.URL.Path)
			WriteError(w, http.StatusForbidden, "Missing CSRF token")
			return
		}

		exists, err := cm.cache.Exists(r.Context(), "csrf:"+token)
		if err != nil {
			cm.logger.Error("failed to check CSRF token", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !exists {
			cm.logger.Warn("invalid CSRF token", "path", r.URL.Path)
			WriteError(w, http.StatusForbidden, "Invalid or expired CSRF token")
			return
		}

		if err := cm.cache.Delete(r.Context(), "csrf:"+token); err != nil {
			cm.logger.Warn("failed to consume CSRF token", "error", err)
		}

		next.ServeHTTP(w, r)
	})
}

func (cm *CSRFMiddleware) GenerateCSRFToken(ctx context.Context) (string, error) {
	token, err := security.GenerateCSRFToken()
	if err != nil {
		return "", err
	}

	if err := cm.cache.Set(ctx, "csrf:"+token, []byte("1"), csrfTTL); err != nil {
		return "", err
	}

	return token, nil
}
