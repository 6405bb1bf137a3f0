package handlers

import (
	"log/slog"
	"net/http"

	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
	"github.com/marcogenualdo/godnsweb/internal/views"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

type LogoutHandler struct {
	cfg    config.Config
	cache  cache.Cache
	logger *slog.Logger
}

func NewLogoutHandler(cfg config.Config, cache cache.Cache, logger *slog.Logger) *LogoutHandler {
	return &LogoutHandler{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

// ServeHTTP clears the session, cached zone data included, and sends the
// browser to the identity provider's end-session endpoint.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	provider, ok := middleware.GetProvider(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	store := views.NewStore(h.cache, provider.SessionID(), h.cfg.Server.SessionTTL)
	if err := store.Purge(r.Context()); err != nil {
		h.logger.Warn("failed to drop cached views", "error", err)
	}

	security.ExpireSessionCookie(w, h.cfg.Server)
	provider.Logout(r.Context())

	h.logger.Info("user logged out")
}
