package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marcogenualdo/godnsweb/internal/auth"
	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/session"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

const LoginPath = "/login"

type AuthMiddleware struct {
	cfg     config.Config
	cache   cache.Cache
	manager session.SessionManager
	logger  *slog.Logger
}

func NewAuthMiddleware(cfg config.Config, cache cache.Cache, manager session.SessionManager, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		cfg:     cfg,
		cache:   cache,
		manager: manager,
		logger:  logger,
	}
}

// Attach binds the request to its browser session, issuing a session
// cookie when there is none, and puts a session.Provider in the context.
// Navigation requested by the provider becomes a 302.
func (am *AuthMiddleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := security.GetSessionCookie(r, am.cfg.Server.CookieName); err == nil && security.ValidSessionID(cookie.Value) {
			sessionID = cookie.Value
		} else {
			sessionID = security.NewSessionID()
			am.logger.Debug("issuing session cookie", "path", r.URL.Path)
		}
		// Refreshed on every request so an active session does not expire.
		security.SetSessionCookie(w, am.cfg.Server, sessionID, am.cfg.Server.SessionTTL)

		store := auth.NewTokenStore(am.cache, sessionID,
			auth.WithSessionTTL(am.cfg.Server.SessionTTL),
			auth.WithPKCETTL(am.cfg.OIDC.PKCETTL),
		)
		nav := session.NavigatorFunc(func(url string) {
			http.Redirect(w, r, url, http.StatusFound)
		})
		provider := session.NewProvider(am.manager, store, nav, am.logger.With("session_id", sessionID))

		ctx := session.WithProvider(r.Context(), provider)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth initializes the session and lets the request through only
// when a user is resolved. Browser navigations are sent to the login page,
// everything else gets a 401.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provider, ok := session.FromContext(r.Context())
		if !ok {
			am.logger.Error("no session in context")
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		provider.Initialize(r.Context())
		switch provider.Gate() {
		case session.GateRender:
			next.ServeHTTP(w, r)
		default:
			am.logger.Debug("unauthenticated request", "path", r.URL.Path)
			if wantsJSON(r) {
				WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusFound)
		}
	})
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/ui/") || strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// GetProvider returns the session bound by Attach.
func GetProvider(ctx context.Context) (*session.Provider, bool) {
	return session.FromContext(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
