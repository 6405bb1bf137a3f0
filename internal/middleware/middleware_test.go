package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcogenualdo/godnsweb/internal/auth"
	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/session"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// storedTokenManager treats whatever the store holds as a valid token.
type storedTokenManager struct{}

func (storedTokenManager) BuildAuthorizationURL(context.Context, *auth.TokenStore) (string, error) {
	return "http://idp.test/auth", nil
}

func (storedTokenManager) ExchangeCodeForTokens(context.Context, *auth.TokenStore, string, string) (*auth.TokenResponse, error) {
	return nil, auth.ErrExchangeFailed
}

func (storedTokenManager) GetValidAccessToken(ctx context.Context, store *auth.TokenStore) string {
	sess, err := store.Load(ctx)
	if err != nil {
		return ""
	}
	return sess.AccessToken
}

func (storedTokenManager) Logout(context.Context, *auth.TokenStore, string) string {
	return "http://idp.test/logout"
}

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			CookieName:     "godns_session",
			CookieHTTPOnly: true,
			CookieSameSite: "lax",
			SessionTTL:     time.Hour,
		},
		OIDC: config.OIDCConfig{PKCETTL: 10 * time.Minute},
	}
}

func accessToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          "u-1",
		"name":         "Ada Lovelace",
		"realm_access": map[string]any{"roles": []string{"dns-admin"}},
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}

func newAuthMiddleware(t *testing.T) (*AuthMiddleware, cache.Cache) {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	return NewAuthMiddleware(testConfig(), c, storedTokenManager{}, testLogger), c
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "godns_session" {
			return c
		}
	}
	return nil
}

func TestAttach_IssuesSessionCookie(t *testing.T) {
	am, _ := newAuthMiddleware(t)

	var provider *session.Provider
	h := am.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provider, _ = GetProvider(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	_, err := uuid.Parse(cookie.Value)
	require.NoError(t, err)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	require.NotNil(t, provider)
	assert.Equal(t, cookie.Value, provider.SessionID())
}

func TestAttach_KeepsValidCookieAndReplacesForgedOne(t *testing.T) {
	am, _ := newAuthMiddleware(t)
	h := am.Attach(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	sid := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "godns_session", Value: sid})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, sid, sessionCookie(rec).Value)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "godns_session", Value: "../../etc"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "../../etc", sessionCookie(rec).Value)
}

func TestRequireAuth(t *testing.T) {
	am, c := newAuthMiddleware(t)
	sid := uuid.NewString()
	require.NoError(t, auth.NewTokenStore(c, sid).Save(context.Background(), &auth.TokenResponse{
		AccessToken: accessToken(t),
		ExpiresIn:   300,
	}))

	var seen *session.Identity
	h := am.Attach(am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetProvider(r.Context())
		seen = p.User()
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name     string
		path     string
		accept   string
		sid      string
		status   int
		location string
	}{
		{name: "authenticated", path: "/", sid: sid, status: http.StatusNoContent},
		{name: "browser navigation", path: "/", status: http.StatusFound, location: LoginPath},
		{name: "ui call", path: "/ui/zones", status: http.StatusUnauthorized},
		{name: "api call", path: "/api/v1/zones", status: http.StatusUnauthorized},
		{name: "json accept", path: "/", accept: "application/json", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.sid != "" {
				req.AddCookie(&http.Cookie{Name: "godns_session", Value: tt.sid})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String())
			}
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "u-1", seen.Subject)
}

func TestCSRF_SingleUseToken(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	cm := NewCSRFMiddleware(c, testLogger)

	calls := 0
	h := cm.ValidateCSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	token, err := cm.GenerateCSRFToken(context.Background())
	require.NoError(t, err)

	post := func(set func(*http.Request)) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader("csrf_token="+token))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if set != nil {
			set(req)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post(nil))
	assert.Equal(t, http.StatusForbidden, post(nil), "token is consumed")
	assert.Equal(t, 1, calls)

	token, err = cm.GenerateCSRFToken(context.Background())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/ui/zones/example.com", nil)
	req.Header.Set("X-CSRF-Token", token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, calls)
}

func TestCSRF_SafeMethodsPass(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	h := NewCSRFMiddleware(c, testLogger).ValidateCSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/zones", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ui/zones", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Missing CSRF token"}`, rec.Body.String())
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
