package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcogenualdo/godnsweb/internal/config"
)

func TestSessionCookie(t *testing.T) {
	cfg := config.ServerConfig{CookieName: "godns-session", CookieHTTPOnly: true, CookieSameSite: "strict"}

	c := CreateSessionCookie(cfg, "sid", time.Hour)
	assert.Equal(t, "godns-session", c.Name)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	cleared := ClearSessionCookie(cfg)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestSetSessionCookie_ReplacesQueuedCookie(t *testing.T) {
	cfg := config.ServerConfig{CookieName: "godns_session"}
	rec := httptest.NewRecorder()
	http.SetCookie(rec, CreateThemeCookie(cfg, "light"))

	SetSessionCookie(rec, cfg, "old-id", time.Hour)
	SetSessionCookie(rec, cfg, "new-id", time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, ThemeCookieName, cookies[0].Name)
	assert.Equal(t, "godns_session", cookies[1].Name)
	assert.Equal(t, "new-id", cookies[1].Value)

	ExpireSessionCookie(rec, cfg)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Empty(t, cookies[1].Value)
	assert.Equal(t, -1, cookies[1].MaxAge)
}

func TestTheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "dark", Theme(req, "dark"))

	req.AddCookie(&http.Cookie{Name: ThemeCookieName, Value: "light"})
	assert.Equal(t, "light", Theme(req, "dark"))

	bogus := httptest.NewRequest(http.MethodGet, "/", nil)
	bogus.AddCookie(&http.Cookie{Name: ThemeCookieName, Value: "sepia"})
	assert.Equal(t, "dark", Theme(bogus, "dark"))

	assert.False(t, CreateThemeCookie(config.ServerConfig{}, "light").HttpOnly)
}

func TestSessionIDs(t *testing.T) {
	id := NewSessionID()
	assert.True(t, ValidSessionID(id))
	assert.NotEqual(t, id, NewSessionID())
	assert.False(t, ValidSessionID("../../etc"))
	assert.False(t, ValidSessionID(""))
}

func TestGenerateCSRFToken(t *testing.T) {
	a, err := GenerateCSRFToken()
	require.NoError(t, err)
	b, err := GenerateCSRFToken()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
