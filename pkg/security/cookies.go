package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/marcogenualdo/godnsweb/internal/config"
)

// ThemeCookieName holds the light/dark preference. It is readable by
// scripts, unlike the session cookie.
const ThemeCookieName = "theme"

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func CreateSessionCookie(cfg config.ServerConfig, sessionID string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(maxAge.Seconds()),
		Secure:   cfg.CookieSecure,
		HttpOnly: cfg.CookieHTTPOnly,
		SameSite: sameSite(cfg.CookieSameSite),
	}
}

// SetSessionCookie queues the session cookie, replacing one already queued
// on w so a rotated id is the only one the browser sees.
func SetSessionCookie(w http.ResponseWriter, cfg config.ServerConfig, sessionID string, maxAge time.Duration) {
	replaceCookie(w, CreateSessionCookie(cfg, sessionID, maxAge))
}

// ExpireSessionCookie queues the deletion of the session cookie.
func ExpireSessionCookie(w http.ResponseWriter, cfg config.ServerConfig) {
	replaceCookie(w, ClearSessionCookie(cfg))
}

func replaceCookie(w http.ResponseWriter, cookie *http.Cookie) {
	h := w.Header()
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, cookie.Name+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	http.SetCookie(w, cookie)
}

func ClearSessionCookie(cfg config.ServerConfig) *http.Cookie {
	cookie := CreateSessionCookie(cfg, "", 0)
	cookie.MaxAge = -1
	return cookie
}

func GetSessionCookie(req *http.Request, cookieName string) (*http.Cookie, error) {
	return req.Cookie(cookieName)
}

func CreateThemeCookie(cfg config.ServerConfig, theme string) *http.Cookie {
	return &http.Cookie{
		Name:     ThemeCookieName,
		Value:    theme,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   cfg.CookieSecure,
		SameSite: sameSite(cfg.CookieSameSite),
	}
}

// Theme returns the stored preference, or fallback when the cookie is
// missing or holds something other than "light" or "dark".
func Theme(req *http.Request, fallback string) string {
	cookie, err := req.Cookie(ThemeCookieName)
	if err != nil {
		return fallback
	}
	switch cookie.Value {
	case "light", "dark":
		return cookie.Value
	default:
		return fallback
	}
}
