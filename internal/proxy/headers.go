package proxy

import (
	"net/http"
	"strings"

	"github.com/marcogenualdo/godnsweb/internal/session"
)

// Headers the browser may send that must never reach the DNS API.
var strippedHeaders = []string{
	"Cookie",
	"X-CSRF-Token",
	"X-Auth-Subject",
	"X-Auth-Roles",
}

// InjectHeaders replaces the browser's credentials with the session's
// bearer token. The identity headers are informational only.
func InjectHeaders(req *http.Request, accessToken string, user *session.Identity) {
	for _, h := range strippedHeaders {
		req.Header.Del(h)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	if user != nil {
		if user.Subject != "" {
			req.Header.Set("X-Auth-Subject", user.Subject)
		}
		if len(user.Roles) > 0 {
			req.Header.Set("X-Auth-Roles", strings.Join(user.Roles, ","))
		}
	}
}
