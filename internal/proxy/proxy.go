package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
)

// ReverseProxy forwards /api/v1 calls from the browser to the DNS API,
// authenticated with the session's access token.
type ReverseProxy struct {
	proxy  *httputil.ReverseProxy
	target *url.URL
	logger *slog.Logger
}

func NewReverseProxy(cfg config.APIConfig, logger *slog.Logger) (*ReverseProxy, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("proxy error",
				"error", err,
				"backend", target.String(),
				"path", r.URL.Path,
			)
			middleware.WriteError(w, http.StatusBadGateway, "The DNS API is unavailable")
		},
	}

	return &ReverseProxy{
		proxy:  proxy,
		target: target,
		logger: logger,
	}, nil
}

func (rp *ReverseProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider, ok := middleware.GetProvider(r.Context())
	if !ok {
		rp.logger.Error("no session in context")
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	token := provider.GetAccessToken(r.Context())
	if token == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	InjectHeaders(r, token, provider.User())

	rp.logger.Debug("proxying request",
		"path", r.URL.Path,
		"backend", rp.target.String(),
		"session_id", provider.SessionID(),
	)

	rp.proxy.ServeHTTP(w, r)
}
