package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
	"github.com/marcogenualdo/godnsweb/internal/session"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

type HomeHandler struct {
	cfg      config.Config
	csrf     *middleware.CSRFMiddleware
	logger   *slog.Logger
	template *template.Template
}

func NewHomeHandler(cfg config.Config, csrf *middleware.CSRFMiddleware, logger *slog.Logger) (*HomeHandler, error) {
	tmpl, err := parseTemplate("home.html")
	if err != nil {
		return nil, err
	}
	return &HomeHandler{cfg: cfg, csrf: csrf, logger: logger, template: tmpl}, nil
}

type HomePageData struct {
	Title     string
	Theme     string
	CSRFToken string
	User      *session.Identity
}

func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider, ok := middleware.GetProvider(r.Context())
	if !ok || provider.User() == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
		return
	}

	csrfToken, err := h.csrf.GenerateCSRFToken(r.Context())
	if err != nil {
		h.logger.Error("failed to generate CSRF token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render(w, h.logger, h.template, http.StatusOK, HomePageData{
		Title:     h.cfg.UI.Title,
		Theme:     security.Theme(r, h.cfg.UI.DefaultTheme),
		CSRFToken: csrfToken,
		User:      provider.User(),
	})
}
