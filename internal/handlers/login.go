package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/marcogenualdo/godnsweb/internal/auth"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

type LoginHandler struct {
	cfg      config.Config
	csrf     *middleware.CSRFMiddleware
	logger   *slog.Logger
	template *template.Template
}

func NewLoginHandler(cfg config.Config, csrf *middleware.CSRFMiddleware, logger *slog.Logger) (*LoginHandler, error) {
	tmpl, err := parseTemplate("login.html")
	if err != nil {
		return nil, err
	}

	return &LoginHandler{
		cfg:      cfg,
		csrf:     csrf,
		logger:   logger,
		template: tmpl,
	}, nil
}

type LoginPageData struct {
	Title     string
	Theme     string
	CSRFToken string
	Error     string
}

// ServePage renders the login page, or sends an already signed in user
// to the console.
func (h *LoginHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	provider, ok := middleware.GetProvider(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if state := provider.Initialize(r.Context()); state.Authenticated {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	csrfToken, err := h.csrf.GenerateCSRFToken(r.Context())
	if err != nil {
		h.logger.Error("failed to generate CSRF token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render(w, h.logger, h.template, http.StatusOK, LoginPageData{
		Title:     h.cfg.UI.Title,
		Theme:     security.Theme(r, h.cfg.UI.DefaultTheme),
		CSRFToken: csrfToken,
		Error:     r.URL.Query().Get("error"),
	})
}

// StartLogin begins the authorization code flow. When the flow cannot be
// started the user is sent back to the login page.
func (h *LoginHandler) StartLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := middleware.GetProvider(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	provider.Login(r.Context())
	if provider.State().Phase != auth.PhaseAwaitingCallback {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
	}
}
