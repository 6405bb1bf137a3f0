package handlers

import (
	"errors"
	"math"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcogenualdo/godnsweb/internal/auth"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
	"github.com/marcogenualdo/godnsweb/pkg/security"
)

type CallbackHandler struct {
	cfg      config.Config
	logger   *slog.Logger
	template *template.Template
}

func NewCallbackHandler(cfg config.Config, logger *slog.Logger) (*CallbackHandler, error) {
	tmpl, err := parseTemplate("callback_error.html")
	if err != nil {
		return nil, err
	}

	return &CallbackHandler{
		cfg:      cfg,
		logger:   logger,
		template: tmpl,
	}, nil
}

type CallbackErrorData struct {
	Title        string
	Theme        string
	Error        string
	LoginURL     string
	DelaySeconds int
}

// ServeHTTP completes the login. Any failure renders the error page, which
// returns to the login page on its own.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider, ok := middleware.GetProvider(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	if idpErr := q.Get("error"); idpErr != "" {
		msg := q.Get("error_description")
		if msg == "" {
			msg = idpErr
		}
		h.logger.Warn("identity provider returned an error", "error", idpErr, "description", q.Get("error_description"))
		provider.Fail(errors.New(msg))
		h.renderError(w, r, msg)
		return
	}

	code := q.Get("code")
	if code == "" {
		provider.Fail(auth.ErrExchangeFailed)
		h.renderError(w, r, "No authorization code received")
		return
	}

	if err := provider.CompleteLogin(r.Context(), code, q.Get("state")); err != nil {
		h.logger.Error("callback failed", "error", err)
		h.renderError(w, r, err.Error())
		return
	}

	// The pre-login id may have been planted; only a fresh one is signed in.
	sessionID := security.NewSessionID()
	if err := provider.RotateSession(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to rotate session", "error", err)
		h.renderError(w, r, "Failed to establish session")
		return
	}
	security.SetSessionCookie(w, h.cfg.Server, sessionID, h.cfg.Server.SessionTTL)

	if user := provider.User(); user != nil {
		h.logger.Info("authentication successful", "subject", user.Subject)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *CallbackHandler) renderError(w http.ResponseWriter, r *http.Request, msg string) {
	render(w, h.logger, h.template, http.StatusUnauthorized, CallbackErrorData{
		Title:        h.cfg.UI.Title,
		Theme:        security.Theme(r, h.cfg.UI.DefaultTheme),
		Error:        msg,
		LoginURL:     middleware.LoginPath,
		DelaySeconds: refreshSeconds(h.cfg.OIDC.CallbackErrorDelay),
	})
}

// refreshSeconds rounds d up to whole seconds for the meta refresh, so the
// page never redirects sooner than configured.
func refreshSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
