package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/marcogenualdo/godnsweb/internal/auth"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/metrics"
)

// Endpoints of a Keycloak realm.
type Endpoints struct {
	Issuer        string
	Authorization string
	Token         string
	UserInfo      string
	Logout        string
	JWKS          string
}

func EndpointsFor(authority, realm string) Endpoints {
	issuer := strings.TrimRight(authority, "/") + "/realms/" + realm
	base := issuer + "/protocol/openid-connect"
	return Endpoints{
		Issuer:        issuer,
		Authorization: base + "/auth",
		Token:         base + "/token",
		UserInfo:      base + "/userinfo",
		Logout:        base + "/logout",
		JWKS:          base + "/certs",
	}
}

// Manager drives the authorization code + PKCE flow against the identity
// provider. It holds no per-user state: everything belonging to a browser
// session lives in the TokenStore passed to each call.
type Manager struct {
	cfg          config.OIDCConfig
	endpoints    Endpoints
	oauth2Config oauth2.Config
	httpClient   *http.Client
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time

	refreshes singleflight.Group
}

type Option func(*Manager)

func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(cfg config.OIDCConfig, logger *slog.Logger, opts ...Option) *Manager {
	endpoints := EndpointsFor(cfg.Authority, cfg.Realm)

	m := &Manager{
		cfg:       cfg,
		endpoints: endpoints,
		oauth2Config: oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:   endpoints.Authorization,
				TokenURL:  endpoints.Token,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.Scopes,
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Endpoints() Endpoints {
	return m.endpoints
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// BuildAuthorizationURL starts a login attempt. Any previous attempt of the
// same browser session is overwritten.
func (m *Manager) BuildAuthorizationURL(ctx context.Context, store *auth.TokenStore) (string, error) {
	verifier, err := auth.GenerateVerifier()
	if err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	state, err := auth.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := store.SavePKCE(ctx, auth.PKCEContext{CodeVerifier: verifier, State: state}); err != nil {
		return "", fmt.Errorf("failed to store pkce context: %w", err)
	}

	return m.oauth2Config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", auth.GenerateChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// ExchangeCodeForTokens validates the callback against the stored PKCE
// context and redeems the code. The stored context is deleted whatever
// the outcome. The caller persists the returned tokens.
func (m *Manager) ExchangeCodeForTokens(ctx context.Context, store *auth.TokenStore, code, state string) (*auth.TokenResponse, error) {
	defer func() {
		if err := store.ClearPKCE(ctx); err != nil {
			m.logger.Warn("failed to clear pkce context", "error", err)
		}
	}()

	pkce, err := store.PKCE(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pkce context: %w", err)
	}

	if pkce.State == "" || pkce.State != state {
		m.metrics.ObserveLogin("state_mismatch")
		return nil, auth.ErrStateMismatch
	}

	if pkce.CodeVerifier == "" {
		m.metrics.ObserveLogin("missing_verifier")
		return nil, auth.ErrMissingVerifier
	}

	token, err := m.oauth2Config.Exchange(
		m.clientContext(ctx),
		code,
		oauth2.SetAuthURLParam("code_verifier", pkce.CodeVerifier),
	)
	if err != nil {
		m.metrics.ObserveLogin("failed")
		return nil, fmt.Errorf("%w: %w", auth.ErrExchangeFailed, err)
	}

	m.metrics.ObserveLogin("success")
	return m.tokenResponse(token), nil
}

// RefreshAccessToken performs exactly one refresh_token grant.
func (m *Manager) RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.TokenResponse, error) {
	src := m.oauth2Config.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})

	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrRefreshFailed, err)
	}

	resp := m.tokenResponse(token)
	// oauth2 carries the old refresh token over when the response has none.
	if resp.RefreshToken == refreshToken {
		resp.RefreshToken = ""
	}
	return resp, nil
}

// GetValidAccessToken is the single way to obtain a bearer token. It never
// fails: "" means there is no usable token. Concurrent refreshes of the
// same browser session share one request.
func (m *Manager) GetValidAccessToken(ctx context.Context, store *auth.TokenStore) string {
	sess, err := store.Load(ctx)
	if err != nil {
		m.logger.Error("failed to load session", "error", err)
		return ""
	}

	if !sess.HasAccessToken() {
		return ""
	}

	if !store.IsExpired(ctx) {
		return sess.AccessToken
	}

	if sess.RefreshToken == "" {
		return ""
	}

	v, err, shared := m.refreshes.Do(store.SessionID(), func() (any, error) {
		// A refresh that finished between Load and here already did the work.
		if current, err := store.Load(ctx); err == nil && current.AccessToken != sess.AccessToken && !store.IsExpired(ctx) {
			return current.AccessToken, nil
		}
		return m.refreshAndStore(context.WithoutCancel(ctx), store, sess.RefreshToken)
	})
	if err != nil {
		m.logger.Warn("token refresh failed", "error", err)
		return ""
	}
	if shared {
		m.logger.Debug("joined in-flight token refresh")
	}
	return v.(string)
}

func (m *Manager) refreshAndStore(ctx context.Context, store *auth.TokenStore, refreshToken string) (string, error) {
	tokens, err := m.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		m.metrics.ObserveRefresh("failed")
		return "", err
	}

	if err := store.Save(ctx, tokens); err != nil {
		m.metrics.ObserveRefresh("store_failed")
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	m.metrics.ObserveRefresh("success")
	return tokens.AccessToken, nil
}

// Logout clears the local session and returns the identity provider's
// end-session URL. Clearing never depends on the redirect being followed.
func (m *Manager) Logout(ctx context.Context, store *auth.TokenStore, idTokenHint string) string {
	if err := store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear session on logout", "error", err)
	}
	m.metrics.IncrementLogout()

	params := url.Values{}
	params.Set("client_id", m.cfg.ClientID)
	params.Set("post_logout_redirect_uri", m.cfg.PostLogoutRedirectURI)
	if idTokenHint != "" {
		params.Set("id_token_hint", idTokenHint)
	}

	return m.endpoints.Logout + "?" + params.Encode()
}

// UserInfo fetches the claims of the userinfo endpoint.
func (m *Manager) UserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	providerCfg := &oidc.ProviderConfig{
		IssuerURL:   m.endpoints.Issuer,
		AuthURL:     m.endpoints.Authorization,
		TokenURL:    m.endpoints.Token,
		UserInfoURL: m.endpoints.UserInfo,
		JWKSURL:     m.endpoints.JWKS,
	}
	ctx = oidc.ClientContext(ctx, m.httpClient)
	provider := providerCfg.NewProvider(ctx)

	info, err := provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	var claims map[string]any
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return claims, nil
}

func (m *Manager) tokenResponse(token *oauth2.Token) *auth.TokenResponse {
	resp := &auth.TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresIn:    m.expiresIn(token),
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		resp.IDToken = idToken
	}
	return resp
}

// expiresIn prefers the raw expires_in of the response and falls back to
// the expiry computed by oauth2.
func (m *Manager) expiresIn(token *oauth2.Token) int64 {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	if token.Expiry.IsZero() {
		return 0
	}
	return int64(math.Round(token.Expiry.Sub(m.now()).Seconds()))
}

// IsStateError reports whether err is a callback forgery or lost-context
// error rather than an identity provider failure.
func IsStateError(err error) bool {
	return errors.Is(err, auth.ErrStateMismatch) || errors.Is(err, auth.ErrMissingVerifier)
}
