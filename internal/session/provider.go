package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/marcogenualdo/godnsweb/internal/auth"
)

// SessionManager is the part of the OIDC manager the provider drives.
type SessionManager interface {
	BuildAuthorizationURL(ctx context.Context, store *auth.TokenStore) (string, error)
	ExchangeCodeForTokens(ctx context.Context, store *auth.TokenStore, code, state string) (*auth.TokenResponse, error)
	GetValidAccessToken(ctx context.Context, store *auth.TokenStore) string
	Logout(ctx context.Context, store *auth.TokenStore, idTokenHint string) string
}

// Navigator sends the user agent somewhere else.
type Navigator interface {
	Navigate(url string)
}

type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

type State struct {
	User          *Identity       `json:"user"`
	Authenticated bool            `json:"authenticated"`
	Loading       bool            `json:"loading"`
	Phase         auth.LoginPhase `json:"phase"`
	Error         string          `json:"error,omitempty"`
}

type Gate int

const (
	GateLoading Gate = iota
	GateRedirectLogin
	GateRender
)

// Provider is the observable authentication state of one browser session.
// It starts in the loading state until Initialize has run.
type Provider struct {
	manager SessionManager
	store   *auth.TokenStore
	nav     Navigator
	logger  *slog.Logger

	mu     sync.RWMutex
	state  State
	subs   map[int]func(State)
	nextID int
}

func NewProvider(manager SessionManager, store *auth.TokenStore, nav Navigator, logger *slog.Logger) *Provider {
	return &Provider{
		manager: manager,
		store:   store,
		nav:     nav,
		logger:  logger,
		state:   State{Loading: true, Phase: auth.PhaseIdle},
		subs:    make(map[int]func(State)),
	}
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Provider) User() *Identity {
	return p.State().User
}

func (p *Provider) Gate() Gate {
	s := p.State()
	switch {
	case s.Loading:
		return GateLoading
	case s.User == nil:
		return GateRedirectLogin
	default:
		return GateRender
	}
}

// Subscribe registers fn for every state change. The returned function
// unsubscribes and may be called more than once.
func (p *Provider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) update(fn func(*State)) {
	p.mu.Lock()
	fn(&p.state)
	snapshot := p.state
	subs := make([]func(State), 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		s(snapshot)
	}
}

// Initialize resolves the current user. It never fails: any problem leaves
// the session unauthenticated.
func (p *Provider) Initialize(ctx context.Context) State {
	p.update(func(s *State) { s.Loading = true })

	var user *Identity
	if token := p.manager.GetValidAccessToken(ctx, p.tokenStore()); token != "" {
		identity, err := DecodeIdentity(token)
		if err != nil {
			p.logger.Error("failed to initialize auth", "error", err)
		} else {
			user = identity
		}
	}

	phase := auth.PhaseIdle
	if user != nil {
		phase = auth.PhaseAuthenticated
	} else if pkce, err := p.tokenStore().PKCE(ctx); err == nil && pkce.State != "" {
		phase = auth.PhaseAwaitingCallback
	}

	p.update(func(s *State) {
		s.User = user
		s.Authenticated = user != nil
		s.Loading = false
		if s.Phase != auth.PhaseFailed {
			s.Phase = phase
		}
	})
	return p.State()
}

// Login sends the user to the identity provider. A failure is logged and
// the user stays where they are.
func (p *Provider) Login(ctx context.Context) {
	p.update(func(s *State) {
		s.Phase = auth.PhaseAwaitingRedirect
		s.Error = ""
	})

	authURL, err := p.manager.BuildAuthorizationURL(ctx, p.tokenStore())
	if err != nil {
		p.logger.Error("login failed", "error", err)
		p.update(func(s *State) { s.Phase = auth.PhaseIdle })
		return
	}

	p.nav.Navigate(authURL)
	p.update(func(s *State) { s.Phase = auth.PhaseAwaitingCallback })
}

// CompleteLogin handles the identity provider callback: it redeems the
// code, persists the tokens and re-initializes the session.
func (p *Provider) CompleteLogin(ctx context.Context, code, state string) error {
	p.update(func(s *State) {
		s.Phase = auth.PhaseExchanging
		s.Error = ""
	})

	tokens, err := p.manager.ExchangeCodeForTokens(ctx, p.tokenStore(), code, state)
	if err == nil {
		err = p.tokenStore().Save(ctx, tokens)
	}
	if err != nil {
		p.fail(err)
		return err
	}

	if s := p.Initialize(ctx); !s.Authenticated {
		err := errors.New("received an unusable access token")
		p.fail(err)
		return err
	}
	return nil
}

// Fail records a callback error reported by the identity provider itself.
func (p *Provider) Fail(err error) {
	p.fail(err)
}

func (p *Provider) fail(err error) {
	p.logger.Warn("login failed", "error", err)
	p.update(func(s *State) {
		s.Phase = auth.PhaseFailed
		s.Error = err.Error()
		s.User = nil
		s.Authenticated = false
		s.Loading = false
	})
}

// Logout clears the session and navigates to the identity provider's
// end-session endpoint.
func (p *Provider) Logout(ctx context.Context) {
	var hint string
	if sess, err := p.tokenStore().Load(ctx); err == nil {
		hint = sess.IDToken
	}

	logoutURL := p.manager.Logout(ctx, p.tokenStore(), hint)
	p.update(func(s *State) {
		s.User = nil
		s.Authenticated = false
		s.Phase = auth.PhaseIdle
	})
	p.nav.Navigate(logoutURL)
}

func (p *Provider) tokenStore() *auth.TokenStore {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

func (p *Provider) SessionID() string {
	return p.tokenStore().SessionID()
}

// RotateSession moves the session's tokens under sessionID. It is called
// once a login completes so an identifier known before authentication is
// never authenticated. On failure the session is signed out.
func (p *Provider) RotateSession(ctx context.Context, sessionID string) error {
	moved, err := p.tokenStore().MoveTo(ctx, sessionID)
	if err != nil {
		p.fail(err)
		return err
	}

	p.mu.Lock()
	p.store = moved
	p.mu.Unlock()
	return nil
}

func (p *Provider) GetAccessToken(ctx context.Context) string {
	return p.manager.GetValidAccessToken(ctx, p.tokenStore())
}

type contextKey struct{}

func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (*Provider, bool) {
	p, ok := ctx.Value(contextKey{}).(*Provider)
	return p, ok
}
