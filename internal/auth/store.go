package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcogenualdo/godnsweb/internal/cache"
)

// ExpiryMargin is subtracted from the access token expiry so a token is
// never sent when it is about to lapse.
const ExpiryMargin = 60 * time.Second

const (
	keyAccessToken  = "godns_access_token"
	keyRefreshToken = "godns_refresh_token"
	keyIDToken      = "godns_id_token"
	keyExpiresAt    = "godns_expires_at"
	keyCodeVerifier = "godns_code_verifier"
	keyState        = "godns_state"
)

var sessionKeys = []string{keyAccessToken, keyRefreshToken, keyIDToken, keyExpiresAt}

var pkceKeys = []string{keyCodeVerifier, keyState}

// TokenStore persists the tokens and the PKCE context of one browser
// session. Every value lives under its own key, so each operation is a
// single-key read or replace and a later write simply supersedes an
// earlier one.
type TokenStore struct {
	cache      cache.Cache
	sessionID  string
	sessionTTL time.Duration
	pkceTTL    time.Duration
	now        func() time.Time
}

type StoreOption func(*TokenStore)

func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *TokenStore) { s.sessionTTL = ttl }
}

func WithPKCETTL(ttl time.Duration) StoreOption {
	return func(s *TokenStore) { s.pkceTTL = ttl }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) { s.now = now }
}

func NewTokenStore(c cache.Cache, sessionID string, opts ...StoreOption) *TokenStore {
	s := &TokenStore{
		cache:      c,
		sessionID:  sessionID,
		sessionTTL: 24 * time.Hour,
		pkceTTL:    10 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenStore) SessionID() string {
	return s.sessionID
}

func (s *TokenStore) key(name string) string {
	return "session:" + s.sessionID + ":" + name
}

// Save persists a token response. The refresh and id tokens are only
// overwritten when the response carries them.
func (s *TokenStore) Save(ctx context.Context, tokens *TokenResponse) error {
	if tokens == nil || tokens.AccessToken == "" {
		return errors.New("token response has no access token")
	}

	expiresAt := s.now().UnixMilli() + tokens.ExpiresIn*1000

	if err := s.set(ctx, keyAccessToken, tokens.AccessToken, s.sessionTTL); err != nil {
		return err
	}
	if err := s.set(ctx, keyExpiresAt, strconv.FormatInt(expiresAt, 10), s.sessionTTL); err != nil {
		return err
	}
	if tokens.RefreshToken != "" {
		if err := s.set(ctx, keyRefreshToken, tokens.RefreshToken, s.sessionTTL); err != nil {
			return err
		}
	}
	if tokens.IDToken != "" {
		if err := s.set(ctx, keyIDToken, tokens.IDToken, s.sessionTTL); err != nil {
			return err
		}
	}

	return nil
}

func (s *TokenStore) Load(ctx context.Context) (Session, error) {
	var sess Session
	var err error

	if sess.AccessToken, err = s.get(ctx, keyAccessToken); err != nil {
		return Session{}, err
	}
	if sess.RefreshToken, err = s.get(ctx, keyRefreshToken); err != nil {
		return Session{}, err
	}
	if sess.IDToken, err = s.get(ctx, keyIDToken); err != nil {
		return Session{}, err
	}

	raw, err := s.get(ctx, keyExpiresAt)
	if err != nil {
		return Session{}, err
	}
	if raw != "" {
		sess.ExpiresAt, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Session{}, fmt.Errorf("invalid stored expiry %q: %w", raw, err)
		}
	}

	return sess, nil
}

// Clear removes every key the store manages, PKCE context included.
func (s *TokenStore) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(sessionKeys)+len(pkceKeys))
	for _, name := range sessionKeys {
		keys = append(keys, s.key(name))
	}
	for _, name := range pkceKeys {
		keys = append(keys, s.key(name))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MoveTo copies the tokens to sessionID, keeping the expiry as stored,
// and clears this store. The old store is cleared even when the copy
// fails, so tokens never stay reachable under the old id.
func (s *TokenStore) MoveTo(ctx context.Context, sessionID string) (*TokenStore, error) {
	moved := *s
	moved.sessionID = sessionID

	var copyErr error
	for _, name := range sessionKeys {
		value, err := s.get(ctx, name)
		if err == nil && value != "" {
			err = moved.set(ctx, name, value, s.sessionTTL)
		}
		if err != nil {
			copyErr = fmt.Errorf("failed to move session: %w", err)
			break
		}
	}

	if err := s.Clear(ctx); err != nil && copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		_ = moved.Clear(ctx)
		return nil, copyErr
	}
	return &moved, nil
}

// IsExpired reports whether now >= expiresAt - ExpiryMargin. A missing or
// unreadable expiry counts as expired.
func (s *TokenStore) IsExpired(ctx context.Context) bool {
	raw, err := s.get(ctx, keyExpiresAt)
	if err != nil || raw == "" {
		return true
	}
	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return s.now().UnixMilli() >= expiresAt-ExpiryMargin.Milliseconds()
}

// SavePKCE replaces any in-flight login attempt.
func (s *TokenStore) SavePKCE(ctx context.Context, pkce PKCEContext) error {
	if err := s.set(ctx, keyCodeVerifier, pkce.CodeVerifier, s.pkceTTL); err != nil {
		return err
	}
	return s.set(ctx, keyState, pkce.State, s.pkceTTL)
}

func (s *TokenStore) PKCE(ctx context.Context) (PKCEContext, error) {
	var pkce PKCEContext
	var err error
	if pkce.CodeVerifier, err = s.get(ctx, keyCodeVerifier); err != nil {
		return PKCEContext{}, err
	}
	if pkce.State, err = s.get(ctx, keyState); err != nil {
		return PKCEContext{}, err
	}
	return pkce, nil
}

func (s *TokenStore) ClearPKCE(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.key(keyCodeVerifier), s.key(keyState)); err != nil {
		return fmt.Errorf("failed to clear pkce context: %w", err)
	}
	return nil
}

func (s *TokenStore) set(ctx context.Context, name, value string, ttl time.Duration) error {
	if err := s.cache.Set(ctx, s.key(name), []byte(value), ttl); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// get returns "" for a missing key.
func (s *TokenStore) get(ctx context.Context, name string) (string, error) {
	data, err := s.cache.Get(ctx, s.key(name))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}
