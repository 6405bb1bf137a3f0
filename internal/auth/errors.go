package auth

import "errors"

var (
	// ErrNotAuthenticated means there is no usable access token.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrStateMismatch means the callback state does not match the stored
	// one, or no state was stored at all.
	ErrStateMismatch = errors.New("invalid state parameter")
	// ErrMissingVerifier means the PKCE verifier of the login attempt is gone.
	ErrMissingVerifier = errors.New("code verifier not found")
	ErrRefreshFailed   = errors.New("token refresh failed")
	ErrExchangeFailed  = errors.New("token exchange failed")
)
