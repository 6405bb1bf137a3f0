package auth

import "time"

// Session is the persisted token set of one browser session. Empty strings
// and a zero ExpiresAt mean "absent".
type Session struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	// ExpiresAt is the access token expiry in epoch milliseconds.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

func (s Session) HasAccessToken() bool {
	return s.AccessToken != ""
}

func (s Session) Expiry() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.ExpiresAt)
}

// TokenResponse is the token endpoint payload for both the
// authorization_code and the refresh_token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// PKCEContext belongs to a single login attempt and is consumed by the
// callback.
type PKCEContext struct {
	CodeVerifier string `json:"code_verifier"`
	State        string `json:"state"`
}

// LoginPhase tracks one login attempt.
type LoginPhase string

const (
	PhaseIdle             LoginPhase = "idle"
	PhaseAwaitingRedirect LoginPhase = "awaiting_redirect"
	PhaseAwaitingCallback LoginPhase = "awaiting_callback"
	PhaseExchanging       LoginPhase = "exchanging"
	PhaseAuthenticated    LoginPhase = "authenticated"
	PhaseFailed           LoginPhase = "failed"
)
