package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	verifierBytes = 32
	stateBytes    = 16
)

// GenerateVerifier returns a fresh PKCE code verifier.
func GenerateVerifier() (string, error) {
	return randomString(verifierBytes)
}

// GenerateChallenge derives the S256 code challenge for verifier.
func GenerateChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GenerateState returns a fresh anti-CSRF state parameter.
func GenerateState() (string, error) {
	return randomString(stateBytes)
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
