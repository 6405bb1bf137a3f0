package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChallenge_KnownVector(t *testing.T) {
	// RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"

	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", GenerateChallenge(verifier))
	assert.Equal(t, GenerateChallenge(verifier), GenerateChallenge(verifier))
}

func TestGenerateVerifier_Shape(t *testing.T) {
	v, err := GenerateVerifier()
	require.NoError(t, err)

	assert.Len(t, v, 43)
	assert.NotContains(t, v, "=")
	raw, err := base64.RawURLEncoding.DecodeString(v)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestGenerateState_Shape(t *testing.T) {
	s, err := GenerateState()
	require.NoError(t, err)

	assert.Len(t, s, 22)
	assert.False(t, strings.ContainsAny(s, "+/="))
}

func TestGenerateVerifier_NeverRepeats(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		v, err := GenerateVerifier()
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup, "verifier repeated")
		seen[v] = struct{}{}
	}
}
