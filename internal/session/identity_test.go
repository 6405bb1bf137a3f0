package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIdentity_IgnoresSignature(t *testing.T) {
	// Claims are read for display only; the signature key is irrelevant here
	// and the DNS API verifies every token it receives.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          "u-1",
		"realm_access": map[string]any{"roles": []string{"dns-viewer"}},
	}).SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	identity, err := DecodeIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.Subject)
	assert.True(t, identity.HasRole("dns-viewer"))
	assert.False(t, identity.HasRole("dns-admin"))
}

func TestDecodeIdentity_RejectsGarbage(t *testing.T) {
	_, err := DecodeIdentity("garbage")
	require.Error(t, err)
}

func TestDecodeIdentity_AcceptsTokenWithoutSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@example.com"}).SignedString([]byte("k"))
	require.NoError(t, err)

	identity, err := DecodeIdentity(token)
	require.NoError(t, err)
	assert.Empty(t, identity.Subject)
	assert.Equal(t, "x@example.com", identity.Email)
	assert.Equal(t, []string{}, identity.Roles)
}

func TestIdentity_HasRoleOnNil(t *testing.T) {
	var identity *Identity

	assert.False(t, identity.HasRole("dns-admin"))
}

func TestIdentity_DisplayHelpers(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		display  string
		initials string
		role     string
	}{
		{
			name:     "full name",
			identity: Identity{Subject: "u", Name: "Ada Lovelace", Roles: []string{"offline_access", "dns-zone-admin"}},
			display:  "Ada Lovelace",
			initials: "AL",
			role:     "ZONE ADMIN",
		},
		{
			name:     "username only",
			identity: Identity{Subject: "u", PreferredUsername: "bob", Roles: []string{"viewer"}},
			display:  "bob",
			initials: "BO",
			role:     "viewer",
		},
		{
			name:     "subject only",
			identity: Identity{Subject: "u-9"},
			display:  "u-9",
			initials: "U",
			role:     "User",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.display, tt.identity.DisplayName())
			assert.Equal(t, tt.initials, tt.identity.Initials())
			assert.Equal(t, tt.role, tt.identity.PrimaryRole())
		})
	}
}
