package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is derived from the access token claims on every
// initialization and never stored on its own. Roles are for display only:
// the DNS API enforces authorization.
type Identity struct {
	Subject           string   `json:"sub"`
	Email             string   `json:"email,omitempty"`
	EmailVerified     bool     `json:"email_verified,omitempty"`
	Name              string   `json:"name,omitempty"`
	PreferredUsername string   `json:"preferred_username,omitempty"`
	GivenName         string   `json:"given_name,omitempty"`
	FamilyName        string   `json:"family_name,omitempty"`
	Roles             []string `json:"roles"`
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	RealmAccess       *struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// DecodeIdentity reads the claims of an access token without verifying its
// signature. Any decodable token yields an identity, even one with no
// subject.
func DecodeIdentity(accessToken string) (*Identity, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	roles := []string{}
	if claims.RealmAccess != nil && claims.RealmAccess.Roles != nil {
		roles = claims.RealmAccess.Roles
	}

	return &Identity{
		Subject:           claims.Subject,
		Email:             claims.Email,
		EmailVerified:     claims.EmailVerified,
		Name:              claims.Name,
		PreferredUsername: claims.PreferredUsername,
		GivenName:         claims.GivenName,
		FamilyName:        claims.FamilyName,
		Roles:             roles,
	}, nil
}

func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

func (i *Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.PreferredUsername != "":
		return i.PreferredUsername
	default:
		return i.Subject
	}
}

func (i *Identity) Initials() string {
	if i.Name != "" {
		var b strings.Builder
		for _, part := range strings.Fields(i.Name) {
			r := []rune(part)
			b.WriteRune(r[0])
		}
		return strings.ToUpper(b.String())
	}
	if i.PreferredUsername != "" {
		r := []rune(i.PreferredUsername)
		return strings.ToUpper(string(r[:min(2, len(r))]))
	}
	return "U"
}

// PrimaryRole prefers a "dns-" realm role, rendered without its prefix.
func (i *Identity) PrimaryRole() string {
	if len(i.Roles) == 0 {
		return "User"
	}
	for _, r := range i.Roles {
		if strings.HasPrefix(r, "dns-") {
			label := strings.Replace(strings.TrimPrefix(r, "dns-"), "-", " ", 1)
			return strings.ToUpper(label)
		}
	}
	return i.Roles[0]
}
