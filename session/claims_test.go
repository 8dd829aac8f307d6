package session_test

import (
	"testing"

	"github.com/climaborough/go-platform-client/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestDecodeClaims(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{
		"sub":              "user-9",
		"email":            "citizen@cascais.pt",
		"name":             "Ana Silva",
		"group_membership": []string{"/cascais-catalog"},
	})

	claims, err := session.DecodeClaims(raw)
	require.NoError(t, err)
	require.Equal(t, "user-9", claims.Subject())
	require.Equal(t, "citizen@cascais.pt", claims.Email())
	require.Equal(t, "Ana Silva", claims.Name())
	require.Equal(t, []string{"/cascais-catalog"}, claims.GroupMembership())
}

func TestDecodeClaimsRejectsGarbage(t *testing.T) {
	_, err := session.DecodeClaims("not-a-jwt")
	require.Error(t, err)
}

func TestRoleDerivation(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		role   string
		city   string
	}{
		{"administrator", []string{"/Administrator"}, session.RoleAdmin, ""},
		{"super administrator", []string{"/Super-Administrator"}, session.RoleAdmin, ""},
		{"admin wins over catalog", []string{"/athens-catalog", "/Administrator"}, session.RoleAdmin, "Athens"},
		{"city user", []string{"/athens-catalog"}, session.RoleCityUser, "Athens"},
		{"case-insensitive suffix", []string{"/Differdange-Catalog"}, session.RoleCityUser, "Differdange"},
		{"first catalog group wins", []string{"/ioannina-catalog", "/cascais-catalog"}, session.RoleCityUser, "Ioannina"},
		{"no groups", nil, session.RoleNone, ""},
		{"unrelated groups", []string{"/Observers"}, session.RoleNone, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims := session.Claims{}
			if tc.groups != nil {
				members := make([]any, 0, len(tc.groups))
				for _, g := range tc.groups {
					members = append(members, g)
				}
				claims["group_membership"] = members
			}
			require.Equal(t, tc.role, claims.Role())
			require.Equal(t, tc.city, claims.City())
		})
	}
}

func TestRoleDerivationMissingClaims(t *testing.T) {
	var claims session.Claims
	require.Equal(t, session.RoleNone, claims.Role())
	require.Empty(t, claims.City())
	require.Empty(t, claims.GroupMembership())
}

func TestStringAccessorsTolerateMissingOrMistypedClaims(t *testing.T) {
	claims := session.Claims{"sub": 12345, "email": nil}
	require.Empty(t, claims.Subject())
	require.Empty(t, claims.Email())
	require.Empty(t, claims.Name())
}
