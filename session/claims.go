package session

import (
	"strings"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/climaborough/go-platform-client/internal/utils"
)

// Platform roles derived from group membership.
const (
	RoleAdmin    = "admin"
	RoleCityUser = "cityuser"
	RoleNone     = "none"
)

const catalogSuffix = "-catalog"

var adminGroups = map[string]struct{}{
	"/Administrator":       {},
	"/Super-Administrator": {},
}

// Claims holds the identity assertions decoded from an access token.
type Claims map[string]any

// DecodeClaims extracts the claims from a structurally valid JWT without
// verifying its signature. Signature trust belongs to the broker that issued
// the token; callers must run IsValidJWTFormat first.
func DecodeClaims(rawToken string) (Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[DecodeClaims] ParseUnverified")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("[DecodeClaims] unexpected claims type")
	}
	return Claims(mapClaims), nil
}

func (c Claims) Subject() string { return c.stringClaim("sub") }
func (c Claims) Email() string   { return c.stringClaim("email") }
func (c Claims) Name() string    { return c.stringClaim("name") }

func (c Claims) stringClaim(key string) string {
	value, _ := c[key].(string)
	return value
}

// GroupMembership returns the ordered group paths carried in the token,
// empty when the claim is missing.
func (c Claims) GroupMembership() []string {
	raw, ok := c["group_membership"].([]any)
	if !ok {
		return nil
	}
	return utils.ToStringSlice(raw)
}

// Role derives the platform role: members of /Administrator or
// /Super-Administrator are admins, members of any <city>-catalog group are
// city users, everyone else has no role.
func (c Claims) Role() string {
	groups := c.GroupMembership()
	for _, g := range groups {
		if _, ok := adminGroups[g]; ok {
			return RoleAdmin
		}
	}
	for _, g := range groups {
		if hasCatalogSuffix(g) {
			return RoleCityUser
		}
	}
	return RoleNone
}

// City returns the capitalized city name from the first catalog group
// (e.g. "/athens-catalog" -> "Athens"), empty when there is none.
func (c Claims) City() string {
	for _, g := range c.GroupMembership() {
		if !hasCatalogSuffix(g) {
			continue
		}
		name := strings.TrimPrefix(g, "/")
		name = name[:len(name)-len(catalogSuffix)]
		return capitalize(name)
	}
	return ""
}

func hasCatalogSuffix(group string) bool {
	return strings.HasSuffix(strings.ToLower(group), catalogSuffix)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
