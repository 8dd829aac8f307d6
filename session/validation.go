package session

import "strings"

// IsValidJWTFormat reports whether token has the three non-empty
// dot-separated segments of a serialized JWT. A token failing this check is
// treated as absent and never installed into a session.
func IsValidJWTFormat(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
	}
	return true
}
