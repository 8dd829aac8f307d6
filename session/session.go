package session

import "time"

// Session is a read-only snapshot of the current authentication state.
// Token is non-empty exactly when Authenticated is true, and Claims are
// always the decoded contents of Token.
type Session struct {
	Authenticated bool
	Token         string
	Expiry        time.Time
	Claims        Claims
}
