package session

import (
	"context"
	"time"
)

// Token is the credential set issued by the identity broker.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

// Broker is the external identity service that authenticates users and
// issues/renews tokens. Implementations own the wire protocol; the Manager
// only sequences calls and keeps the resulting session state.
type Broker interface {
	// Initialize performs provider discovery and reports whether an existing
	// session could be resumed without interactive login.
	Initialize(ctx context.Context) (bool, error)

	// LoginURL builds the interactive authorization URL for a single login
	// attempt. state and nonce are minted by the caller per attempt.
	LoginURL(state, nonce, redirectURI string) string

	// Exchange trades an authorization code for tokens. Implementations
	// verify the ID token against expectedNonce where they can.
	Exchange(ctx context.Context, code, expectedNonce string) (*Token, error)

	// Refresh renews the held token when less than minValidity remains.
	Refresh(ctx context.Context, minValidity time.Duration) (*Token, error)

	// LogoutURL builds the broker sign-out URL, returning the user to
	// redirectTarget afterwards. Implementations drop their held credential.
	LogoutURL(redirectTarget string) string

	// Token returns the broker's current credential set, nil when none.
	Token() *Token
}
