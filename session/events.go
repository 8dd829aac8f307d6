package session

// EventKind identifies a session lifecycle notification.
type EventKind string

const (
	EventLoginSucceeded EventKind = "login-succeeded"
	EventTokenRefreshed EventKind = "token-refreshed"
	EventLoginRequired  EventKind = "login-required"
)

// Event carries no payload beyond a short token preview. Consumers re-query
// the Manager for current state rather than trusting the event contents.
type Event struct {
	Kind         EventKind
	TokenPreview string
}

const previewLength = 12

func tokenPreview(token string) string {
	if len(token) <= previewLength {
		return token
	}
	return token[:previewLength] + "..."
}
