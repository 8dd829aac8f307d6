package client

import "fmt"

// RequestError is returned for non-2xx responses that carry a decodable
// error body, or the HTTP status line when the body cannot be parsed.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
