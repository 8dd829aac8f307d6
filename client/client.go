package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies bearer credentials and interactive re-login. The
// session manager satisfies it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Login(redirectPath string) (string, error)
}

// LoginRedirectFunc receives the interactive login URL when a request is
// rejected with 401 and the session needs re-establishing.
type LoginRedirectFunc func(loginURL string)

// Client talks to the platform backend. All calls carry the session's bearer
// token unless a manual token was installed via SetAuthToken. Requests are
// never retried.
type Client struct {
	baseURL string
	http    *http.Client
	session TokenSource
	onLogin LoginRedirectFunc

	lock      sync.RWMutex
	authToken string
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient overrides the transport (primarily for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithSession attaches a token source for authenticated calls.
func WithSession(session TokenSource) Option {
	return func(c *Client) {
		c.session = session
	}
}

// WithLoginRedirect registers the handler invoked with the re-login URL when
// the backend rejects the session's token.
func WithLoginRedirect(fn LoginRedirectFunc) Option {
	return func(c *Client) {
		c.onLogin = fn
	}
}

// New creates a Client for one backend base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("[client.New] base URL %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SetAuthToken installs a manual bearer token, bypassing the session. An
// empty token reverts to session-sourced credentials.
func (c *Client) SetAuthToken(token string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.authToken = token
}

func (c *Client) bearerToken(ctx context.Context) (token string, manual bool, err error) {
	c.lock.RLock()
	manualToken := c.authToken
	c.lock.RUnlock()

	if manualToken != "" {
		return manualToken, true, nil
	}
	if c.session == nil {
		return "", false, nil
	}
	sessionToken, err := c.session.AccessToken(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "[bearerToken] session token")
	}
	return sessionToken, false, nil
}

// do executes one request. Out may be nil when the caller discards the body.
// The returned bool reports whether out was populated, so callers can tell a
// degraded call apart from real data. A 401 on a session-backed call hands
// the re-login URL to the redirect handler and yields no result and no
// error; everything else surfaces a *RequestError or a wrapped transport
// error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (bool, error) {
	token, manual, err := c.bearerToken(ctx)
	if err != nil {
		return false, err
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return false, errors.Wrapf(err, "[do] encode %s %s body", method, path)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return false, errors.Wrapf(err, "[do] build %s %s", method, path)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return false, errors.Wrapf(err, "[do] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !manual && c.session != nil {
		loginURL, loginErr := c.session.Login("/")
		if loginErr != nil {
			return false, errors.Wrapf(loginErr, "[do] %s %s re-login", method, path)
		}
		if c.onLogin != nil {
			c.onLogin(loginURL)
		}
		return false, nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return false, c.errorFromResponse(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrapf(err, "[do] decode %s %s response", method, path)
	}
	return true, nil
}

// errorFromResponse extracts the backend's error message, preferring the
// message, detail and error body fields in that order.
func (c *Client) errorFromResponse(resp *http.Response) error {
	requestError := &RequestError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return requestError
	}

	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return requestError
	}

	switch {
	case body.Message != "":
		requestError.Message = body.Message
	case body.Detail != "":
		requestError.Message = body.Detail
	case body.Err != "":
		requestError.Message = body.Err
	}
	return requestError
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) (bool, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) (bool, error) {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	return c.do(ctx, http.MethodDelete, path, query, nil, out)
}
