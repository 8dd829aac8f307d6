package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultMinValidity   = 30 * time.Second
	defaultRefreshMargin = 5 * time.Minute
	defaultCheckInterval = 30 * time.Second

	stateLength = 32
)

// loginAttempt holds the single-use state and nonce minted for one
// interactive login. It is discarded on the first callback, match or not.
type loginAttempt struct {
	State     string
	Nonce     string
	Timestamp time.Time
}

// Manager owns the one logical session: whether the user is signed in, the
// current access token and its expiry, and the claims decoded from it. All
// mutation goes through Manager methods; consumers read derived projections.
type Manager struct {
	broker      Broker
	callbackURL string
	origin      string

	minValidity   time.Duration
	refreshMargin time.Duration
	checkInterval time.Duration
	nowFunc       func() time.Time

	mu           sync.Mutex
	initialized  bool
	token        string
	expiry       time.Time
	claims       Claims
	pendingLogin *loginAttempt
	redirectPath string
	subscribers  map[int]chan Event
	nextSubID    int
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithMinValidity sets the minimum remaining lifetime a token must have when
// handed out by AccessToken.
func WithMinValidity(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.minValidity = d
	}
}

// WithRefreshMargin sets how long before expiry the background check starts
// renewing the token.
func WithRefreshMargin(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.refreshMargin = d
	}
}

// WithCheckInterval sets the period of the background refresh check.
func WithCheckInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.checkInterval = d
	}
}

// New initializes a Manager around an identity broker. callbackURL is the
// absolute URL the broker redirects to after interactive login.
func New(broker Broker, callbackURL string, options ...ManagerOption) (*Manager, error) {
	if broker == nil {
		return nil, errors.New("[session.New] broker is required")
	}
	parsed, err := url.Parse(callbackURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("[session.New] callbackURL %q must be absolute", callbackURL)
	}

	m := &Manager{
		broker:        broker,
		callbackURL:   callbackURL,
		origin:        parsed.Scheme + "://" + parsed.Host,
		minValidity:   defaultMinValidity,
		refreshMargin: defaultRefreshMargin,
		checkInterval: defaultCheckInterval,
		nowFunc:       time.Now,
		subscribers:   make(map[int]chan Event),
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Initialize asks the broker whether a session already exists without forcing
// interactive login. Idempotent: once a session has been established, further
// calls report the current state without another broker round trip. A broker
// that cannot be reached even through its fallback path surfaces
// IdentityBrokerUnavailableErr and the session remains empty.
func (m *Manager) Initialize(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.initialized {
		found := m.token != ""
		m.mu.Unlock()
		return found, nil
	}
	m.mu.Unlock()

	found, err := m.broker.Initialize(ctx)
	if err != nil {
		return false, errors.Wrapf(IdentityBrokerUnavailableErr, "[Initialize] %s", err)
	}

	if found {
		if err := m.installToken(m.broker.Token(), EventLoginSucceeded); err != nil {
			log.Warn().Err(err).Msg("discarding structurally invalid token from broker")
			found = false
		}
	}

	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return found, nil
}

// Authenticated reports whether a non-expired token is held. Pure read.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return false
	}
	return m.expiry.IsZero() || m.nowFunc().Before(m.expiry)
}

// AccessToken returns the current token, refreshing it first when less than
// the configured minimum validity window remains. Fails with
// NotAuthenticatedErr when no session exists and with RefreshFailedErr (after
// tearing the session down) when the broker rejects the renewal.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	token := m.token
	expiry := m.expiry
	m.mu.Unlock()

	if token == "" {
		return "", NotAuthenticatedErr
	}

	if !expiry.IsZero() && expiry.Before(m.nowFunc().Add(m.minValidity)) {
		if err := m.refresh(ctx, m.minValidity); err != nil {
			return "", err
		}
		m.mu.Lock()
		token = m.token
		m.mu.Unlock()
	}

	return token, nil
}

// Login records the caller's intended post-login destination, mints the
// per-attempt state and nonce, and returns the broker's interactive URL.
// The destination is consumed exactly once via ConsumeRedirect.
func (m *Manager) Login(redirectPath string) (string, error) {
	state, err := randomToken(stateLength)
	if err != nil {
		return "", errors.Wrap(err, "[Login] state generation")
	}
	nonce := uuid.New().String()

	if redirectPath == "" {
		redirectPath = "/"
	}

	m.mu.Lock()
	m.pendingLogin = &loginAttempt{State: state, Nonce: nonce, Timestamp: m.nowFunc()}
	m.redirectPath = redirectPath
	m.mu.Unlock()

	return m.broker.LoginURL(state, nonce, m.callbackURL), nil
}

// HandleCallback completes an interactive login. The stored state is
// validated exactly once; the pending attempt is discarded whether or not it
// matches. On success the exchanged token is installed atomically and a
// login-succeeded notification is emitted.
func (m *Manager) HandleCallback(ctx context.Context, code, state string) error {
	m.mu.Lock()
	attempt := m.pendingLogin
	m.pendingLogin = nil
	m.mu.Unlock()

	if attempt == nil {
		return errors.Wrap(CsrfValidationFailedErr, "[HandleCallback] no login attempt pending")
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(attempt.State)) != 1 {
		return errors.Wrap(CsrfValidationFailedErr, "[HandleCallback] state mismatch")
	}

	token, err := m.broker.Exchange(ctx, code, attempt.Nonce)
	if err != nil {
		m.clear()
		return errors.Wrap(err, "[HandleCallback] code exchange")
	}

	if err := m.installToken(token, EventLoginSucceeded); err != nil {
		return errors.Wrap(err, "[HandleCallback] install token")
	}

	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return nil
}

// ConsumeRedirect returns the destination stored by Login and clears it, so
// the value is restored at most once. Defaults to "/" when nothing is stored.
func (m *Manager) ConsumeRedirect() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := m.redirectPath
	m.redirectPath = ""
	if path == "" {
		path = "/"
	}
	return path
}

// Logout clears all session state locally and returns the broker's sign-out
// URL, which brings the user back to the application origin afterwards.
func (m *Manager) Logout() string {
	m.clear()
	m.mu.Lock()
	m.redirectPath = ""
	m.pendingLogin = nil
	m.mu.Unlock()
	return m.broker.LogoutURL(m.origin)
}

// Refresh invokes the broker's token renewal. On success the token, expiry
// and claims are updated atomically; on failure the session is cleared and
// RefreshFailedErr is returned. A concurrent clear from another path is a
// harmless no-op.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, m.refreshMargin)
}

// refresh renews through the broker. window is the remaining-lifetime
// threshold below which the broker must perform a real renewal round trip;
// callers pass the margin that triggered them so the broker's own skip
// window never defeats the trigger.
func (m *Manager) refresh(ctx context.Context, window time.Duration) error {
	token, err := m.broker.Refresh(ctx, window)
	if err != nil {
		m.clear()
		return errors.Wrapf(RefreshFailedErr, "[refresh] %s", err)
	}
	if err := m.installToken(token, EventTokenRefreshed); err != nil {
		return errors.Wrapf(RefreshFailedErr, "[refresh] %s", err)
	}
	return nil
}

// Run proactively refreshes the token well before expiry. When a proactive
// refresh fails the session is cleared and a login-required notification is
// emitted instead of leaving a dead session silently active. Returns when ctx
// is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			token := m.token
			expiry := m.expiry
			m.mu.Unlock()

			if token == "" {
				continue
			}
			if !expiry.IsZero() && m.nowFunc().Add(m.refreshMargin).Before(expiry) {
				continue
			}
			if err := m.refresh(ctx, m.refreshMargin); err != nil {
				log.Warn().Err(err).Msg("proactive token refresh failed, interactive login required")
				m.notify(EventLoginRequired, "")
			}
		}
	}
}

// Subscribe registers for session lifecycle notifications. The returned
// function unsubscribes and closes the channel. Slow consumers drop events
// rather than blocking the Manager.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan Event, 8)
	m.subscribers[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(c)
		}
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{
		Authenticated: m.token != "",
		Token:         m.token,
		Expiry:        m.expiry,
		Claims:        m.claims,
	}
}

// Roles returns the group-membership paths of the current user, empty when
// unauthenticated.
func (m *Manager) Roles() []string {
	return m.currentClaims().GroupMembership()
}

// HasRole reports whether the current user carries the given group path.
func (m *Manager) HasRole(role string) bool {
	for _, r := range m.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// Role returns the derived platform role, RoleNone when unauthenticated.
func (m *Manager) Role() string {
	return m.currentClaims().Role()
}

// IsAdmin reports whether the current user is a platform administrator.
func (m *Manager) IsAdmin() bool {
	return m.Role() == RoleAdmin
}

// City returns the city the current user is scoped to, empty when none.
func (m *Manager) City() string {
	return m.currentClaims().City()
}

func (m *Manager) currentClaims() Claims {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims
}

// installToken atomically replaces token, expiry and claims. A structurally
// invalid token tears the session down instead of being installed.
func (m *Manager) installToken(token *Token, kind EventKind) error {
	if token == nil || !IsValidJWTFormat(token.AccessToken) {
		m.clear()
		return errors.New("[installToken] structurally invalid token")
	}
	claims, err := DecodeClaims(token.AccessToken)
	if err != nil {
		m.clear()
		return errors.Wrap(err, "[installToken] decode claims")
	}

	m.mu.Lock()
	changed := m.token != token.AccessToken
	m.token = token.AccessToken
	m.expiry = token.Expiry
	m.claims = claims
	m.mu.Unlock()

	// A re-install of the identical token is not a lifecycle transition.
	if changed {
		m.notify(kind, tokenPreview(token.AccessToken))
	}
	return nil
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.token = ""
	m.expiry = time.Time{}
	m.claims = nil
	m.mu.Unlock()
}

func (m *Manager) notify(kind EventKind, preview string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- Event{Kind: kind, TokenPreview: preview}:
		default:
		}
	}
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
