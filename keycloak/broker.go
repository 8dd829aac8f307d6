package keycloak

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/climaborough/go-platform-client/session"
)

const (
	// PKCEMethodS256 is the only supported proof-of-key-exchange method.
	PKCEMethodS256 = "S256"

	defaultConnectTimeout = 10 * time.Second
	openIDConnectPath     = "/protocol/openid-connect"
)

var defaultScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// Config is the broker connection surface: where the realm lives and how the
// client identifies itself.
type Config struct {
	URL      string // Keycloak base URL, e.g. "https://id.climaborough.eu"
	Realm    string
	ClientID string

	PKCEMethod string // defaults to S256
	CheckSSO   bool   // attempt silent session resumption on Initialize

	// DisableIframeCheck mirrors the web runtime's checkLoginIframe toggle.
	// It has no wire effect here but is kept so configuration round-trips.
	DisableIframeCheck bool

	ConnectTimeout time.Duration
	Scopes         []string
}

var _ session.Broker = (*Broker)(nil)

// Broker talks the authorization-code flow against a Keycloak realm. OIDC
// discovery is attempted first; when the discovery document cannot be fetched
// the well-known realm endpoint layout is used as a fallback.
type Broker struct {
	cfg     Config
	store   Store
	http    *http.Client
	nowFunc func() time.Time

	lock            sync.Mutex
	oauthCfg        oauth2.Config
	verifier        *oidc.IDTokenVerifier // nil when running on fallback endpoints
	token           *session.Token
	pendingVerifier string
	pendingRedirect string
}

// BrokerOption defines a function type to modify the Broker instance.
type BrokerOption func(*Broker)

// WithStore attaches a credential store for silent session resumption.
func WithStore(store Store) BrokerOption {
	return func(b *Broker) {
		b.store = store
	}
}

// WithHTTPClient overrides the transport (primarily for testing).
func WithHTTPClient(client *http.Client) BrokerOption {
	return func(b *Broker) {
		b.http = client
	}
}

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(now func() time.Time) BrokerOption {
	return func(b *Broker) {
		b.nowFunc = now
	}
}

// New creates a Broker for one realm and client.
func New(cfg Config, options ...BrokerOption) (*Broker, error) {
	if cfg.URL == "" || cfg.Realm == "" || cfg.ClientID == "" {
		return nil, errors.New("[keycloak.New] URL, Realm and ClientID are required")
	}
	if cfg.PKCEMethod == "" {
		cfg.PKCEMethod = PKCEMethodS256
	}
	if cfg.PKCEMethod != PKCEMethodS256 {
		return nil, errors.Errorf("[keycloak.New] unsupported PKCE method %q", cfg.PKCEMethod)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = defaultScopes
	}

	b := &Broker{
		cfg:     cfg,
		store:   NewMemoryStore(),
		http:    http.DefaultClient,
		nowFunc: time.Now,
	}

	for _, opt := range options {
		opt(b)
	}

	return b, nil
}

// Initialize discovers the realm endpoints and, when SSO checking is enabled,
// attempts to resume an existing session from a stored refresh token without
// interactive login. Legacy durable-storage keys are purged first.
func (b *Broker) Initialize(ctx context.Context) (bool, error) {
	for _, key := range legacyStorageKeys {
		b.store.Delete(key)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.ConnectTimeout)
	defer cancel()
	ctx = oidc.ClientContext(ctx, b.http)

	issuer := b.issuerURL()
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		log.Warn().Err(err).Str("issuer", issuer).Msg("OIDC discovery failed, probing static realm endpoints")
		endpoint, probeErr := b.probeStaticEndpoints(ctx)
		if probeErr != nil {
			return false, errors.Wrap(probeErr, "[Initialize] discovery and static fallback both failed")
		}
		b.lock.Lock()
		b.oauthCfg = b.buildOAuthConfig(endpoint)
		b.verifier = nil
		b.lock.Unlock()
	} else {
		b.lock.Lock()
		b.oauthCfg = b.buildOAuthConfig(provider.Endpoint())
		b.verifier = provider.Verifier(&oidc.Config{ClientID: b.cfg.ClientID})
		b.lock.Unlock()
	}

	if !b.cfg.CheckSSO {
		return false, nil
	}

	refreshToken, ok := b.store.Get(refreshTokenKey)
	if !ok || refreshToken == "" {
		return false, nil
	}
	if _, err := b.refreshWith(ctx, refreshToken); err != nil {
		log.Debug().Err(err).Msg("stored credential could not be resumed")
		b.store.Delete(refreshTokenKey)
		return false, nil
	}
	return true, nil
}

// LoginURL builds the interactive authorization URL for one login attempt,
// minting a fresh PKCE verifier for it.
func (b *Broker) LoginURL(state, nonce, redirectURI string) string {
	verifier := oauth2.GenerateVerifier()

	b.lock.Lock()
	b.pendingVerifier = verifier
	b.pendingRedirect = redirectURI
	cfg := b.oauthCfg
	b.lock.Unlock()

	cfg.RedirectURL = redirectURI
	opts := []oauth2.AuthCodeOption{
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
	}
	return cfg.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens, consuming the pending
// PKCE verifier. When discovery succeeded the ID token signature and nonce
// are verified; on fallback endpoints no verification key is available and
// the exchange result is trusted as-is.
func (b *Broker) Exchange(ctx context.Context, code, expectedNonce string) (*session.Token, error) {
	b.lock.Lock()
	verifier := b.pendingVerifier
	redirectURI := b.pendingRedirect
	idVerifier := b.verifier
	cfg := b.oauthCfg
	b.pendingVerifier = ""
	b.pendingRedirect = ""
	b.lock.Unlock()

	cfg.RedirectURL = redirectURI
	opts := []oauth2.AuthCodeOption{}
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	oauth2Token, err := cfg.Exchange(oidc.ClientContext(ctx, b.http), code, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "[Exchange] code exchange")
	}

	rawIDToken, _ := oauth2Token.Extra("id_token").(string)
	if idVerifier != nil && rawIDToken != "" {
		idToken, err := idVerifier.Verify(ctx, rawIDToken)
		if err != nil {
			return nil, errors.Wrap(err, "[Exchange] ID token verification")
		}
		var claims struct {
			Nonce string `json:"nonce"`
		}
		if err := idToken.Claims(&claims); err != nil {
			return nil, errors.Wrap(err, "[Exchange] extract claims")
		}
		if expectedNonce != "" && claims.Nonce != expectedNonce {
			return nil, errors.New("[Exchange] nonce mismatch")
		}
	}

	return b.install(oauth2Token, rawIDToken), nil
}

// Refresh renews the held token. The round trip is skipped while more than
// minValidity of lifetime remains.
func (b *Broker) Refresh(ctx context.Context, minValidity time.Duration) (*session.Token, error) {
	b.lock.Lock()
	current := b.token
	b.lock.Unlock()

	if current != nil && !current.Expiry.IsZero() && b.nowFunc().Add(minValidity).Before(current.Expiry) {
		return current, nil
	}

	refreshToken := ""
	if current != nil {
		refreshToken = current.RefreshToken
	}
	if refreshToken == "" {
		if stored, ok := b.store.Get(refreshTokenKey); ok {
			refreshToken = stored
		}
	}
	if refreshToken == "" {
		return nil, errors.New("[Refresh] no refresh token held")
	}

	return b.refreshWith(ctx, refreshToken)
}

// LogoutURL drops the held credential and builds the realm sign-out URL.
func (b *Broker) LogoutURL(redirectTarget string) string {
	b.lock.Lock()
	b.token = nil
	b.lock.Unlock()
	b.store.Delete(refreshTokenKey)

	query := url.Values{}
	query.Set("client_id", b.cfg.ClientID)
	if redirectTarget != "" {
		query.Set("post_logout_redirect_uri", redirectTarget)
	}
	return b.issuerURL() + openIDConnectPath + "/logout?" + query.Encode()
}

// Token returns the broker's current credential set, nil when none.
func (b *Broker) Token() *session.Token {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.token
}

func (b *Broker) refreshWith(ctx context.Context, refreshToken string) (*session.Token, error) {
	b.lock.Lock()
	cfg := b.oauthCfg
	b.lock.Unlock()

	source := cfg.TokenSource(oidc.ClientContext(ctx, b.http), &oauth2.Token{RefreshToken: refreshToken})
	oauth2Token, err := source.Token()
	if err != nil {
		return nil, errors.Wrap(err, "[refreshWith] refresh grant")
	}
	rawIDToken, _ := oauth2Token.Extra("id_token").(string)
	return b.install(oauth2Token, rawIDToken), nil
}

// install records the broker-side credential and persists the rotated
// refresh token so the session survives a restart within the SSO window.
func (b *Broker) install(oauth2Token *oauth2.Token, rawIDToken string) *session.Token {
	token := &session.Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		IDToken:      rawIDToken,
		Expiry:       oauth2Token.Expiry,
	}

	b.lock.Lock()
	b.token = token
	b.lock.Unlock()

	if token.RefreshToken != "" {
		b.store.Set(refreshTokenKey, token.RefreshToken)
	}
	return token
}

func (b *Broker) issuerURL() string {
	return b.cfg.URL + "/realms/" + b.cfg.Realm
}

func (b *Broker) buildOAuthConfig(endpoint oauth2.Endpoint) oauth2.Config {
	return oauth2.Config{
		ClientID: b.cfg.ClientID,
		Endpoint: endpoint,
		Scopes:   b.cfg.Scopes,
	}
}

// probeStaticEndpoints derives the well-known realm endpoint layout and
// checks the realm actually answers before handing the endpoints out.
func (b *Broker) probeStaticEndpoints(ctx context.Context) (oauth2.Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.issuerURL(), nil)
	if err != nil {
		return oauth2.Endpoint{}, errors.Wrap(err, "probeStaticEndpoints build request")
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return oauth2.Endpoint{}, errors.Wrap(err, "probeStaticEndpoints realm unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return oauth2.Endpoint{}, errors.Errorf("probeStaticEndpoints realm answered %d", resp.StatusCode)
	}

	base := b.issuerURL() + openIDConnectPath
	return oauth2.Endpoint{
		AuthURL:  base + "/auth",
		TokenURL: base + "/token",
	}, nil
}
