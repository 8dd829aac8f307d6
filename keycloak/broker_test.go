package keycloak_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/climaborough/go-platform-client/keycloak"
	"github.com/climaborough/go-platform-client/session"
)

const testRealm = "climaborough"

type realmServer struct {
	*httptest.Server

	lock             sync.Mutex
	discoveryEnabled bool
	tokenResponses   []map[string]any
	tokenRequests    []url.Values
}

func (rs *realmServer) tokenRequestCount() int {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return len(rs.tokenRequests)
}

// newRealmServer stands in for a Keycloak realm: discovery document, token
// endpoint and the bare realm page used by the static-endpoint probe.
func newRealmServer(t *testing.T) *realmServer {
	t.Helper()
	rs := &realmServer{discoveryEnabled: true}

	mux := http.NewServeMux()
	mux.HandleFunc("/realms/"+testRealm+"/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		if !rs.discoveryEnabled {
			http.NotFound(w, r)
			return
		}
		issuer := rs.URL + "/realms/" + testRealm
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/protocol/openid-connect/auth",
			"token_endpoint":         issuer + "/protocol/openid-connect/token",
			"jwks_uri":               issuer + "/protocol/openid-connect/certs",
			"end_session_endpoint":   issuer + "/protocol/openid-connect/logout",
		})
	})
	mux.HandleFunc("/realms/"+testRealm, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"realm":"` + testRealm + `"}`))
	})
	mux.HandleFunc("/realms/"+testRealm+"/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		rs.lock.Lock()
		rs.tokenRequests = append(rs.tokenRequests, r.PostForm)
		var response map[string]any
		if len(rs.tokenResponses) > 0 {
			response = rs.tokenResponses[0]
			rs.tokenResponses = rs.tokenResponses[1:]
		}
		rs.lock.Unlock()
		if response == nil {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})

	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Close)
	return rs
}

func newTestBroker(t *testing.T, rs *realmServer, options ...keycloak.BrokerOption) *keycloak.Broker {
	t.Helper()
	cfg := keycloak.Config{
		URL:      rs.URL,
		Realm:    testRealm,
		ClientID: "climaborough-dashboard",
		CheckSSO: true,
	}
	options = append(options, keycloak.WithHTTPClient(rs.Client()))
	broker, err := keycloak.New(cfg, options...)
	require.NoError(t, err)
	return broker
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := keycloak.New(keycloak.Config{URL: "https://id.example"})
	require.Error(t, err)

	_, err = keycloak.New(keycloak.Config{
		URL:        "https://id.example",
		Realm:      testRealm,
		ClientID:   "c",
		PKCEMethod: "plain",
	})
	require.Error(t, err)
}

func TestInitializeDiscoversEndpoints(t *testing.T) {
	rs := newRealmServer(t)
	broker := newTestBroker(t, rs)

	found, err := broker.Initialize(context.Background())
	require.NoError(t, err)
	require.False(t, found)

	loginURL := broker.LoginURL("state-1", "nonce-1", "https://app.example/callback")
	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	require.Equal(t, "/realms/"+testRealm+"/protocol/openid-connect/auth", parsed.Path)
	require.Equal(t, "state-1", parsed.Query().Get("state"))
	require.Equal(t, "nonce-1", parsed.Query().Get("nonce"))
	require.Equal(t, "S256", parsed.Query().Get("code_challenge_method"))
	require.NotEmpty(t, parsed.Query().Get("code_challenge"))
	require.Contains(t, parsed.Query().Get("scope"), "openid")
}

func TestInitializeFallsBackToStaticEndpoints(t *testing.T) {
	rs := newRealmServer(t)
	rs.discoveryEnabled = false
	broker := newTestBroker(t, rs)

	found, err := broker.Initialize(context.Background())
	require.NoError(t, err)
	require.False(t, found)

	loginURL := broker.LoginURL("state-1", "nonce-1", "https://app.example/callback")
	require.Contains(t, loginURL, "/realms/"+testRealm+"/protocol/openid-connect/auth")
}

func TestInitializeUnreachableRealm(t *testing.T) {
	rs := newRealmServer(t)
	broker := newTestBroker(t, rs)
	rs.Close()

	_, err := broker.Initialize(context.Background())
	require.Error(t, err)
}

func TestInitializeResumesStoredCredential(t *testing.T) {
	rs := newRealmServer(t)
	rs.tokenResponses = append(rs.tokenResponses, map[string]any{
		"access_token":  "resumed-access",
		"refresh_token": "rotated-refresh",
		"token_type":    "Bearer",
		"expires_in":    300,
	})

	store := keycloak.NewMemoryStore()
	store.Set("climaborough_refresh_token", "stored-refresh")
	broker := newTestBroker(t, rs, keycloak.WithStore(store))

	found, err := broker.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	token := broker.Token()
	require.NotNil(t, token)
	require.Equal(t, "resumed-access", token.AccessToken)

	require.Len(t, rs.tokenRequests, 1)
	require.Equal(t, "refresh_token", rs.tokenRequests[0].Get("grant_type"))
	require.Equal(t, "stored-refresh", rs.tokenRequests[0].Get("refresh_token"))

	// Rotated refresh token replaced the stored one.
	stored, ok := store.Get("climaborough_refresh_token")
	require.True(t, ok)
	require.Equal(t, "rotated-refresh", stored)
}

func TestInitializeDropsUnusableStoredCredential(t *testing.T) {
	rs := newRealmServer(t)

	store := keycloak.NewMemoryStore()
	store.Set("climaborough_refresh_token", "revoked-refresh")
	broker := newTestBroker(t, rs, keycloak.WithStore(store))

	found, err := broker.Initialize(context.Background())
	require.NoError(t, err)
	require.False(t, found)

	_, ok := store.Get("climaborough_refresh_token")
	require.False(t, ok)
}

func TestInitializePurgesLegacyKeys(t *testing.T) {
	rs := newRealmServer(t)

	store := keycloak.NewMemoryStore()
	for _, key := range []string{"keycloak_token", "keycloak_refresh_token", "keycloak_expires_at", "userType"} {
		store.Set(key, "stale")
	}
	broker := newTestBroker(t, rs, keycloak.WithStore(store))

	_, err := broker.Initialize(context.Background())
	require.NoError(t, err)

	for _, key := range []string{"keycloak_token", "keycloak_refresh_token", "keycloak_expires_at", "userType"} {
		_, ok := store.Get(key)
		require.False(t, ok, "expected %s to be purged", key)
	}
}

func TestExchangeOnFallbackEndpoints(t *testing.T) {
	rs := newRealmServer(t)
	rs.discoveryEnabled = false
	rs.tokenResponses = append(rs.tokenResponses, map[string]any{
		"access_token":  "exchanged-access",
		"refresh_token": "exchanged-refresh",
		"token_type":    "Bearer",
		"expires_in":    300,
	})

	broker := newTestBroker(t, rs)
	_, err := broker.Initialize(context.Background())
	require.NoError(t, err)

	loginURL := broker.LoginURL("state-1", "nonce-1", "https://app.example/callback")
	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	challenge := parsed.Query().Get("code_challenge")
	require.NotEmpty(t, challenge)

	token, err := broker.Exchange(context.Background(), "auth-code", "nonce-1")
	require.NoError(t, err)
	require.Equal(t, "exchanged-access", token.AccessToken)
	require.Equal(t, "exchanged-refresh", token.RefreshToken)

	require.Len(t, rs.tokenRequests, 1)
	form := rs.tokenRequests[0]
	require.Equal(t, "authorization_code", form.Get("grant_type"))
	require.Equal(t, "auth-code", form.Get("code"))
	require.NotEmpty(t, form.Get("code_verifier"))
	require.Equal(t, "https://app.example/callback", form.Get("redirect_uri"))
}

func TestRefreshSkipsRoundTripInsideValidityWindow(t *testing.T) {
	rs := newRealmServer(t)
	rs.discoveryEnabled = false
	rs.tokenResponses = append(rs.tokenResponses, map[string]any{
		"access_token":  "fresh-access",
		"refresh_token": "fresh-refresh",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})

	broker := newTestBroker(t, rs)
	_, err := broker.Initialize(context.Background())
	require.NoError(t, err)

	broker.LoginURL("state-1", "nonce-1", "https://app.example/callback")
	_, err = broker.Exchange(context.Background(), "auth-code", "nonce-1")
	require.NoError(t, err)
	require.Len(t, rs.tokenRequests, 1)

	token, err := broker.Refresh(context.Background(), 30*time.Second)
	require.NoError(t, err)
	require.Equal(t, "fresh-access", token.AccessToken)
	require.Len(t, rs.tokenRequests, 1, "no extra token round trip expected")
}

func TestRefreshRenewsNearExpiry(t *testing.T) {
	rs := newRealmServer(t)
	rs.discoveryEnabled = false
	rs.tokenResponses = append(rs.tokenResponses,
		map[string]any{
			"access_token":  "short-lived-access",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    10,
		},
		map[string]any{
			"access_token":  "renewed-access",
			"refresh_token": "refresh-2",
			"token_type":    "Bearer",
			"expires_in":    3600,
		},
	)

	broker := newTestBroker(t, rs)
	_, err := broker.Initialize(context.Background())
	require.NoError(t, err)

	broker.LoginURL("state-1", "nonce-1", "https://app.example/callback")
	_, err = broker.Exchange(context.Background(), "auth-code", "nonce-1")
	require.NoError(t, err)

	token, err := broker.Refresh(context.Background(), 30*time.Second)
	require.NoError(t, err)
	require.Equal(t, "renewed-access", token.AccessToken)
	require.Equal(t, "refresh-1", rs.tokenRequests[1].Get("refresh_token"))
}

func TestRefreshWithoutCredential(t *testing.T) {
	rs := newRealmServer(t)
	broker := newTestBroker(t, rs)
	_, err := broker.Initialize(context.Background())
	require.NoError(t, err)

	_, err = broker.Refresh(context.Background(), 30*time.Second)
	require.Error(t, err)
}

// signAccessToken builds a structurally valid JWT so the session manager
// accepts it; the signature itself is never checked on this path.
func signAccessToken(t *testing.T, jti string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":              "user-1",
		"jti":              jti,
		"group_membership": []string{"/athens-catalog"},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestManagerProactiveRefreshRenewsThroughBroker(t *testing.T) {
	shortLived := signAccessToken(t, "short-lived")
	renewed := signAccessToken(t, "renewed")

	rs := newRealmServer(t)
	rs.discoveryEnabled = false
	rs.tokenResponses = append(rs.tokenResponses,
		map[string]any{
			"access_token":  shortLived,
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    120,
		},
		map[string]any{
			"access_token":  renewed,
			"refresh_token": "refresh-2",
			"token_type":    "Bearer",
			"expires_in":    3600,
		},
	)

	store := keycloak.NewMemoryStore()
	store.Set("climaborough_refresh_token", "stored-refresh")
	broker := newTestBroker(t, rs, keycloak.WithStore(store))

	m, err := session.New(broker, "https://dashboard.climaborough.eu/callback",
		session.WithCheckInterval(5*time.Millisecond))
	require.NoError(t, err)

	found, err := m.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, rs.tokenRequestCount())

	// 120s of lifetime remain: inside the background margin, outside the
	// synchronous minimum window. The next tick must renew for real.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.Eventually(t, func() bool {
		return rs.tokenRequestCount() >= 2
	}, time.Second, 10*time.Millisecond, "background refresh never reached the token endpoint")

	require.Eventually(t, func() bool {
		got, err := m.AccessToken(context.Background())
		return err == nil && got == renewed
	}, time.Second, 10*time.Millisecond)
}

func TestLogoutURLClearsCredential(t *testing.T) {
	rs := newRealmServer(t)
	rs.discoveryEnabled = false
	rs.tokenResponses = append(rs.tokenResponses, map[string]any{
		"access_token":  "access",
		"refresh_token": "refresh",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})

	store := keycloak.NewMemoryStore()
	broker := newTestBroker(t, rs, keycloak.WithStore(store))
	_, err := broker.Initialize(context.Background())
	require.NoError(t, err)

	broker.LoginURL("state-1", "nonce-1", "https://app.example/callback")
	_, err = broker.Exchange(context.Background(), "auth-code", "nonce-1")
	require.NoError(t, err)
	require.NotNil(t, broker.Token())

	logoutURL := broker.LogoutURL("https://app.example")
	require.True(t, strings.HasPrefix(logoutURL, rs.URL+"/realms/"+testRealm+"/protocol/openid-connect/logout?"))
	parsed, err := url.Parse(logoutURL)
	require.NoError(t, err)
	require.Equal(t, "climaborough-dashboard", parsed.Query().Get("client_id"))
	require.Equal(t, "https://app.example", parsed.Query().Get("post_logout_redirect_uri"))

	require.Nil(t, broker.Token())
	_, ok := store.Get("climaborough_refresh_token")
	require.False(t, ok)
}
