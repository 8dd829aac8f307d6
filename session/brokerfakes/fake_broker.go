package brokerfakes

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/climaborough/go-platform-client/session"
	"github.com/pkg/errors"
)

var _ session.Broker = (*FakeBroker)(nil)

// FakeBroker is a scriptable in-memory identity broker for tests. Canned
// results are set directly on the struct; call counters allow asserting how
// often the Manager reached out.
type FakeBroker struct {
	lock sync.Mutex

	InitResult     bool
	InitErr        error
	CurrentToken   *session.Token
	RefreshResult  *session.Token
	RefreshErr     error
	ExchangeResult *session.Token
	ExchangeErr    error

	InitializeCalls int
	RefreshCalls    int
	ExchangeCalls   int
	LoginURLCalls   int

	LastState       string
	LastNonce       string
	LastRedirectURI string
	LastCode        string
	LastLogoutURL   string
}

func NewFakeBroker() *FakeBroker {
	return &FakeBroker{}
}

func (b *FakeBroker) Initialize(_ context.Context) (bool, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.InitializeCalls++
	if b.InitErr != nil {
		return false, b.InitErr
	}
	return b.InitResult, nil
}

func (b *FakeBroker) LoginURL(state, nonce, redirectURI string) string {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.LoginURLCalls++
	b.LastState = state
	b.LastNonce = nonce
	b.LastRedirectURI = redirectURI
	q := url.Values{}
	q.Set("state", state)
	q.Set("nonce", nonce)
	q.Set("redirect_uri", redirectURI)
	return "https://broker.example/auth?" + q.Encode()
}

func (b *FakeBroker) Exchange(_ context.Context, code, expectedNonce string) (*session.Token, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.ExchangeCalls++
	b.LastCode = code
	if b.ExchangeErr != nil {
		return nil, b.ExchangeErr
	}
	if expectedNonce != "" && b.LastNonce != "" && expectedNonce != b.LastNonce {
		return nil, errors.New("nonce mismatch")
	}
	b.CurrentToken = b.ExchangeResult
	return b.ExchangeResult, nil
}

func (b *FakeBroker) Refresh(_ context.Context, _ time.Duration) (*session.Token, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.RefreshCalls++
	if b.RefreshErr != nil {
		return nil, b.RefreshErr
	}
	b.CurrentToken = b.RefreshResult
	return b.RefreshResult, nil
}

func (b *FakeBroker) LogoutURL(redirectTarget string) string {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.CurrentToken = nil
	b.LastLogoutURL = "https://broker.example/logout?post_logout_redirect_uri=" + url.QueryEscape(redirectTarget)
	return b.LastLogoutURL
}

func (b *FakeBroker) Token() *session.Token {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.CurrentToken
}
