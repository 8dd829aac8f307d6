package keycloak

import "sync"

// Credential store keys. Session-relevant values live in short-lived storage
// only; the legacy keys below belonged to an earlier durable-storage scheme
// and are purged on startup.
const refreshTokenKey = "climaborough_refresh_token"

var legacyStorageKeys = []string{
	"keycloak_token",
	"keycloak_refresh_token",
	"keycloak_expires_at",
	"userType",
}

// Store persists broker credentials between runs. Implementations must be
// short-lived (cookie-equivalent); durable local storage is not an acceptable
// backing.
type Store interface {
	Set(key, value string)
	Get(key string) (string, bool)
	Delete(key string)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps credentials for the lifetime of the process only.
type MemoryStore struct {
	lock   sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Set(key, value string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Delete(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.values, key)
}
