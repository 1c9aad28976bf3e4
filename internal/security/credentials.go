// Package security provides credential management, log redaction and
// security audit logging.
package security

import (
	"maps"
	"slices"
	"sync"
)

// Names under which the LINE channel credentials are stored.
const (
	CredentialAccessToken   = "line.channel_access_token"
	CredentialChannelSecret = "line.channel_secret"
)

// CredentialStore holds the secrets loaded from configuration. Every value
// it holds is masked in logs once synced into a Redactor.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]string
}

// NewCredentialStore returns an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[string]string)}
}

// Set stores value under name, replacing any previous value.
func (s *CredentialStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[name] = value
}

// Get returns the value stored under name.
func (s *CredentialStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.creds[name]
	return v, ok
}

// Names returns the stored credential names, sorted.
func (s *CredentialStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.creds))
}

// Values returns the non-empty credential values in no particular order.
func (s *CredentialStore) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]string, 0, len(s.creds))
	for _, v := range s.creds {
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// Len returns the number of stored credentials.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.creds)
}
