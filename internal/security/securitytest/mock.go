// Package securitytest provides security fixtures for other packages' tests.
package securitytest

import (
	"sync"

	"github.com/flemzord/linekit/internal/security"
)

// NewTestRedactor returns a Redactor without patterns, so fixture tokens
// that look like real credentials stay readable in test logs.
func NewTestRedactor() *security.Redactor {
	return &security.Redactor{}
}

// NewTestCredentialStore returns a store holding the given name/value
// pairs. It panics on an odd number of arguments.
func NewTestCredentialStore(kvs ...string) *security.CredentialStore {
	if len(kvs)%2 != 0 {
		panic("securitytest: NewTestCredentialStore needs name/value pairs")
	}
	store := security.NewCredentialStore()
	for i := 0; i < len(kvs); i += 2 {
		store.Set(kvs[i], kvs[i+1])
	}
	return store
}

// NewTestAuditLogger returns an AuditLogger that records events in memory
// and a function returning a snapshot of them. Safe for use from webhook
// handlers running on server goroutines.
func NewTestAuditLogger() (*security.AuditLogger, func() []security.AuditEvent) {
	var (
		mu     sync.Mutex
		events []security.AuditEvent
	)
	logger := security.NewAuditLogger(security.AuditLoggerConfig{
		OnEvent: func(e security.AuditEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		},
	})
	return logger, func() []security.AuditEvent {
		mu.Lock()
		defer mu.Unlock()
		return append([]security.AuditEvent(nil), events...)
	}
}
