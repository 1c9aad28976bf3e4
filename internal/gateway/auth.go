package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/flemzord/linekit/internal/security"
)

const authRealm = `Basic realm="linekit"`

// authenticate checks r against the configured credentials. It returns the
// method that succeeded, or the failure reason.
func (a AuthConfig) authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "missing authorization header", false
	}
	if a.BearerToken != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && constantTimeEqual(token, a.BearerToken) {
			return "bearer", true
		}
	}
	if a.BasicUser != "" && a.BasicPass != "" {
		if user, pass, ok := r.BasicAuth(); ok && constantTimeEqual(user, a.BasicUser) && constantTimeEqual(pass, a.BasicPass) {
			return "basic", true
		}
	}
	return "invalid credentials", false
}

// authMiddleware guards the admin routes. Every attempt is audited when
// audit is non-nil.
func authMiddleware(cfg AuthConfig, audit *security.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			detail, ok := cfg.authenticate(r)
			if !ok {
				emitAuthEvent(audit, security.EventAuthFailure, r, detail)
				if cfg.BasicUser != "" {
					w.Header().Set("WWW-Authenticate", authRealm)
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			emitAuthEvent(audit, security.EventAuthSuccess, r, detail)
			next.ServeHTTP(w, r)
		})
	}
}

func emitAuthEvent(audit *security.AuditLogger, eventType security.EventType, r *http.Request, detail string) {
	if audit == nil {
		return
	}
	audit.Log(security.AuditEvent{
		Type:    eventType,
		Channel: "gateway.http",
		Remote:  r.RemoteAddr,
		Detail:  detail,
		Metadata: map[string]string{
			"method": r.Method,
			"path":   r.URL.Path,
		},
	})
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
