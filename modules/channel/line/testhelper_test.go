package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/flemzord/linekit/internal/catalog"
	"github.com/flemzord/linekit/internal/reply"
	"github.com/flemzord/linekit/internal/router"
	"github.com/flemzord/linekit/internal/router/routertest"
	"github.com/flemzord/linekit/pkg/message"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sign returns the X-Line-Signature value for body.
func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// recordingRouter captures every routed batch.
type recordingRouter struct {
	mu      sync.Mutex
	batches [][]message.Event
	err     error
}

func (r *recordingRouter) RouteBatch(_ context.Context, events []message.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
	return r.err
}

func (r *recordingRouter) Batches() [][]message.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]message.Event(nil), r.batches...)
}

// newRouter builds a real router replying through platform.
func newRouter(t *testing.T, platform *routertest.MockPlatform) *router.Router {
	t.Helper()
	return newMediaRouter(t, platform, &routertest.MockMedia{})
}

func newMediaRouter(t *testing.T, platform *routertest.MockPlatform, media *routertest.MockMedia) *router.Router {
	t.Helper()
	r, err := router.NewRouter(router.Config{
		Platform: platform,
		Builder:  reply.New("https://bot.example.com", catalog.Default()),
		Media:    media,
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}
