package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
)

// maxWebhookBody bounds the size of a webhook request body.
const maxWebhookBody = 1 << 20

// listeningText answers GET on a webhook path.
const listeningText = "I'm listening. Please access with POST."

// ErrBadSignature is returned by a WebhookHandler when the request
// signature does not match. The dispatcher answers 400.
var ErrBadSignature = errors.New("gateway: invalid webhook signature")

// WebhookHandler processes a webhook payload. The handler is responsible for
// authenticating the request.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, body []byte, headers http.Header) error
}

// WebhookHandlerFunc adapts a function to WebhookHandler.
type WebhookHandlerFunc func(ctx context.Context, body []byte, headers http.Header) error

// HandleWebhook implements WebhookHandler.
func (f WebhookHandlerFunc) HandleWebhook(ctx context.Context, body []byte, headers http.Header) error {
	return f(ctx, body, headers)
}

// WebhookDispatcher routes incoming webhooks to handlers registered by path.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]WebhookHandler
	logger   *slog.Logger
	metrics  *Metrics
}

// NewWebhookDispatcher creates a ready-to-use dispatcher. metrics may be nil.
func NewWebhookDispatcher(logger *slog.Logger, metrics *Metrics) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers: make(map[string]WebhookHandler),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register adds a handler for the given path, replacing any previous one.
func (d *WebhookDispatcher) Register(path string, h WebhookHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[path] = h
}

// Paths returns the registered paths in sorted order.
func (d *WebhookDispatcher) Paths() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	paths := make([]string, 0, len(d.handlers))
	for p := range d.handlers {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// ServeHTTP implements http.Handler. GET answers a plain-text liveness line;
// POST hands the body to the handler registered for the request path and
// answers 200 with an empty body on success.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, listeningText)
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	d.mu.RLock()
	h, ok := d.handlers[r.URL.Path]
	d.mu.RUnlock()
	if !ok {
		d.logger.Warn("webhook received for unregistered path", "path", r.URL.Path)
		d.respond(w, http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		d.logger.Warn("webhook body unreadable", "path", r.URL.Path, "error", err)
		d.respond(w, http.StatusBadRequest)
		return
	}

	if err := h.HandleWebhook(r.Context(), body, r.Header); err != nil {
		if errors.Is(err, ErrBadSignature) {
			d.logger.Warn("webhook signature rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			d.respond(w, http.StatusBadRequest)
			return
		}
		d.logger.Error("webhook handler failed", "path", r.URL.Path, "error", err)
		d.respond(w, http.StatusInternalServerError)
		return
	}

	d.respond(w, http.StatusOK)
}

func (d *WebhookDispatcher) respond(w http.ResponseWriter, status int) {
	if d.metrics != nil {
		d.metrics.RecordBatch(status)
	}
	w.WriteHeader(status)
}
