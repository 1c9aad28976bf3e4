package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/linekit/internal/gateway"
	"github.com/flemzord/linekit/internal/router"
	"github.com/flemzord/linekit/internal/security"
	"github.com/flemzord/linekit/pkg/message"
)

const (
	signatureHeader = "X-Line-Signature"
	tracerName      = "github.com/flemzord/linekit/modules/channel/line"
)

// ErrMalformedBatch is returned for payloads whose events field is not an
// array.
var ErrMalformedBatch = errors.New("line: malformed webhook batch")

// BatchRouter routes a converted webhook batch.
type BatchRouter interface {
	RouteBatch(ctx context.Context, events []message.Event) error
}

// WebhookReceiver verifies and converts LINE webhook batches.
// It implements gateway.WebhookHandler.
type WebhookReceiver struct {
	secret string
	router BatchRouter
	logger *slog.Logger
	audit  *security.AuditLogger
	tracer trace.Tracer
}

var _ gateway.WebhookHandler = (*WebhookReceiver)(nil)

// NewWebhookReceiver creates a WebhookReceiver. audit may be nil.
func NewWebhookReceiver(secret string, r BatchRouter, logger *slog.Logger, audit *security.AuditLogger) *WebhookReceiver {
	return &WebhookReceiver{
		secret: secret,
		router: r,
		logger: logger,
		audit:  audit,
		tracer: otel.Tracer(tracerName),
	}
}

// HandleWebhook verifies the signature, rejects batches whose events field
// is not an array, converts every event and routes the batch. Events that
// cannot be converted fail the batch after the others have been routed,
// unless they carry a verification reply token. Routing is not cancelled
// when ctx is.
func (w *WebhookReceiver) HandleWebhook(ctx context.Context, body []byte, headers http.Header) (err error) {
	if !webhook.ValidateSignature(w.secret, headers.Get(signatureHeader), body) {
		w.auditEvent(security.EventSignatureFailure, "invalid "+signatureHeader)
		return fmt.Errorf("line: %w", gateway.ErrBadSignature)
	}

	if !eventsIsArray(body) {
		w.auditEvent(security.EventMalformedBatch, "events is not an array")
		return ErrMalformedBatch
	}

	var cb webhook.CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		return fmt.Errorf("line: decode webhook: %w", err)
	}

	batchID := uuid.NewString()
	ctx, span := w.tracer.Start(ctx, "line.webhook", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.String("line.destination", cb.Destination),
		attribute.Int("batch.size", len(cb.Events)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	w.logger.Info("line: webhook batch",
		"batch", batchID,
		"destination", cb.Destination,
		"events", len(cb.Events),
	)

	events := make([]message.Event, 0, len(cb.Events))
	var errs []error
	for i, ev := range cb.Events {
		converted, cerr := convertEvent(ev)
		if cerr != nil {
			// Verification events are acknowledged whatever they carry.
			if token := replyToken(ev); router.IsVerificationToken(token) {
				w.logger.Info("line: verification event", "batch", batchID, "type", fmt.Sprintf("%T", ev))
				continue
			}
			errs = append(errs, fmt.Errorf("event %d: %w", i, cerr))
			continue
		}
		events = append(events, converted)
	}

	// Replies, downloads and transcodes finish even if the platform drops
	// the connection.
	if rerr := w.router.RouteBatch(context.WithoutCancel(ctx), events); rerr != nil {
		errs = append(errs, rerr)
	}
	if err := errors.Join(errs...); err != nil {
		w.logger.Error("line: webhook batch failed", "batch", batchID, "error", err)
		return err
	}
	return nil
}

func (w *WebhookReceiver) auditEvent(t security.EventType, detail string) {
	w.logger.Warn("line: webhook rejected", "reason", detail)
	if w.audit == nil {
		return
	}
	w.audit.Log(security.AuditEvent{
		Type:    t,
		Channel: "channel.line",
		Detail:  detail,
	})
}

// eventsIsArray reports whether body is a JSON object whose events field is
// an array. A missing or null field is not.
func eventsIsArray(body []byte) bool {
	var raw struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(raw.Events), []byte("["))
}
