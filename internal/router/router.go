package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/flemzord/linekit/internal/media"
	"github.com/flemzord/linekit/internal/reply"
	"github.com/flemzord/linekit/pkg/message"
)

const tracerName = "github.com/flemzord/linekit/internal/router"

// Event outcomes reported to Metrics.
const (
	OutcomeOK    = "ok"
	OutcomeVerification = "verification"
	OutcomeError = "error"
)

// Platform is the outbound side of the chat platform.
type Platform interface {
	// Reply sends msgs bound to a single-use reply token.
	Reply(ctx context.Context, token string, msgs []message.Reply) error
	Profile(ctx context.Context, userID string) (message.Profile, error)
	LeaveGroup(ctx context.Context, groupID string) error
	LeaveRoom(ctx context.Context, roomID string) error
}

// MediaFetcher downloads platform-hosted content.
type MediaFetcher interface {
	Image(ctx context.Context, messageID string) (media.Downloaded, error)
	Video(ctx context.Context, messageID string) (media.Downloaded, error)
	Audio(ctx context.Context, messageID string) (media.Downloaded, error)
}

// Metrics receives per-event observations. All methods must be safe for
// concurrent use.
type Metrics interface {
	RecordEvent(kind, outcome string, elapsed time.Duration)
	RecordReply(messages int)
	RecordMedia(kind, outcome string)
}

// Config holds the dependencies of a Router.
type Config struct {
	Platform Platform
	Builder  *reply.Builder
	Media    MediaFetcher
	Logger   *slog.Logger
	Metrics  Metrics
	Tracer   trace.Tracer

	// Intn picks the placeholder image; it must return a value in [0, n).
	// Nil uses math/rand/v2.
	Intn func(n int) int
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = nopMetrics{}
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	if c.Intn == nil {
		c.Intn = rand.IntN
	}
	return c
}

// Router dispatches events. It holds no mutable state and is safe for
// concurrent use.
type Router struct {
	platform Platform
	builder  *reply.Builder
	media    MediaFetcher
	logger   *slog.Logger
	metrics  Metrics
	tracer   trace.Tracer
	intn     func(int) int
	commands map[Command]textHandler
}

// NewRouter creates a Router from cfg.
func NewRouter(cfg Config) (*Router, error) {
	cfg = cfg.withDefaults()
	if cfg.Platform == nil {
		return nil, ErrNoPlatform
	}
	if cfg.Builder == nil {
		return nil, ErrNoBuilder
	}

	r := &Router{
		platform: cfg.Platform,
		builder:  cfg.Builder,
		media:    cfg.Media,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		intn:     cfg.Intn,
	}
	r.commands = r.commandTable()
	for _, c := range Commands() {
		if _, ok := r.commands[c]; !ok {
			return nil, fmt.Errorf("router: no handler for command %s", c)
		}
	}
	return r, nil
}

// IsVerificationToken reports whether token is a platform verification token: a
// single character repeated one or more times. Such tokens cannot be
// replied to.
func IsVerificationToken(token string) bool {
	if token == "" {
		return false
	}
	var first rune
	for i, c := range token {
		if i == 0 {
			first = c
			continue
		}
		if c != first {
			return false
		}
	}
	return true
}

// Route handles a single event: it issues at most one reply call and any
// follow-up action the event requires.
func (r *Router) Route(ctx context.Context, ev message.Event) (err error) {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrUnknownEvent)
	}

	kind := string(ev.Kind())
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "router.Route", trace.WithAttributes(
		attribute.String("event.kind", kind),
		attribute.String("event.source", sourceType(ev.From())),
	))
	defer func() {
		outcome := OutcomeOK
		if err != nil {
			outcome = OutcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if IsVerificationToken(ev.Token()) {
			outcome = OutcomeVerification
		}
		r.metrics.RecordEvent(kind, outcome, time.Since(start))
		span.End()
	}()

	if IsVerificationToken(ev.Token()) {
		r.logger.Info("router: verification event received, not replying",
			"event", kind,
			"content", verificationContent(ev),
		)
		return nil
	}

	r.logger.Debug("router: event",
		"event", kind,
		"source", sourceType(ev.From()),
	)

	switch e := ev.(type) {
	case message.MessageEvent:
		return r.handleMessage(ctx, e)
	case message.FollowEvent:
		return r.replyText(ctx, e.ReplyToken, "Got followed event")
	case message.UnfollowEvent:
		r.logger.Info("router: unfollowed", "source", sourceID(e.Source))
		return nil
	case message.JoinEvent:
		if e.Source == nil {
			return fmt.Errorf("%w: join without source", ErrUnknownSource)
		}
		return r.replyText(ctx, e.ReplyToken, "Joined "+string(e.Source.Type()))
	case message.LeaveEvent:
		r.logger.Info("router: left", "source", sourceID(e.Source))
		return nil
	case message.PostbackEvent:
		return r.handlePostback(ctx, e)
	case message.BeaconEvent:
		return r.replyText(ctx, e.ReplyToken, "Got beacon: "+e.HardwareID)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

// RouteBatch routes every event concurrently and waits for all of them. A
// failing event does not cancel its siblings; the returned error joins every
// per-event failure.
func (r *Router) RouteBatch(ctx context.Context, events []message.Event) error {
	errs := make([]error, len(events))
	var g errgroup.Group
	for i, ev := range events {
		g.Go(func() error {
			if err := r.Route(ctx, ev); err != nil {
				errs[i] = fmt.Errorf("event %d: %w", i, err)
			}
			return errs[i]
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (r *Router) reply(ctx context.Context, token string, msgs ...message.Reply) error {
	if err := r.platform.Reply(ctx, token, msgs); err != nil {
		return fmt.Errorf("router: reply: %w", err)
	}
	r.metrics.RecordReply(len(msgs))
	return nil
}

func (r *Router) replyText(ctx context.Context, token string, texts ...string) error {
	return r.reply(ctx, token, r.builder.Texts(texts...)...)
}

func sourceType(src message.Source) string {
	if src == nil {
		return ""
	}
	return string(src.Type())
}

func sourceID(src message.Source) string {
	if src == nil {
		return ""
	}
	return src.ID()
}

func verificationContent(ev message.Event) string {
	if m, ok := ev.(message.MessageEvent); ok && m.Message != nil {
		return string(m.Message.Type())
	}
	return ""
}

type nopMetrics struct{}

func (nopMetrics) RecordEvent(string, string, time.Duration) {}
func (nopMetrics) RecordReply(int)                           {}
func (nopMetrics) RecordMedia(string, string)                {}
