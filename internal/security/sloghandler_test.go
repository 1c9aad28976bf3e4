package security

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newRedactingLogger(r *Redactor, level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(inner, r)), &buf
}

func TestRedactingHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		log     func(*slog.Logger)
		secret  string
		visible string
	}{
		{
			name:   "message pattern",
			log:    func(l *slog.Logger) { l.Info("key is Bearer abcdefghijklmnopqrstuvwxyz") },
			secret: "Bearer abcdefghijklmnopqrstuvwxyz",
		},
		{
			name:    "attribute literal",
			log:     func(l *slog.Logger) { l.Info("reply", "detail", "tok-literal-1234", "safe", "visible") },
			secret:  "tok-literal-1234",
			visible: "visible",
		},
		{
			name:   "WithAttrs",
			log:    func(l *slog.Logger) { l.With("api_key", "tok-literal-1234").Info("bound") },
			secret: "tok-literal-1234",
		},
		{
			name:   "WithGroup",
			log:    func(l *slog.Logger) { l.WithGroup("auth").Info("attempt", "key", "Bearer abcdefghijklmnopqrstuvwxyz") },
			secret: "Bearer abcdefghijklmnopqrstuvwxyz",
		},
		{
			name: "nested group",
			log: func(l *slog.Logger) {
				l.Info("request", slog.Group("line", slog.String("detail", "tok-literal-1234"), slog.String("path", "/callback")))
			},
			secret:  "tok-literal-1234",
			visible: "/callback",
		},
		{
			name:   "error value",
			log:    func(l *slog.Logger) { l.Error("reply failed", "error", errors.New("token tok-literal-1234 rejected")) },
			secret: "tok-literal-1234",
		},
		{
			name:    "sensitive key",
			log:     func(l *slog.Logger) { l.Warn("bad request", "X-Line-Signature", "c2lnbmF0dXJl", "path", "/callback") },
			secret:  "c2lnbmF0dXJl",
			visible: "/callback",
		},
		{
			name:   "reply token key",
			log:    func(l *slog.Logger) { l.Debug("replying", "reply_token", "nHuyWiB7yP5Zw52FIkcQobQuGDXCTA") },
			secret: "nHuyWiB7yP5Zw52FIkcQobQuGDXCTA",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRedactor()
			r.AddLiteral("tok-literal-1234")
			logger, buf := newRedactingLogger(r, slog.LevelDebug)
			tt.log(logger)

			out := buf.String()
			if strings.Contains(out, tt.secret) {
				t.Errorf("secret found in output: %s", out)
			}
			if !strings.Contains(out, RedactPlaceholder) {
				t.Errorf("placeholder missing from output: %s", out)
			}
			if tt.visible != "" && !strings.Contains(out, tt.visible) {
				t.Errorf("%q missing from output: %s", tt.visible, out)
			}
		})
	}
}

func TestRedactingHandler_NoSecrets(t *testing.T) {
	t.Parallel()

	logger, buf := newRedactingLogger(NewRedactor(), slog.LevelDebug)
	logger.Info("webhook batch routed", "events", 2, "destination", "Uxxxxxxxx")

	out := buf.String()
	if strings.Contains(out, RedactPlaceholder) {
		t.Errorf("unexpected redaction in output: %s", out)
	}
	if !strings.Contains(out, "webhook batch routed") {
		t.Errorf("message missing from output: %s", out)
	}
}

func TestRedactingHandler_Enabled(t *testing.T) {
	t.Parallel()

	handler := NewRedactingHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}), NewRedactor())
	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
