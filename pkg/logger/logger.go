package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// New returns the process-wide structured logger. Local and dev
// environments log at debug, everything else at info. Handlers and services
// receive this by injection; only main should call New.
func New(appEnv string) *slog.Logger {
	level := slog.LevelInfo
	switch appEnv {
	case "local", "dev":
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "photohire-api")
}

type ctxKey struct{}

// With attaches a request-scoped logger to the context. Middleware does
// this for every HTTP request so code below gin can log with the request id.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger attached by With, or slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// ShutdownFlush exists for a future buffered handler; the JSON handler
// writes through, so there is nothing to flush today.
func ShutdownFlush(_ context.Context, _ time.Duration) error { return nil }
