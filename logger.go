package edgetrust

import (
	"context"
)

// Logger records loader lifecycle events and rejected rewrites.
//
// Implementations should be safe for concurrent use, as a single Gate
// instance is typically shared across many goroutines.
//
// The provided context is the loader's context for lifecycle events and the
// inbound request context for request events, so trace metadata can flow
// through.
//
// The interface intentionally mirrors slog's *Context methods, so
// *slog.Logger can be used directly without an adapter.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// noopLogger is the default Logger implementation when logging is not
// explicitly configured.
type noopLogger struct{}

func (noopLogger) InfoContext(context.Context, string, ...any) {}

func (noopLogger) WarnContext(context.Context, string, ...any) {}

func (noopLogger) ErrorContext(context.Context, string, ...any) {}
