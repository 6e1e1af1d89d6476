// Package logging provides a minimal logging facade for the findr binding.
//
// This package defines a Logger interface that wraps a subset of the standard
// library's log/slog functionality. The interface is intentionally small to
// allow applications to provide custom implementations for testing or
// integration with existing logging systems.
//
// # Logger Interface
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Default Implementation
//
//	// Use default logger (slog.Default())
//	logger := logging.New(nil)
//
//	// Use custom slog.Logger
//	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	logger = logging.New(slog.New(handler))
//
// # What Gets Logged
//
// The library loader reports every candidate it skips or rejects while
// searching for the native library, and the facade reports each native call
// at debug level:
//
//	logger.Warn(ctx, "rejected native library", "path", p, "version", v)
//
// The native library's own log level is configured separately through
// findr.Config.LogLevel and is not affected by this package.
package logging
