package logger

import (
	"context"
	"log/slog"
	"os"

	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
)

// Structured log attribute keys shared across the transport/correlator/
// façade layers, so a trace ID or method name is never spelled slightly
// differently from one log line to the next.
const (
	AttrTraceID  = "trace_id"
	AttrMethod   = "method"
	AttrPacketID = "packet_id"
	AttrSceneID  = "scene_id"
)

var (
	// default logger instance
	defaultLogger *slog.Logger
)

// initializes the logger based on environment
func init() {
	env := os.Getenv("ENVIRONMENT")

	var handler slog.Handler

	if env == "production" {
		// production: JSON output for structured logging
		opts := &slog.HandlerOptions{
			Level: slog.LevelInfo, // INFO and above in production
		}
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// development: human-readable text output
		opts := &slog.HandlerOptions{
			Level: slog.LevelDebug, // DEBUG and above in development
		}
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
}

// returns the default logger instance
func Default() *slog.Logger {
	return defaultLogger
}

// creates a logger with additional context fields
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

// creates a logger with context
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	// extract any logger from context if present
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// adds logger to context
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// helper type for context key
type loggerKey struct{}

// WithTrace returns a logger pre-bound to one correlator trace ID, so every
// line logged for a single outbound request (the send and its reply or
// failure) carries the same identifier without the caller repeating the
// key by hand.
func WithTrace(traceID string) *slog.Logger {
	return defaultLogger.With(AttrTraceID, traceID)
}

// WithMethod returns a logger pre-bound to one wire method name and packet
// ID, the pair every inbound/outbound packet log line keys off.
func WithMethod(method string, packetID uint32) *slog.Logger {
	return defaultLogger.With(AttrMethod, method, AttrPacketID, packetID)
}

// convenience functions for common log levels

// logs a debug message
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// logs an info message
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// logs a warning message
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// logs an error message
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// logs an error with context
func ErrorErr(err error, msg string, args ...any) {
	args = append(args, "error", err, "error_category", ierrors.Classify(err))
	defaultLogger.Error(msg, args...)
}

// logs a fatal error and exits (for CLI tools)
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// logs a fatal error with error and exits (for CLI tools)
func FatalErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}
