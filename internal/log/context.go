package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

// LoggerContextKey is the context key for the logger
const LoggerContextKey contextKey = "logger"

// NewContext returns a copy of ctx carrying logger
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods for the client's
// recurring events
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogRequestStart logs an outbound API request
func (sl *StructuredLogger) LogRequestStart(ctx context.Context, r *http.Request, requestID string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.String()).
		WithRequestID(requestID)

	sl.logger.DebugContext(ctx, "API request started", fields.ToSlice()...)
}

// LogRequestEnd logs the completion of an outbound API request. 4xx
// responses log at warn, 5xx and transport failures (status 0) at error.
func (sl *StructuredLogger) LogRequestEnd(ctx context.Context, r *http.Request, requestID string, statusCode int, durationMs int64) {
	level := slog.LevelInfo
	switch {
	case statusCode == 0 || statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.String()).
		WithHTTPResponse(statusCode, durationMs, statusCode > 0 && statusCode < 400).
		WithRequestID(requestID)

	sl.logger.Log(ctx, level, "API request completed", fields.ToSlice()...)
}

// LogExpenseCreated logs a server-confirmed expense creation
func (sl *StructuredLogger) LogExpenseCreated(ctx context.Context, id *int64, desc, amount, category string) {
	fields := NewFields().WithOperation(OpCreate)
	if id != nil {
		fields[FieldExpenseID] = *id
	}
	fields[FieldExpenseDesc] = desc
	fields[FieldAmount] = amount
	fields[FieldCategory] = category

	sl.logger.InfoContext(ctx, "Expense created", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
