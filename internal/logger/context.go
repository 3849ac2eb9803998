package logger

import (
	"context"
	"sync"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// loggerKey is the key used to store logger in context
var loggerKey = contextKey{}

// defaultLogger is used when no logger is found in context
var (
	defaultLogger   *Logger
	defaultLoggerMu sync.RWMutex
)

func init() {
	defaultLogger = New(nil)
}

// GetDefault returns the default logger (thread-safe).
// Use this when you need a logger outside of a context.
func GetDefault() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger replaces the logger used when a context carries none.
func SetDefaultLogger(l *Logger) {
	if l != nil {
		defaultLoggerMu.Lock()
		defaultLogger = l
		defaultLoggerMu.Unlock()
	}
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx or the default logger.
func FromContext(ctx context.Context) *Logger {
	return FromContextOr(ctx, nil)
}

// FromContextOr returns the logger attached to ctx, falling back to fallback
// and then to the default logger.
func FromContextOr(ctx context.Context, fallback *Logger) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return GetDefault()
}

// withField returns ctx carrying the context logger extended by one field.
func withField(ctx context.Context, key string, value interface{}) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

// SetRequestID tags the context logger with the request ID.
func SetRequestID(ctx context.Context, id string) context.Context {
	return withField(ctx, FieldRequestID, id)
}

// SetApplicationID tags the context logger with an application ID.
func SetApplicationID(ctx context.Context, id uint) context.Context {
	return withField(ctx, FieldApplicationID, id)
}

// SetSyncRunID tags the context logger with a sync run ID.
func SetSyncRunID(ctx context.Context, id string) context.Context {
	return withField(ctx, FieldSyncRunID, id)
}

// GetRequestID returns the request ID carried by the context logger, if any.
func GetRequestID(ctx context.Context) string {
	id, _ := FromContext(ctx).Data[FieldRequestID].(string)
	return id
}
