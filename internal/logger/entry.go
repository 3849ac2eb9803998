package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Entry accumulates metric fields (duration_ms, count, stage) for a single
// log line. The line is written through the logger carried by ctx.
//
//	logger.With(logger.Fields{"requested": 3}).WithCount(2).Info(ctx, "Bulk task update applied")
type Entry struct {
	fields Fields
}

// With starts an Entry from a copy of fields.
func With(fields Fields) *Entry {
	e := &Entry{fields: make(Fields, len(fields)+2)}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithField returns a copy of e with key set.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	next := With(e.fields)
	next.fields[key] = value
	return next
}

// WithDuration sets duration_ms.
func (e *Entry) WithDuration(ms int64) *Entry {
	return e.WithField(FieldDurationMs, ms)
}

// WithCount sets count.
func (e *Entry) WithCount(count int) *Entry {
	return e.WithField(FieldCount, count)
}

// WithStatus sets status; used for HTTP codes as well as stages.
func (e *Entry) WithStatus(status interface{}) *Entry {
	return e.WithField(FieldStatus, status)
}

// WithStage sets the pipeline stage an application moved to.
func (e *Entry) WithStage(stage string) *Entry {
	return e.WithField(FieldStage, stage)
}

// Info writes the entry at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.InfoLevel, format, args...)
}

// Warn writes the entry at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.WarnLevel, format, args...)
}

func (e *Entry) log(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	FromContext(ctx).Entry.WithFields(logrus.Fields(e.fields)).Logf(level, format, args...)
}
