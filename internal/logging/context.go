package logging

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the request id for log entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns a log entry tagged with the request id in ctx.
func FromContext(ctx context.Context) *log.Entry {
	if id := RequestID(ctx); id != "" {
		return log.WithField(RequestIDKey, id)
	}
	return log.NewEntry(log.StandardLogger())
}
