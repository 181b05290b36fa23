package logger

import "context"

type ctxKey struct{}

// WithContext returns a new context carrying l, for retrieval by
// request-scoped code deeper in the call stack (e.g. HTTP middleware
// attaching a request-ID-enriched logger).
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger stored by WithContext, or a no-op
// logger if none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return NewNop()
}
