package logger

import "context"

type requestKey struct{}

// RequestInfo identifies the caller of a channel invocation.
type RequestInfo struct {
	ID         string
	RemoteAddr string
}

// WithRequest stores info in ctx.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey{}, info)
}

// RequestFromContext returns the RequestInfo stored in ctx, or the zero value.
func RequestFromContext(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestKey{}).(RequestInfo)
	return info
}
