package middleware

import (
	"context"

	"github.com/clubscouncil/portal-backend/pkg/auth"
)

type contextKey string

const ctxCaller contextKey = "caller"

// CallerFromContext returns the resolved caller. Requests that never passed
// through the auth middleware resolve to the anonymous public caller.
func CallerFromContext(ctx context.Context) auth.Caller {
	if ctx == nil {
		return auth.Caller{}
	}
	if caller, ok := ctx.Value(ctxCaller).(auth.Caller); ok {
		return caller
	}
	return auth.Caller{}
}

// WithCaller injects the caller into the context.
func WithCaller(ctx context.Context, caller auth.Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCaller, caller)
}
