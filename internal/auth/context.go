package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxSubject ctxKey = iota
	ctxIsAdmin
)

// WithIdentity stores the validated token identity on the request context.
// isAdmin is the token's issuance-time snapshot, not the live account flag.
func WithIdentity(ctx context.Context, subject string, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, ctxSubject, subject)
	ctx = context.WithValue(ctx, ctxIsAdmin, isAdmin)
	return ctx
}

func Subject(ctx context.Context) (string, error) {
	v := ctx.Value(ctxSubject)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("subject not in context")
}

func IsAdmin(ctx context.Context) bool {
	v := ctx.Value(ctxIsAdmin)
	b, _ := v.(bool)
	return b
}
