package middleware

import (
	"context"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	requestIDKey
)

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *models.UserContext) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the authenticated user, if any. A missing user is the anonymous case.
func UserFrom(ctx context.Context) (*models.UserContext, bool) {
	user, ok := ctx.Value(userKey).(*models.UserContext)
	return user, ok && user != nil
}

// RequestIDFrom returns the id assigned by Logging.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
