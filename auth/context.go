package auth

import (
	"context"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/logging"
)

type contextKey string

const identityContextKey contextKey = "auth_identity"

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID    string
	SessionID string
}

// NewContextWithIdentity stores id in ctx and tags log lines with the user id.
func NewContextWithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = logging.WithUserID(ctx, id.UserID)
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the caller set by RequireUser or OptionalUser.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok && id.UserID != ""
}

// UserIDFromContext returns the caller's user id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

// RequireUserID returns the caller's user id or an AuthError for anonymous requests.
func RequireUserID(ctx context.Context) (string, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", apperror.NewAuthError("authentication required", nil)
	}
	return id.UserID, nil
}
