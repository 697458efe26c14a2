package middleware

import "context"

// ContextKey is a private type for request-scoped values.
type ContextKey string

// UserIDCtxKey holds the authenticated caller id set by JWTAuth.
const UserIDCtxKey = ContextKey("user_id")

// WithUserID returns ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// UserIDFromContext returns the authenticated caller id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(string)
	return id, ok && id != ""
}
