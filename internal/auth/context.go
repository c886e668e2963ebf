package auth

import "context"

type ctxKey string

const userContextKey ctxKey = "tasknest.auth.user"

// ContextWithUser returns a context carrying u as the verified caller.
// RequireAPI uses it; handler tests can use it to bypass the session layer.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the verified caller identity injected by
// RequireAPI. Handlers behind the middleware can rely on it being present.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey).(User)
	return u, ok
}
