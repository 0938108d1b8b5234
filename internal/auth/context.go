package auth

import "context"

type contextKey struct{}

// WithIdentity кладёт идентичность вызывающего в контекст запроса.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// IdentityFromContext достаёт идентичность вызывающего, если запрос аутентифицирован.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	return identity, ok
}
