package auth

import "context"

type ctxKey struct{}

// Provide attaches s to ctx.
func Provide(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the state attached by Provide. Reading the session
// without a provider is a programming error and panics.
func FromContext(ctx context.Context) *State {
	s, ok := ctx.Value(ctxKey{}).(*State)
	if !ok || s == nil {
		panic("auth: FromContext called without a provider")
	}
	return s
}
