package simdate

import "context"

type ctxKey struct{}

func Provide(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext panics when no State was provided.
func FromContext(ctx context.Context) *State {
	s, ok := ctx.Value(ctxKey{}).(*State)
	if !ok || s == nil {
		panic("simdate: FromContext called without a provider")
	}
	return s
}
