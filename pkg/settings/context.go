package settings

import (
	"context"
)

type contextKey struct{}

// IntoContext stores run settings in the context.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext retrieves run settings from the context.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(contextKey{}).(*Run)
	return s, ok
}
