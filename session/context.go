package session

import "context"

type storeContextKey struct{}

// WithStore attaches s to ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// FromContext returns the Store attached by [WithStore], or [ErrNoStore].
func FromContext(ctx context.Context) (*Store, error) {
	if ctx == nil {
		return nil, ErrNoStore
	}

	s, _ := ctx.Value(storeContextKey{}).(*Store)
	if s == nil {
		return nil, ErrNoStore
	}
	return s, nil
}

// MustFromContext is [FromContext] for callers that cannot proceed without a
// Store. It panics with [ErrNoStore].
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
