package cart

import (
	"context"
	"errors"
)

// ErrNoScope is the panic value raised when code asks for the cart outside the
// scope that provides it. It signals a wiring bug, never a user condition.
var ErrNoScope = errors.New("cart store requested outside of its scope")

type ctxKey struct{}

func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	return s, ok && s != nil
}

// MustFromContext panics with ErrNoScope when no store was installed.
func MustFromContext(ctx context.Context) *Store {
	s, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoScope)
	}
	return s
}
