package session

import (
	"context"
	"errors"
	"testing"

	"github.com/tappin/authsession/storage"
)

func TestFromContext(t *testing.T) {
	s := mustOpen(t, storage.NewMemory())
	ctx := WithStore(context.Background(), s)

	got, err := FromContext(ctx)
	if err != nil || got != s {
		t.Fatalf("expected stored store, got %v err=%v", got, err)
	}

	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	//nolint:staticcheck // nil context is handled explicitly
	if _, err := FromContext(nil); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore for nil context, got %v", err)
	}
	if _, err := FromContext(WithStore(context.Background(), nil)); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore for nil store, got %v", err)
	}
}

func TestMustFromContextPanicsWithoutStore(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		} else if err, ok := r.(error); !ok || !errors.Is(err, ErrNoStore) {
			t.Fatalf("expected ErrNoStore panic, got %v", r)
		}
	}()
	MustFromContext(context.Background())
}
