package storage

import (
	"context"
	"errors"
)

// Keys holding the session mirror.
const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeyAuthenticated = "isAuthenticated"
)

// AuthenticatedValue is the literal stored under [KeyAuthenticated].
const AuthenticatedValue = "true"

// SessionKeys lists every key owned by the session mirror.
var SessionKeys = []string{KeyUser, KeyAuthenticated, KeyToken}

// ErrUnavailable wraps backend failures.
var ErrUnavailable = errors.New("storage unavailable")

// Storage is a string key/value store scoped to one origin.
type Storage interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// Entry is a key/value pair written by [SetAll].
type Entry struct {
	Key   string
	Value string
}

// MultiSetter is implemented by backends that can write several entries at once.
type MultiSetter interface {
	SetMany(ctx context.Context, entries ...Entry) error
}

// SetAll writes entries through SetMany when s supports it, one by one otherwise.
func SetAll(ctx context.Context, s Storage, entries ...Entry) error {
	if ms, ok := s.(MultiSetter); ok {
		return ms.SetMany(ctx, entries...)
	}
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
