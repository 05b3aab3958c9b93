package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/tappin/authsession/storage"
	"github.com/tappin/authsession/token"
)

var errBackendDown = errors.New("backend down")

// recordingStorage wraps a Memory and counts calls, optionally failing them.
type recordingStorage struct {
	*storage.Memory

	mu       sync.Mutex
	gets     int
	writes   int
	removes  int
	failGet  bool
	failSet  bool
	failDrop bool
	// setDelay slows every write down.
	setDelay time.Duration
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{Memory: storage.NewMemory()}
}

func (r *recordingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	r.gets++
	fail := r.failGet
	r.mu.Unlock()
	if fail {
		return "", false, errBackendDown
	}
	return r.Memory.Get(ctx, key)
}

func (r *recordingStorage) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	r.writes++
	fail := r.failSet
	delay := r.setDelay
	r.mu.Unlock()
	time.Sleep(delay)
	if fail {
		return errBackendDown
	}
	return r.Memory.Set(ctx, key, value)
}

func (r *recordingStorage) SetMany(ctx context.Context, entries ...storage.Entry) error {
	r.mu.Lock()
	r.writes++
	fail := r.failSet
	delay := r.setDelay
	r.mu.Unlock()
	time.Sleep(delay)
	if fail {
		return errBackendDown
	}
	return r.Memory.SetMany(ctx, entries...)
}

func (r *recordingStorage) Remove(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	r.removes++
	fail := r.failDrop
	r.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return r.Memory.Remove(ctx, keys...)
}

var testSigningKey = []byte("session-test-key-session-test-ke")

func signToken(t *testing.T, claims gjwt.MapClaims) string {
	t.Helper()
	s, err := token.NewSigner(token.SignerConfig{TTL: time.Hour, SigningMethod: token.MethodHS256, PrivateKey: testSigningKey})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	tok, err := s.Sign(claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func mustOpen(t *testing.T, st storage.Storage, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), st, opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func storedValue(t *testing.T, st storage.Storage, key string) (string, bool) {
	t.Helper()
	v, ok, err := st.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	return v, ok
}
