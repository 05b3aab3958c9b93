package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/tappin/authsession/identity"
	"github.com/tappin/authsession/metrics"
	"github.com/tappin/authsession/storage"
	"github.com/tappin/authsession/token"
	"go.uber.org/zap"
)

var (
	// ErrNoStore is returned (or panicked with) when a session store is required
	// but none was provided.
	ErrNoStore = errors.New("session store not provided")
	// ErrNilStorage is returned by Open without a storage backend.
	ErrNilStorage = errors.New("nil session storage")
)

// Store is the session state of one client.
type Store struct {
	storage storage.Storage
	decoder *token.Decoder
	logger  *zap.Logger
	metrics *metrics.Metrics

	// writeMu orders mutations so memory and storage end in the same state.
	writeMu sync.Mutex

	mu            sync.RWMutex
	user          *identity.User
	authenticated bool
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDecoder sets the token decoder. The default uses the store logger.
func WithDecoder(d *token.Decoder) Option {
	return func(s *Store) {
		s.decoder = d
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Open creates a Store and restores its state from st.
//
// Restoring never fails: an absent, expired or undecodable token, or a storage
// error, leaves the Store unauthenticated. Open only fails when st is nil.
func Open(ctx context.Context, st storage.Storage, opts ...Option) (*Store, error) {
	if st == nil {
		return nil, ErrNilStorage
	}

	s := &Store{
		storage: st,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = token.NewDecoder(token.WithLogger(s.logger))
	}

	s.initialize(ctx)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) {
	tok, ok, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		s.metrics.Inc(metrics.StorageFailure)
		s.logger.Error("session restore: token read failed", zap.Error(err))
		return
	}
	if !ok || tok == "" {
		s.metrics.Inc(metrics.SessionAnonymous)
		return
	}

	if s.decoder.IsExpired(tok) {
		s.metrics.Inc(metrics.SessionExpiredPurged)
		s.logger.Info("session restore: token expired, purging stored session")
		if err := s.storage.Remove(ctx, storage.KeyToken, storage.KeyUser, storage.KeyAuthenticated); err != nil {
			s.metrics.Inc(metrics.StorageFailure)
			s.logger.Error("session restore: purge failed", zap.Error(err))
		}
		return
	}

	extracted, err := s.decoder.ExtractUser(tok)
	if err != nil {
		s.metrics.Inc(metrics.TokenDecodeFailure)
		s.logger.Warn("session restore: no user in token", zap.Error(err))
		return
	}

	data, err := json.Marshal(extracted)
	if err != nil {
		s.logger.Error("session restore: encode user failed", zap.Error(err))
		return
	}
	if err := storage.SetAll(ctx, s.storage,
		storage.Entry{Key: storage.KeyUser, Value: string(data)},
		storage.Entry{Key: storage.KeyAuthenticated, Value: storage.AuthenticatedValue},
	); err != nil {
		s.metrics.Inc(metrics.StorageFailure)
		s.logger.Error("session restore: persist user failed", zap.Error(err))
		return
	}

	user, _ := identity.Normalize(extracted)
	s.user = &user
	s.authenticated = true
	s.metrics.Inc(metrics.SessionRestored)
	s.logger.Info("session restored",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
}

// Login records an already authenticated user. raw may use any known user shape.
// The stored token is left untouched.
//
// The in-memory state changes even when persisting fails; the storage error is
// returned.
func (s *Store) Login(ctx context.Context, raw identity.RawUser) error {
	s.mustBeOpen()

	user, ok := identity.Normalize(raw)
	if !ok {
		return identity.ErrEmptyUser
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.user = &user
	s.authenticated = true
	s.mu.Unlock()
	s.metrics.Inc(metrics.Login)

	if err := storage.SetAll(ctx, s.storage,
		storage.Entry{Key: storage.KeyUser, Value: string(data)},
		storage.Entry{Key: storage.KeyAuthenticated, Value: storage.AuthenticatedValue},
	); err != nil {
		s.metrics.Inc(metrics.StorageFailure)
		s.logger.Error("session login: persist user failed", zap.Error(err))
		return err
	}

	s.logger.Info("session login", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// Logout clears the session and removes user, flag and token from storage.
// Calling it while unauthenticated has the same result.
func (s *Store) Logout(ctx context.Context) error {
	s.mustBeOpen()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
	s.metrics.Inc(metrics.Logout)

	if err := s.storage.Remove(ctx, storage.KeyUser, storage.KeyAuthenticated, storage.KeyToken); err != nil {
		s.metrics.Inc(metrics.StorageFailure)
		s.logger.Error("session logout: purge failed", zap.Error(err))
		return err
	}

	s.logger.Info("session logout")
	return nil
}

// User returns a copy of the current user.
func (s *Store) User() (identity.User, bool) {
	s.mustBeOpen()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return identity.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	s.mustBeOpen()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// HasRole reports whether the current user's role equals role exactly.
func (s *Store) HasRole(role identity.Role) bool {
	return s.HasAnyRole(role)
}

// HasAnyRole reports whether the current user's role is one of roles.
func (s *Store) HasAnyRole(roles ...identity.Role) bool {
	s.mustBeOpen()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.Role == "" {
		return false
	}
	for _, r := range roles {
		if r == s.user.Role {
			return true
		}
	}
	return false
}

func (s *Store) mustBeOpen() {
	if s == nil {
		panic(ErrNoStore)
	}
}
