package register

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tappin/authsession/metrics"
	"github.com/tappin/authsession/session"
	"github.com/tappin/authsession/storage"
	"github.com/tappin/authsession/token"
	"go.uber.org/zap"
)

// ClientAdminHome is where a registered client admin lands without onboarding.
const ClientAdminHome = "/client-admin"

// Form is the registration input.
type Form struct {
	Name     string
	Email    string
	Password string
	Tier     Tier
	// MaxStudents overrides the tier default. Required for custom tiers.
	MaxStudents int
}

// Request builds the API request, filling the student limit from the tier.
func (f Form) Request() (ClientRequest, error) {
	limit := f.MaxStudents
	if limit == 0 {
		if n, ok := f.Tier.MaxStudents(); ok {
			limit = n
		}
	}
	if limit <= 0 {
		return ClientRequest{}, fmt.Errorf("%w: max_students must be greater than 0", ErrInvalidData)
	}
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return ClientRequest{}, fmt.Errorf("%w: email and password are required", ErrInvalidData)
	}
	return ClientRequest{
		Name:         f.Name,
		Email:        strings.TrimSpace(f.Email),
		Password:     f.Password,
		Tier:         f.Tier,
		MaxStudents:  limit,
		SuperAdminID: SuperAdminID,
	}, nil
}

// Result describes a completed registration.
type Result struct {
	// OnboardingURL is the Stripe onboarding link, when the API returned one.
	OnboardingURL string
	// Next is where the caller should go: the onboarding link or the client
	// admin home.
	Next string
	// LoggedIn reports whether the automatic login produced a session.
	LoggedIn bool
}

// Flow registers clients and signs them in.
type Flow struct {
	api     API
	store   *session.Store
	storage storage.Storage
	decoder *token.Decoder
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type FlowOption func(*Flow)

func WithLogger(logger *zap.Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithDecoder(d *token.Decoder) FlowOption {
	return func(f *Flow) {
		f.decoder = d
	}
}

func WithMetrics(m *metrics.Metrics) FlowOption {
	return func(f *Flow) {
		f.metrics = m
	}
}

// NewFlow creates a Flow. st must be the storage behind store; the login token
// is written there.
func NewFlow(api API, store *session.Store, st storage.Storage, opts ...FlowOption) *Flow {
	f := &Flow{
		api:     api,
		store:   store,
		storage: st,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.decoder == nil {
		f.decoder = token.NewDecoder(token.WithLogger(f.logger))
	}
	return f
}

// Register creates the client account and attempts an automatic login.
// Only the account creation can fail the call. When the automatic login fails
// after the token was stored, the token and session are cleared again, so
// LoggedIn=false always means nothing was persisted.
func (f *Flow) Register(ctx context.Context, form Form) (Result, error) {
	req, err := form.Request()
	if err != nil {
		f.metrics.Inc(metrics.RegistrationFailure)
		return Result{}, err
	}

	f.logger.Info("registering client", zap.String("email", req.Email), zap.String("tier", string(req.Tier)))
	resp, err := f.api.CreateClient(ctx, req)
	if err != nil {
		f.metrics.Inc(metrics.RegistrationFailure)
		f.logger.Error("client registration failed", zap.String("email", req.Email), zap.Error(err))
		return Result{}, err
	}
	f.metrics.Inc(metrics.RegistrationSuccess)

	res := Result{
		OnboardingURL: resp.OnboardingURL,
		Next:          ClientAdminHome,
	}
	if resp.OnboardingURL != "" {
		res.Next = resp.OnboardingURL
	}

	if err := f.autoLogin(ctx, req.Email, req.Password); err != nil {
		f.metrics.Inc(metrics.AutoLoginFailure)
		f.logger.Warn("automatic login after registration failed", zap.String("email", req.Email), zap.Error(err))
		return res, nil
	}
	res.LoggedIn = true
	return res, nil
}

var errNoToken = errors.New("login response carried no token")

func (f *Flow) autoLogin(ctx context.Context, email, password string) error {
	tok, err := f.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if tok == "" {
		return errNoToken
	}

	user, err := f.decoder.ExtractUser(tok)
	if err != nil {
		return err
	}
	if f.store == nil || f.storage == nil {
		return session.ErrNoStore
	}
	if err := f.storage.Set(ctx, storage.KeyToken, tok); err != nil {
		return err
	}
	if err := f.store.Login(ctx, user); err != nil {
		// Undo the token and the in-memory login so nothing claims a session.
		if lerr := f.store.Logout(ctx); lerr != nil {
			f.logger.Error("rollback of failed automatic login failed", zap.Error(lerr))
		}
		return err
	}
	return nil
}
