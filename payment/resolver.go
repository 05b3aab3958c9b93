package payment

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/tappin/authsession/identity"
	"github.com/tappin/authsession/metrics"
	"github.com/tappin/authsession/storage"
	"go.uber.org/zap"
)

// Kind is the checkout result the provider redirected with.
type Kind int

const (
	KindSuccess Kind = iota
	KindCancel
)

func (k Kind) String() string {
	if k == KindCancel {
		return "cancel"
	}
	return "success"
}

const (
	LandingPath = "/"
	StaffPath   = "/staff"
	ParentPath  = "/parent"
)

// SettleDelay is how long the success page waits before enabling the way back.
const SettleDelay = 2 * time.Second

// Outcome is what the return page should do.
type Outcome struct {
	Kind Kind
	// Redirect is set when the page must not render.
	Redirect string
	// StudentName and Amount come from the success query, empty otherwise.
	StudentName string
	Amount      string
	// SettleDelay is zero for cancellations.
	SettleDelay time.Duration
}

// Redirected reports whether the page should navigate away immediately.
func (o Outcome) Redirected() bool {
	return o.Redirect != ""
}

// Resolver reads the stored session for payment return pages.
type Resolver struct {
	storage storage.Storage
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(st storage.Storage, opts ...Option) *Resolver {
	r := &Resolver{storage: st, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve decides the outcome of a return page. query is the redirect query
// string; only success pages read it.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, query url.Values) (Outcome, error) {
	out := Outcome{Kind: kind}

	ok, err := r.hasSession(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		r.metrics.Inc(metrics.PaymentRedirectNoSession)
		r.logger.Info("payment return without session", zap.Stringer("kind", kind))
		out.Redirect = LandingPath
		return out, nil
	}

	if kind == KindSuccess {
		out.StudentName = unescape(query.Get("student_name"))
		out.Amount = query.Get("amount")
		out.SettleDelay = SettleDelay
		r.logger.Info("payment succeeded",
			zap.String("student_name", out.StudentName),
			zap.String("amount", out.Amount))
	}
	return out, nil
}

// DashboardPath returns the dashboard for the stored user. Anything but a staff
// role, including a missing or unreadable user, goes to the parent dashboard.
func (r *Resolver) DashboardPath(ctx context.Context) string {
	raw, ok, err := r.storage.Get(ctx, storage.KeyUser)
	if err != nil || !ok {
		return ParentPath
	}

	var stored struct {
		Role string `json:"role"`
		Rol  string `json:"rol"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		r.logger.Warn("stored user unreadable", zap.Error(err))
		return ParentPath
	}
	role := stored.Role
	if role == "" {
		role = stored.Rol
	}
	if identity.Role(role) == identity.RoleStaff {
		return StaffPath
	}
	return ParentPath
}

func (r *Resolver) hasSession(ctx context.Context) (bool, error) {
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		v, ok, err := r.storage.Get(ctx, key)
		if err != nil {
			return false, err
		}
		if !ok || v == "" {
			return false, nil
		}
	}
	return true, nil
}

// unescape decodes the value once more. Invalid escapes leave it as is.
func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
