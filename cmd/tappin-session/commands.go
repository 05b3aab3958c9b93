package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/tappin/authsession"
	"github.com/tappin/authsession/identity"
	"github.com/tappin/authsession/metrics/export/prometheus"
	"github.com/tappin/authsession/payment"
	"github.com/tappin/authsession/register"
	"github.com/tappin/authsession/session"
	"github.com/tappin/authsession/storage"
	"github.com/tappin/authsession/token"
)

type command func(ctx context.Context, app *authsession.App, args []string, out io.Writer) error

var commands = map[string]command{
	"status":    cmdStatus,
	"inspect":   cmdInspect,
	"set-token": cmdSetToken,
	"login":     cmdLogin,
	"logout":    cmdLogout,
	"has-role":  cmdHasRole,
	"mint":      cmdMint,
	"register":  cmdRegister,
	"payment":   cmdPayment,
	"metrics":   cmdMetrics,
}

var errUsage = errors.New("invalid arguments")

type statusView struct {
	Authenticated bool           `json:"authenticated"`
	User          *identity.User `json:"user"`
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStatus(out io.Writer, s *session.Store) error {
	view := statusView{Authenticated: s.IsAuthenticated()}
	if u, ok := s.User(); ok {
		view.User = &u
	}
	return writeJSON(out, view)
}

func cmdStatus(_ context.Context, app *authsession.App, _ []string, out io.Writer) error {
	return printStatus(out, app.Session())
}

type inspectView struct {
	Expired   bool                `json:"expired"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	User      *identity.TokenUser `json:"user,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func cmdInspect(_ context.Context, _ *authsession.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: inspect <token>", errUsage)
	}
	tok := args[0]

	view := inspectView{Expired: token.IsExpired(tok)}
	claims, err := token.Decode(tok)
	if err != nil {
		view.Error = err.Error()
		return writeJSON(out, view)
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		view.ExpiresAt = &exp
	}
	u := claims.User()
	view.User = &u
	return writeJSON(out, view)
}

// restore stores tok and opens a fresh session from it, the way a client
// restarting with that token would. Only that session's status is printed;
// app.Session() keeps the state it was opened with.
func restore(ctx context.Context, app *authsession.App, tok string, out io.Writer) error {
	if err := app.Storage().Set(ctx, storage.KeyToken, tok); err != nil {
		return err
	}
	s, err := session.Open(ctx, app.Storage(), session.WithLogger(app.Logger()), session.WithMetrics(app.Metrics()))
	if err != nil {
		return err
	}
	return printStatus(out, s)
}

func cmdSetToken(ctx context.Context, app *authsession.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: set-token <token>", errUsage)
	}
	return restore(ctx, app, strings.TrimSpace(args[0]), out)
}

func cmdLogin(ctx context.Context, app *authsession.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: login <user-json>", errUsage)
	}
	raw, err := identity.ParseRawUser([]byte(args[0]))
	if err != nil {
		return err
	}
	if err := app.Session().Login(ctx, raw); err != nil {
		return err
	}
	return printStatus(out, app.Session())
}

func cmdLogout(ctx context.Context, app *authsession.App, _ []string, out io.Writer) error {
	if err := app.Session().Logout(ctx); err != nil {
		return err
	}
	return printStatus(out, app.Session())
}

func cmdHasRole(_ context.Context, app *authsession.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: has-role <role>...", errUsage)
	}
	roles := make([]identity.Role, 0, len(args))
	for _, a := range args {
		roles = append(roles, identity.Role(a))
	}
	ok := app.Session().HasAnyRole(roles...)
	fmt.Fprintln(out, ok)
	if !ok {
		return exitError(1)
	}
	return nil
}

func cmdMint(ctx context.Context, app *authsession.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	var (
		id     = fs.String("id", "1", "user id")
		role   = fs.String("role", string(identity.RoleParent), "role claim")
		email  = fs.String("email", "", "email claim")
		name   = fs.String("name", "", "name claim")
		stripe = fs.String("stripe-account", "", "stripe_account_id claim")
		legacy = fs.Bool("legacy", false, "write the role under rol")
		store  = fs.Bool("store", false, "store the token and restore the session from it")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	signer, err := app.Signer()
	if err != nil {
		return err
	}
	tok, err := signer.Mint(token.Subject{
		ID:                 *id,
		Role:               identity.Role(*role),
		Email:              *email,
		Name:               *name,
		StripeAccountID:    *stripe,
		UseLegacyRoleClaim: *legacy,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok)
	if *store {
		return restore(ctx, app, tok, out)
	}
	return nil
}

func cmdRegister(ctx context.Context, app *authsession.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var (
		name     = fs.String("name", "", "client name")
		email    = fs.String("email", "", "admin email")
		password = fs.String("password", "", "admin password")
		tier     = fs.String("tier", string(register.TierBasico), "Basico, oro, platino or custom")
		limit    = fs.Int("max-students", 0, "student limit; defaults from the tier")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := app.Register().Register(ctx, register.Form{
		Name:        *name,
		Email:       *email,
		Password:    *password,
		Tier:        register.Tier(*tier),
		MaxStudents: *limit,
	})
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{
		"next":           res.Next,
		"onboarding_url": res.OnboardingURL,
		"logged_in":      res.LoggedIn,
	})
}

func cmdPayment(ctx context.Context, app *authsession.App, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: payment <success|cancel> [query]", errUsage)
	}
	var kind payment.Kind
	switch args[0] {
	case "success":
		kind = payment.KindSuccess
	case "cancel":
		kind = payment.KindCancel
	default:
		return fmt.Errorf("%w: unknown payment result %q", errUsage, args[0])
	}

	query := url.Values{}
	if len(args) == 2 {
		q, err := url.ParseQuery(strings.TrimPrefix(args[1], "?"))
		if err != nil {
			return err
		}
		query = q
	}

	outcome, err := app.Payment().Resolve(ctx, kind, query)
	if err != nil {
		return err
	}
	view := map[string]any{
		"kind":     kind.String(),
		"redirect": outcome.Redirect,
	}
	if !outcome.Redirected() {
		view["student_name"] = outcome.StudentName
		view["amount"] = outcome.Amount
		view["settle_delay"] = outcome.SettleDelay.String()
		view["back"] = app.Payment().DashboardPath(ctx)
	}
	return writeJSON(out, view)
}

func cmdMetrics(_ context.Context, app *authsession.App, _ []string, out io.Writer) error {
	_, err := io.WriteString(out, prometheus.New(app.Metrics()).Render())
	return err
}
