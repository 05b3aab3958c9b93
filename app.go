package authsession

import (
	"errors"
	"net/http"
	"time"

	"github.com/tappin/authsession/metrics"
	"github.com/tappin/authsession/metrics/export/otel"
	"github.com/tappin/authsession/metrics/export/prometheus"
	"github.com/tappin/authsession/payment"
	"github.com/tappin/authsession/register"
	"github.com/tappin/authsession/session"
	"github.com/tappin/authsession/storage"
	"github.com/tappin/authsession/token"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// App holds the wired session components of one client.
type App struct {
	config   Config
	logger   *zap.Logger
	storage  storage.Storage
	metrics  *metrics.Metrics
	session  *session.Store
	register *register.Flow
	payment  *payment.Resolver
	closers  []func() error
}

func (a *App) Config() Config { return cloneConfig(a.config) }
func (a *App) Logger() *zap.Logger { return a.logger }
func (a *App) Storage() storage.Storage { return a.storage }
func (a *App) Metrics() *metrics.Metrics { return a.metrics }
func (a *App) Session() *session.Store { return a.session }
func (a *App) Register() *register.Flow { return a.register }
func (a *App) Payment() *payment.Resolver { return a.payment }

// Signer returns a token signer from Config.Token.
func (a *App) Signer() (*token.Signer, error) {
	return token.NewSigner(token.SignerConfig{
		TTL:           a.config.Token.TTL,
		SigningMethod: token.SigningMethod(a.config.Token.SigningMethod),
		PrivateKey:    cloneBytes(a.config.Token.PrivateKey),
		Issuer:        a.config.Token.Issuer,
	})
}

// MetricsHandler serves the counters in Prometheus text format.
func (a *App) MetricsHandler() http.Handler {
	return prometheus.New(a.metrics).Handler()
}

// ExportOTel registers the counters with meter. Close the exporter to stop.
func (a *App) ExportOTel(meter metric.Meter) (*otel.Exporter, error) {
	return otel.New(meter, a.metrics)
}

// Close releases connections opened by the Builder and flushes the logger.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
