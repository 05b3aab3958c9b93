package authsession

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tappin/authsession/metrics"
	"github.com/tappin/authsession/payment"
	"github.com/tappin/authsession/register"
	"github.com/tappin/authsession/session"
	"github.com/tappin/authsession/storage"
	"github.com/tappin/authsession/token"
	"go.uber.org/zap"
)

// Builder assembles an [App]. A Builder builds once.
type Builder struct {
	config  Config
	redis   redis.UniversalClient
	storage storage.Storage
	api     register.API
	logger  *zap.Logger

	built bool
}

// New returns a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client for the redis backend. The App does not close it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStorage overrides the configured backend.
func (b *Builder) WithStorage(st storage.Storage) *Builder {
	b.storage = st
	return b
}

// WithAPI overrides the HTTP registration client.
func (b *Builder) WithAPI(api register.API) *Builder {
	b.api = api
	return b
}

// WithLogger overrides the logger built from Config.Log.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, opens storage and restores the session.
func (b *Builder) Build(ctx context.Context) (*App, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{config: cfg}

	logger := b.logger
	if logger == nil {
		l, err := NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger = l
	}
	app.logger = logger

	// -------- STORAGE --------
	st, err := b.openStorage(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.storage = st

	// -------- SESSION --------
	app.metrics = metrics.New(metrics.Config{Enabled: cfg.Metrics.Enabled})
	decoder := token.NewDecoder(token.WithLogger(logger.Named("token")))

	store, err := session.Open(ctx, st,
		session.WithLogger(logger.Named("session")),
		session.WithDecoder(decoder),
		session.WithMetrics(app.metrics),
	)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.session = store

	// -------- FLOWS --------
	api := b.api
	if api == nil {
		api = register.NewClient(cfg.API.BaseURL,
			register.WithHTTPClient(newHTTPClient(cfg.API.Timeout)),
			register.WithClientLogger(logger.Named("api")),
		)
	}
	app.register = register.NewFlow(api, store, st,
		register.WithLogger(logger.Named("register")),
		register.WithDecoder(decoder),
		register.WithMetrics(app.metrics),
	)
	app.payment = payment.NewResolver(st,
		payment.WithLogger(logger.Named("payment")),
		payment.WithMetrics(app.metrics),
	)

	b.built = true
	return app, nil
}

func (b *Builder) openStorage(ctx context.Context, cfg Config, app *App) (storage.Storage, error) {
	if b.storage != nil {
		return b.storage, nil
	}

	switch cfg.Storage.Backend {
	case BackendRedis:
		client := b.redis
		if client == nil {
			if cfg.Storage.RedisAddr == "" {
				return nil, ErrRedisRequired
			}
			owned := redis.NewClient(&redis.Options{
				Addr:     cfg.Storage.RedisAddr,
				Password: cfg.Storage.RedisPassword,
				DB:       cfg.Storage.RedisDB,
			})
			app.closers = append(app.closers, owned.Close)
			client = owned
		}
		rs := storage.NewRedis(client, cfg.Storage.RedisPrefix, cfg.Storage.Origin)
		if _, err := rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return rs, nil
	default:
		return storage.NewMemory(), nil
	}
}
