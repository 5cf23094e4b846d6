package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/config"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/form"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/session"
	redisstore "github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/session/redis"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/view"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/health"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/httpclient"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/tracing"
)

// App wires together all dependencies of the storerate client.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb            *redis.Client
	tracerShutdown func(context.Context) error

	sessions *session.Manager
	client   *api.Client
	router   *view.Router
	prompter *form.Prompter
	notifier view.Notifier
	health   *health.Registry
	out      io.Writer
}

// NewApp creates a new application instance, initializing all dependencies.
// Dialog answers and commands are read from in; screens are written to out.
func NewApp(cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize tracing.
	traceCfg := tracing.DefaultConfig("storerate")
	traceCfg.Environment = cfg.Environment
	traceCfg.Enabled = cfg.OTELEnabled
	traceCfg.OTLPEndpoint = cfg.OTELEndpoint
	traceCfg.SampleRate = cfg.OTELSampleRate
	tracerShutdown, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
		out:            out,
	}

	// Initialize session storage.
	storage, err := a.newStorage(ctx)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	// HTTP transport, optionally behind a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	base := httpclient.New(httpCfg)
	var (
		doer    httpclient.Doer = base
		breaker *httpclient.CircuitBreakerClient
	)
	if cfg.BreakerEnable {
		breaker = httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("storerate-api"), logger)
		doer = breaker
		logger.Info("circuit breaker enabled")
	}

	// Build the dependency graph. The manager is the client's token source
	// and the client is the manager's authenticator.
	a.sessions = session.NewManager(storage, nil, logger)
	a.client = api.NewClient(cfg.APIURL, doer, a.sessions, logger)
	a.sessions.SetAuthenticator(a.client)

	// Dependency checks for the status command.
	a.health = health.NewRegistry(5 * time.Second)
	a.health.Register("api", a.client.Ping)
	a.health.Register("session_storage", func(ctx context.Context) error {
		_, _, err := storage.Get(ctx, session.KeyToken)
		return err
	})
	if breaker != nil {
		a.health.Register("circuit_breaker", breaker.Check)
	}
	if a.rdb != nil {
		a.health.Register("redis", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		})
	}

	a.prompter = form.NewPrompter(in, out)
	a.notifier = view.NewWriterNotifier(out)
	a.router = view.NewRouter(a.client, a.notifier, a.prompter, logger)

	logger.Info("storerate initialized",
		slog.String("api_url", cfg.APIURL),
		slog.String("session_backend", cfg.SessionBackend),
		slog.String("profile", cfg.Profile),
	)
	return a, nil
}

func (a *App) newStorage(ctx context.Context) (session.Storage, error) {
	switch a.cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := redisstore.NewClient(ctx, a.cfg.RedisAddr(), a.cfg.RedisPassword, a.cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", a.cfg.RedisAddr()),
			slog.Int("db", a.cfg.RedisDB),
		)
		return redisstore.NewStorage(rdb, a.cfg.Profile, a.cfg.SessionTTL), nil
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil
	default:
		return session.NewFileStorage(a.cfg.SessionFile), nil
	}
}

// Run restores the session and drives the interactive shell. It blocks
// until the person quits, input ends or the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.sessions.Init(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- newShell(a).run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Debug("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Flush pending spans.
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.logger.Debug("application shutdown complete")
	return nil
}
