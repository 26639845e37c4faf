package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cms "github.com/flxbl-dev/kickass-cms-sub000"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/config"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/memory"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/redis"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/observability"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LockPrefix namespaces lock keys in Redis.
const LockPrefix = "cms:lock:"

// App is the wired set of services a command runs against.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	CMS      *cms.CMS
	Entities *registry.Registry
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Locker   ports.Locker
}

// BuildRegistry returns the default catalog extended with the fields
// declared in cfg.
func BuildRegistry(cfg config.Config) (*registry.Registry, error) {
	extra, err := cfg.Fields()
	if err != nil {
		return nil, err
	}
	reg := registry.Default()
	for entity, fields := range extra {
		if err := reg.ExtendEntity(entity, fields); err != nil {
			return nil, fmt.Errorf("extraFields: %w", err)
		}
	}
	return reg, nil
}

// NewApp wires logger, metrics, locker and services from cfg.
// A local locker is used unless a Redis address is configured.
func NewApp(cfg config.Config) (*App, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithFormat(cfg.LogFormat, level)

	entities, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	var locker ports.Locker = memory.NewLocker()
	if cfg.RedisAddr != "" {
		locker = redis.NewLockerFromAddr(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, LockPrefix)
	}

	hooks := metrics.Hooks()
	if level <= slog.LevelDebug {
		hooks = hooks.Merge(debugHooks(logger))
	}

	services, err := cms.New(cfg.BaseURL,
		cms.WithToken(cfg.Token),
		cms.WithTimeout(cfg.Timeout),
		cms.WithRegistry(entities),
		cms.WithLocker(locker),
		cms.WithLifecycleHooks(hooks),
		cms.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		CMS:      services,
		Entities: entities,
		Metrics:  metrics,
		Registry: reg,
		Locker:   locker,
	}, nil
}

// MetricsHandler exposes the app's collectors in the Prometheus format.
func (a *App) MetricsHandler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	return r
}

// ServeMetrics serves MetricsHandler on the configured address until ctx
// ends. It returns immediately when no address is configured.
func (a *App) ServeMetrics(ctx context.Context) error {
	if a.Config.MetricsAddr == "" {
		return nil
	}
	srv := &http.Server{Addr: a.Config.MetricsAddr, Handler: a.MetricsHandler(), ReadHeaderTimeout: 5 * time.Second}
	return serve(ctx, srv, a.Logger)
}

// serve runs srv until ctx ends, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "err", err)
		return srv.Close()
	}
	logger.Info("server stopped")
	return nil
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(_ context.Context, e *domain.RequestEvent) {
			logger.Debug("remote request", "method", e.Method, "route", e.Route, "status", e.Status, "duration", e.Duration)
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			logger.Debug("transition", "content_id", e.ContentID, "from", e.From, "to", e.To)
		},
	}
}
