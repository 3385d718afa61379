// Package bff собирает зависимости BFF и запускает HTTP-сервер.
package bff

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/grace"
	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/spa"
	"github.com/magabrotheeeer/nameparse-bff/internal/jobs"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
	"github.com/magabrotheeeer/nameparse-bff/internal/pending"
	"github.com/magabrotheeeer/nameparse-bff/internal/services/account"
	"github.com/magabrotheeeer/nameparse-bff/internal/services/processing"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
	"github.com/magabrotheeeer/nameparse-bff/internal/statestore"
)

// ShutdownTimeout — сколько ждать завершения активных запросов при остановке.
const ShutdownTimeout = 15 * time.Second

type store interface {
	statestore.Store
	Ping(ctx context.Context) error
}

// Deps — всё, что нужно маршрутам.
type Deps struct {
	Config     *config.Config
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Store      store
	Sessions   *session.Manager
	Account    *account.Service
	Processing *processing.Service
	SPA        *spa.Handler
}

// WatcherConfig параметры потока решений для раздела.
func (d *Deps) WatcherConfig() guard.WatcherConfig {
	return guard.WatcherConfig{
		RequireSubscription: true,
		RecheckInterval:     d.Config.RecheckInterval,
		PendingDelay:        d.Config.PendingDelay,
	}
}

type App struct {
	server *http.Server
	logger *slog.Logger
	redis  *statestore.RedisStore
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var (
		st    store
		redis *statestore.RedisStore
	)
	if cfg.AddressRedis != "" {
		var err error
		redis, err = statestore.NewRedis(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		st = redis
	} else {
		logger.Warn("redis address is empty, state is kept in memory")
		st = statestore.NewMemory(time.Now)
	}

	deps := NewDeps(cfg, logger, st)

	router := chi.NewRouter()
	RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		redis:  redis,
	}, nil
}

// NewDeps связывает сервисы поверх готового хранилища.
func NewDeps(cfg *config.Config, logger *slog.Logger, st store) *Deps {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	client := backend.New(cfg.Backend, logger, m)
	sessions := session.NewManager(cfg.Session, logger)

	accountService := account.New(client, st, logger, sessions.SessionTTL(),
		grace.WithDuration(cfg.GraceDuration),
		grace.WithMetrics(m),
	).WithPendingOptions(pending.WithTTL(cfg.PendingTTL))
	processingService := processing.New(client, accountService, logger,
		jobs.WithInterval(cfg.PollInterval),
		jobs.WithMetrics(m),
	)

	return &Deps{
		Config:     cfg,
		Logger:     logger,
		Registry:   reg,
		Metrics:    m,
		Store:      st,
		Sessions:   sessions,
		Account:    accountService,
		Processing: processingService,
		SPA:        spa.New(cfg.SPA, logger),
	}
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeStore()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeStore()
		return err
	}
}

func (a *App) closeStore() {
	if a.redis == nil {
		return
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("failed to close redis", slog.Any("err", err))
	}
}
