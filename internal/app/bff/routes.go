package bff

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// регистрирует swagger-описание для /docs
	_ "github.com/magabrotheeeer/nameparse-bff/docs"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/access/decision"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/access/stream"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/billing/status"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/billing/success"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/health"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/jobs/download"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/jobs/list"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/jobs/read"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/jobs/remove"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/handlers/jobs/watch"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d *Deps) {
	logger := d.Logger
	cfg := d.Config

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, d.Store).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(d.Sessions, logger))

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(cfg.RateLimit, logger))

			r.Post("/auth/login", login.New(logger, d.Account).ServeHTTP)
			r.Post("/auth/register", register.New(logger, d.Account).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger, d.Account, d.Sessions).ServeHTTP)
			r.Get("/auth/me", me.New(logger, d.Account).ServeHTTP)

			r.Get("/billing/status", status.New(logger, d.Account).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, d.Account).ServeHTTP)
			r.Post("/billing/success", success.New(logger, d.Account).ServeHTTP)

			r.Get("/access", decision.New(logger, d.Account, d.Metrics).ServeHTTP)
			r.Get("/access/stream", stream.New(logger, d.Account, d.WatcherConfig(), d.Metrics).ServeHTTP)

			r.Get("/jobs", list.New(logger, d.Processing).ServeHTTP)
			// watch регистрируется до {id}
			r.Get("/jobs/watch", watch.New(logger, d.Processing).ServeHTTP)
			r.Get("/jobs/{id}", read.New(logger, d.Processing).ServeHTTP)
			r.Delete("/jobs/{id}", remove.New(logger, d.Processing).ServeHTTP)
			r.Get("/jobs/{id}/download", download.New(logger, d.Processing).ServeHTTP)
		})

		// Защищённые страницы SPA
		protect := func(prefix string, requireSubscription bool, extra ...func(http.Handler) http.Handler) {
			guarded := r.With(middlewarectx.RouteGuard(d.Account, middlewarectx.GuardConfig{
				RequireSubscription: requireSubscription,
				LoginPath:           cfg.LoginPath,
				PricingPath:         cfg.PricingPath,
				Activating:          d.SPA.Page(cfg.ActivatingPage),
			}, logger, d.Metrics))
			if len(extra) > 0 {
				guarded = guarded.With(extra...)
			}
			guarded.Handle(prefix, d.SPA)
			guarded.Handle(prefix+"/*", d.SPA)
		}
		protect("/dashboard", true)
		protect("/jobs", true)
		protect("/billing", false)
		protect("/admin", false, middlewarectx.RequireAdmin(logger))

		r.Handle("/*", d.SPA)
	})
}
