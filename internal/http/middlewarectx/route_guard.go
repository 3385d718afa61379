package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// SourcesProvider выдаёт источники проверки доступа для посетителя.
type SourcesProvider interface {
	Sources(scope session.Scope) guard.Sources
}

// GuardConfig настраивает RouteGuard.
type GuardConfig struct {
	RequireSubscription bool
	LoginPath           string
	PricingPath         string
	// Activating отдаёт страницу ожидания активации. Если nil, отвечает 202 с JSON.
	Activating http.Handler
}

// RouteGuard пропускает запрос только при решении Render. Остальные решения
// превращаются в переход на вход (с next на исходный адрес), на страницу
// тарифов или в страницу ожидания активации.
func RouteGuard(provider SourcesProvider, cfg GuardConfig, log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RouteGuard"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			decision, in := guard.Evaluate(r.Context(), provider.Sources(Scope(r.Context())), cfg.RequireSubscription)
			m.GuardDecision(decision.String())
			log.Debug("route guard decision",
				slog.String("path", r.URL.Path),
				slog.String("decision", decision.String()),
				slog.String("signal", in.Signal.String()),
			)

			switch decision {
			case guard.DecisionRender:
				ctx := context.WithValue(r.Context(), AccountKey, in.Account)
				next.ServeHTTP(w, r.WithContext(ctx))
			case guard.DecisionRedirectLogin:
				target := cfg.LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
			case guard.DecisionRedirectUpgrade:
				http.Redirect(w, r, cfg.PricingPath, http.StatusFound)
			default:
				w.Header().Set("Cache-Control", "no-store")
				if cfg.Activating != nil {
					cfg.Activating.ServeHTTP(w, r)
					return
				}
				render.Status(r, http.StatusAccepted)
				render.JSON(w, r, response.StatusOKWithData(map[string]string{
					"decision": decision.String(),
				}))
			}
		})
	}
}

// Account возвращает состояние пользователя, сохранённое RouteGuard.
func Account(ctx context.Context) (guard.Account, bool) {
	acc, ok := ctx.Value(AccountKey).(guard.Account)
	return acc, ok
}
