// Package middlewarectx содержит HTTP middleware BFF: восстановление
// посетителя по cookie, защиту маршрутов SPA, проверку роли и
// ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// AccountKey — ключ guard.Account в контексте после RouteGuard.
const AccountKey Key = "account"

// ScopeResolver восстанавливает посетителя по cookie.
type ScopeResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (session.Scope, error)
}

// SessionMiddleware кладёт session.Scope посетителя в контекст запроса,
// при необходимости выдавая новые cookie.
func SessionMiddleware(resolver ScopeResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			scope, err := resolver.Resolve(w, r)
			if err != nil {
				log.Error("failed to resolve visitor session",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithScope(r.Context(), scope)))
		})
	}
}

// Scope достаёт посетителя из контекста. Без SessionMiddleware возвращает пустой Scope.
func Scope(ctx context.Context) session.Scope {
	scope, _ := session.FromContext(ctx)
	return scope
}
