// Package logout реализует HTTP-обработчик выхода: токены отзываются,
// окно после оплаты и запись о регистрации удаляются.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Service описывает операцию выхода.
type Service interface {
	Logout(ctx context.Context, scope session.Scope) error
}

// CookieJar сбрасывает cookie сессии.
type CookieJar interface {
	Forget(w http.ResponseWriter)
}

type Handler struct {
	log     *slog.Logger
	service Service
	cookies CookieJar
}

func New(log *slog.Logger, service Service, cookies CookieJar) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.Logout(r.Context(), middlewarectx.Scope(r.Context())); err != nil {
		log.Error("failed to clear visitor state", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not log out"))
		return
	}
	if h.cookies != nil {
		h.cookies.Forget(w)
	}

	log.Info("user logged out")
	render.JSON(w, r, response.OK())
}
