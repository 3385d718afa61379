// Package apierr переводит ошибки сервисов в HTTP-ответы.
package apierr

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/services/account"
)

// Status возвращает HTTP-код и сообщение для клиента.
func Status(err error) (int, string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, account.ErrNoSession), errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &apiErr):
		return apiErr.StatusCode, apiErr.Message
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream timeout"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Render пишет ответ с ошибкой.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := Status(err)
	render.Status(r, code)
	render.JSON(w, r, response.Error(msg))
}
