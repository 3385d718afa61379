// Package session выдаёт и проверяет cookie, по которым BFF различает
// посетителей.
//
// Cookie сессии живёт до закрытия браузера (без Max-Age) и адресует
// короткоживущее пространство ключей. Cookie устройства долговременная и
// адресует пространство, которое переживает перезапуск браузера.
// Значения обеих cookie подписаны, поэтому подобрать чужой идентификатор нельзя.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/jwt"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
)

const (
	kindSession = "session"
	kindDevice  = "device"
)

// Scope — идентификаторы посетителя для текущего запроса.
type Scope struct {
	SessionID string
	DeviceID  string
}

type ctxKey struct{}

// WithScope кладёт Scope в контекст.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope)
}

// FromContext достаёт Scope из контекста.
func FromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(Scope)
	return scope, ok
}

// Manager выдаёт cookie посетителя и восстанавливает Scope по ним.
type Manager struct {
	cfg     config.Session
	session jwt.Maker
	device  jwt.Maker
	log     *slog.Logger
}

// NewManager создаёт Manager с подписью cookie ключом cfg.SecretKey.
func NewManager(cfg config.Session, log *slog.Logger) *Manager {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "np_session"
	}
	if cfg.DeviceCookie == "" {
		cfg.DeviceCookie = "np_device"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.DeviceTTL <= 0 {
		cfg.DeviceTTL = 365 * 24 * time.Hour
	}
	return &Manager{
		cfg:     cfg,
		session: jwt.NewJWTMaker(cfg.SecretKey, cfg.SessionTTL, kindSession),
		device:  jwt.NewJWTMaker(cfg.SecretKey, cfg.DeviceTTL, kindDevice),
		log:     log,
	}
}

// SessionTTL возвращает время жизни пространства сессии.
func (m *Manager) SessionTTL() time.Duration {
	return m.cfg.SessionTTL
}

// Resolve возвращает Scope запроса. Отсутствующие или поддельные cookie
// заменяются новыми идентификаторами, которые сразу записываются в ответ.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (Scope, error) {
	const op = "session.Resolve"

	sid, err := m.read(r, m.cfg.SessionCookie, m.session)
	if err != nil {
		sid, err = m.issue(w, m.cfg.SessionCookie, m.session, kindSession, 0)
		if err != nil {
			m.log.Error("failed to issue session cookie", sl.Op(op), sl.Err(err))
			return Scope{}, err
		}
	}

	did, err := m.read(r, m.cfg.DeviceCookie, m.device)
	if err != nil {
		did, err = m.issue(w, m.cfg.DeviceCookie, m.device, kindDevice, int(m.cfg.DeviceTTL.Seconds()))
		if err != nil {
			m.log.Error("failed to issue device cookie", sl.Op(op), sl.Err(err))
			return Scope{}, err
		}
	}

	return Scope{SessionID: sid, DeviceID: did}, nil
}

func (m *Manager) read(r *http.Request, name string, maker jwt.Maker) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	claims, err := maker.ParseToken(c.Value)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m *Manager) issue(w http.ResponseWriter, name string, maker jwt.Maker, kind string, maxAge int) (string, error) {
	id := uuid.NewString()
	token, err := maker.GenerateToken(id, kind)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// Forget удаляет cookie сессии. Cookie устройства остаётся.
func (m *Manager) Forget(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
