// Package guard решает, что показать при переходе в защищённый раздел:
// содержимое, вход, страницу тарифов или экран активации аккаунта.
package guard

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

// Signal — вычисленный признак льготного доступа.
type Signal int

const (
	// SignalNone — льготного доступа нет.
	SignalNone Signal = iota
	// SignalPaymentGrace — открыто окно после оплаты.
	SignalPaymentGrace
	// SignalPendingRegistration — пользователь зарегистрировался и ушёл на оплату.
	SignalPendingRegistration
)

// Resolve сводит два источника в один признак. Окно после оплаты важнее.
func Resolve(graceActive, pendingRegistration bool) Signal {
	switch {
	case graceActive:
		return SignalPaymentGrace
	case pendingRegistration:
		return SignalPendingRegistration
	default:
		return SignalNone
	}
}

// Active сообщает, даёт ли признак льготный доступ.
func (s Signal) Active() bool {
	return s != SignalNone
}

func (s Signal) String() string {
	switch s {
	case SignalPaymentGrace:
		return "payment_grace"
	case SignalPendingRegistration:
		return "pending_registration"
	default:
		return "none"
	}
}

// Decision — результат проверки маршрута.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRender
	DecisionRedirectLogin
	DecisionRedirectUpgrade
	DecisionActivating
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectUpgrade:
		return "redirect_upgrade"
	case DecisionActivating:
		return "activating"
	default:
		return "unknown"
	}
}

// MarshalText позволяет отдавать решение в JSON строкой.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText разбирает решение из строкового вида.
func (d *Decision) UnmarshalText(text []byte) error {
	for c := DecisionLoading; c <= DecisionActivating; c++ {
		if c.String() == string(text) {
			*d = c
			return nil
		}
	}
	return fmt.Errorf("unknown decision %q", text)
}

// Account — состояние пользователя от внешнего источника аутентификации.
// User == nil означает, что сессии нет или её не удалось получить.
type Account struct {
	User                  *models.User
	HasActiveSubscription bool
}

// Input — все входные данные одной проверки.
type Input struct {
	Account
	AuthLoading         bool
	CheckingPending     bool
	Signal              Signal
	RequireSubscription bool
}

// Decide применяет правила по порядку и всегда возвращает одно и то же
// решение для одних и тех же входных данных.
func Decide(in Input) Decision {
	if in.AuthLoading || in.CheckingPending {
		return DecisionLoading
	}

	grace := in.Signal.Active()

	if in.User == nil {
		if !grace {
			return DecisionRedirectLogin
		}
		// вебхук ещё не создал пользователя
		return DecisionActivating
	}

	if in.RequireSubscription && in.User.Plan != models.PlanEnterprise &&
		!in.HasActiveSubscription && !grace {
		return DecisionRedirectUpgrade
	}

	return DecisionRender
}

// Sources — поставщики входных данных для одного посетителя.
type Sources interface {
	// Account получает пользователя. Ошибки должны превращаться в User == nil.
	Account(ctx context.Context) Account
	// GraceActive читает окно после оплаты.
	GraceActive(ctx context.Context) bool
	// PendingRegistration сообщает о действительной записи незавершённой регистрации.
	PendingRegistration(ctx context.Context) bool
}

// Evaluate выполняет разовую проверку, когда все данные уже доступны.
func Evaluate(ctx context.Context, src Sources, requireSubscription bool) (Decision, Input) {
	in := Input{
		Account:             src.Account(ctx),
		Signal:              Resolve(src.GraceActive(ctx), src.PendingRegistration(ctx)),
		RequireSubscription: requireSubscription,
	}
	return Decide(in), in
}
