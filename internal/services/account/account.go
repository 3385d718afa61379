// Package account связывает клиента backend с состоянием посетителя:
// токенами, окном после оплаты и записью о незавершённой регистрации.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/grace"
	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/pending"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
	"github.com/magabrotheeeer/nameparse-bff/internal/statestore"
)

// TokensKey — ключ токенов backend в долговременном пространстве.
const TokensKey = "auth_tokens"

// ErrNoSession возвращается, если у посетителя нет токенов.
var ErrNoSession = errors.New("no session")

// Backend описывает вызовы внешнего API, нужные сервису.
type Backend interface {
	Me(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
	Logout(ctx context.Context, tokens models.Tokens) error
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
	SubscriptionStatus(ctx context.Context, token string) (*models.Subscription, error)
	CreateCheckoutSession(ctx context.Context, token string, req models.CheckoutRequest) (string, error)
}

// RegisterResult — итог регистрации. При непустом CheckoutURL сессия не
// установлена и клиент должен перейти на страницу оплаты.
type RegisterResult struct {
	User        *models.User
	CheckoutURL string
}

// GraceState — окно после оплаты для отображения.
type GraceState struct {
	Active    bool
	Remaining time.Duration
}

// Service — операции над учётной записью посетителя.
type Service struct {
	backend     Backend
	store       statestore.Store
	log         *slog.Logger
	sessionTTL  time.Duration
	gateOpts    []grace.Option
	pendingOpts []pending.Option
}

// New создаёт Service. sessionTTL задаёт срок жизни сессионного пространства.
func New(b Backend, store statestore.Store, log *slog.Logger, sessionTTL time.Duration, gateOpts ...grace.Option) *Service {
	return &Service{
		backend:    b,
		store:      store,
		log:        log,
		sessionTTL: sessionTTL,
		gateOpts:   gateOpts,
	}
}

// WithPendingOptions задаёт настройки записи о незавершённой регистрации.
func (s *Service) WithPendingOptions(opts ...pending.Option) *Service {
	s.pendingOpts = append(s.pendingOpts, opts...)
	return s
}

// Gate возвращает окно после оплаты для сессии посетителя.
func (s *Service) Gate(scope session.Scope) *grace.Gate {
	ns := statestore.SessionNamespace(s.store, scope.SessionID, s.sessionTTL)
	return grace.New(ns, s.log, s.gateOpts...)
}

// Pending возвращает запись о незавершённой регистрации для устройства посетителя.
func (s *Service) Pending(scope session.Scope) *pending.Store {
	return pending.New(s.device(scope), s.log, s.pendingOpts...)
}

func (s *Service) device(scope session.Scope) *statestore.Namespace {
	return statestore.DeviceNamespace(s.store, scope.DeviceID)
}

// Tokens возвращает сохранённые токены посетителя.
func (s *Service) Tokens(ctx context.Context, scope session.Scope) (models.Tokens, bool) {
	const op = "account.Tokens"
	var tokens models.Tokens
	found, err := s.device(scope).Get(ctx, TokensKey, &tokens)
	if err != nil {
		s.log.Warn("failed to read tokens", sl.Op(op), sl.Err(err))
		return models.Tokens{}, false
	}
	return tokens, found && tokens.Valid()
}

// AccessToken возвращает access-токен или пустую строку.
func (s *Service) AccessToken(ctx context.Context, scope session.Scope) string {
	tokens, _ := s.Tokens(ctx, scope)
	return tokens.AccessToken
}

func (s *Service) saveTokens(ctx context.Context, scope session.Scope, tokens models.Tokens) error {
	return s.device(scope).Set(ctx, TokensKey, tokens, 0)
}

// CurrentUser возвращает пользователя по сохранённым токенам. Просроченный
// access-токен один раз обновляется через refresh-токен.
func (s *Service) CurrentUser(ctx context.Context, scope session.Scope) (*models.User, error) {
	const op = "account.CurrentUser"

	tokens, ok := s.Tokens(ctx, scope)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	user, err := s.backend.Me(ctx, tokens.AccessToken)
	if errors.Is(err, backend.ErrUnauthorized) && tokens.RefreshToken != "" {
		var fresh *models.Tokens
		fresh, err = s.backend.Refresh(ctx, tokens.RefreshToken)
		if err != nil {
			s.dropTokens(ctx, scope)
			return nil, fmt.Errorf("%s: refresh: %w", op, err)
		}
		if err = s.saveTokens(ctx, scope, *fresh); err != nil {
			s.log.Warn("failed to save refreshed tokens", sl.Op(op), sl.Err(err))
		}
		user, err = s.backend.Me(ctx, fresh.AccessToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *Service) dropTokens(ctx context.Context, scope session.Scope) {
	if err := s.device(scope).Invalidate(ctx, TokensKey); err != nil {
		s.log.Warn("failed to drop tokens", sl.Op("account.dropTokens"), sl.Err(err))
	}
}

// Account собирает состояние пользователя для защиты маршрутов.
// Любая ошибка даёт Account без пользователя. Подтверждённый платный
// тариф закрывает окно после оплаты.
func (s *Service) Account(ctx context.Context, scope session.Scope) guard.Account {
	const op = "account.Account"
	log := s.log.With(sl.Op(op))

	user, err := s.CurrentUser(ctx, scope)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			log.Warn("failed to fetch current user", sl.Err(err))
		}
		return guard.Account{}
	}

	acc := guard.Account{User: user}
	if token := s.AccessToken(ctx, scope); token != "" {
		sub, err := s.backend.SubscriptionStatus(ctx, token)
		if err != nil {
			log.Warn("failed to fetch subscription status", sl.Err(err))
		}
		acc.HasActiveSubscription = sub.Active()
	}

	if user.Plan.Paid() {
		// Clear не падает без окна, поэтому проверять IsActive не нужно
		_ = s.Gate(scope).Clear(ctx)
	}
	return acc
}

// Sources возвращает источники данных защиты маршрутов для посетителя.
func (s *Service) Sources(scope session.Scope) guard.Sources {
	return &sources{svc: s, scope: scope}
}

type sources struct {
	svc   *Service
	scope session.Scope
}

func (src *sources) Account(ctx context.Context) guard.Account {
	return src.svc.Account(ctx, src.scope)
}

func (src *sources) GraceActive(ctx context.Context) bool {
	return src.svc.Gate(src.scope).IsActive(ctx)
}

func (src *sources) PendingRegistration(ctx context.Context) bool {
	return src.svc.Pending(src.scope).Exists(ctx)
}

// Login выполняет вход и сохраняет токены. Старая запись о регистрации
// больше не нужна и удаляется.
func (s *Service) Login(ctx context.Context, scope session.Scope, creds models.Credentials) (*models.User, error) {
	const op = "account.Login"

	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.saveTokens(ctx, scope, res.Tokens); err != nil {
		return nil, fmt.Errorf("%s: save tokens: %w", op, err)
	}
	_ = s.Pending(scope).Clear(ctx)
	return res.User, nil
}

// Register регистрирует пользователя. Если backend вернул адрес оплаты,
// сессия не устанавливается: пользователь и токены сохраняются в записи
// о незавершённой регистрации до возвращения со страницы оплаты.
func (s *Service) Register(ctx context.Context, scope session.Scope, reg models.Registration) (*RegisterResult, error) {
	const op = "account.Register"

	res, err := s.backend.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res.CheckoutURL != "" {
		record := pending.Registration{Tokens: res.Tokens}
		if res.User != nil {
			record.User = *res.User
		}
		if err = s.Pending(scope).Save(ctx, record); err != nil {
			return nil, fmt.Errorf("%s: save pending registration: %w", op, err)
		}
		s.log.Info("registration awaits payment", sl.Op(op))
		return &RegisterResult{User: res.User, CheckoutURL: res.CheckoutURL}, nil
	}

	if err = s.saveTokens(ctx, scope, res.Tokens); err != nil {
		return nil, fmt.Errorf("%s: save tokens: %w", op, err)
	}
	return &RegisterResult{User: res.User}, nil
}

// Logout отзывает токены на backend (без гарантии) и очищает всё
// состояние посетителя.
func (s *Service) Logout(ctx context.Context, scope session.Scope) error {
	const op = "account.Logout"

	if tokens, ok := s.Tokens(ctx, scope); ok {
		if err := s.backend.Logout(ctx, tokens); err != nil {
			s.log.Warn("backend logout failed", sl.Op(op), sl.Err(err))
		}
	}

	err := errors.Join(
		s.Gate(scope).Clear(ctx),
		s.Pending(scope).Clear(ctx),
		s.device(scope).Invalidate(ctx, TokensKey),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CompletePayment обрабатывает возврат со страницы оплаты. Окно открывается
// первым, до любых сетевых вызовов. Затем, если регистрация ждала оплаты,
// её токены становятся сессией.
func (s *Service) CompletePayment(ctx context.Context, scope session.Scope) (*models.User, error) {
	const op = "account.CompletePayment"
	log := s.log.With(sl.Op(op))

	if err := s.Gate(scope).Start(ctx); err != nil {
		// без окна пользователь дождётся вебхука и обновит страницу
		log.Warn("grace period not started", sl.Err(err))
	}

	store := s.Pending(scope)
	reg, ok := store.Load(ctx)
	if ok && reg.Tokens.Valid() {
		if err := s.saveTokens(ctx, scope, reg.Tokens); err != nil {
			return nil, fmt.Errorf("%s: save tokens: %w", op, err)
		}
	}

	user, err := s.CurrentUser(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok {
		// запись нужна только до установления сессии
		_ = store.Clear(ctx)
	}
	return user, nil
}

// SubscriptionStatus возвращает подписку посетителя.
func (s *Service) SubscriptionStatus(ctx context.Context, scope session.Scope) (*models.Subscription, error) {
	const op = "account.SubscriptionStatus"
	token := s.AccessToken(ctx, scope)
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	sub, err := s.backend.SubscriptionStatus(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CreateCheckout создаёт сессию оплаты и возвращает адрес страницы провайдера.
func (s *Service) CreateCheckout(ctx context.Context, scope session.Scope, req models.CheckoutRequest) (string, error) {
	const op = "account.CreateCheckout"
	token := s.AccessToken(ctx, scope)
	if token == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	url, err := s.backend.CreateCheckoutSession(ctx, token, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// GraceState возвращает состояние окна после оплаты.
func (s *Service) GraceState(ctx context.Context, scope session.Scope) GraceState {
	gate := s.Gate(scope)
	if !gate.IsActive(ctx) {
		return GraceState{}
	}
	return GraceState{Active: true, Remaining: gate.Remaining(ctx)}
}
