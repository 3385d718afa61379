// Package pending хранит запись о регистрации, после которой пользователь
// ушёл на страницу оплаты и ещё не вернулся.
//
// Запись состоит из двух ключей долговременного пространства: снимка
// пользователя (вместе с выданными токенами) и флага завершения регистрации.
// Запись действительна только при наличии обоих и только в течение TTL
// с момента сохранения: брошенная оплата не должна держать посетителя
// на странице ожидания. Просроченная запись удаляется при чтении.
package pending

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/statestore"
)

const (
	// UserKey — ключ снимка пользователя.
	UserKey = "pending_user"
	// FlagKey — ключ флага завершения регистрации.
	FlagKey = "registration_complete"
)

// DefaultTTL — срок жизни записи по умолчанию.
const DefaultTTL = 24 * time.Hour

// Registration — пользователь и токены, полученные при регистрации до оплаты.
// SavedAt заполняет Save, в миллисекундах Unix.
type Registration struct {
	User    models.User   `json:"user"`
	Tokens  models.Tokens `json:"tokens"`
	SavedAt int64         `json:"savedAt"`
}

// IsExpired сообщает, вышла ли запись за ttl к моменту now.
// Запись без времени сохранения считается просроченной.
func IsExpired(reg Registration, now time.Time, ttl time.Duration) bool {
	if reg.SavedAt <= 0 {
		return true
	}
	return now.Sub(time.UnixMilli(reg.SavedAt)) >= ttl
}

// Store читает и пишет запись о незавершённой регистрации.
type Store struct {
	store statestore.Store
	log   *slog.Logger
	now   func() time.Time
	ttl   time.Duration
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTTL задаёт срок жизни записи.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New создаёт Store поверх долговременного пространства ключей.
func New(store statestore.Store, log *slog.Logger, opts ...Option) *Store {
	s := &Store{store: store, log: log, now: time.Now, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL возвращает срок жизни записи.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Save сохраняет запись. Флаг пишется последним, чтобы частичная запись не считалась действительной.
func (s *Store) Save(ctx context.Context, reg Registration) error {
	const op = "pending.Save"
	reg.SavedAt = s.now().UnixMilli()
	// ключи живут дольше записи, чтобы истечение замечало чтение
	if err := s.store.Set(ctx, UserKey, reg, 2*s.ttl); err != nil {
		s.log.Error("failed to save pending user", sl.Op(op), sl.Err(err))
		return err
	}
	if err := s.store.Set(ctx, FlagKey, true, 2*s.ttl); err != nil {
		s.log.Error("failed to save registration flag", sl.Op(op), sl.Err(err))
		return err
	}
	return nil
}

// Load возвращает запись, если присутствуют и снимок, и флаг, а TTL не истёк.
// Повреждённые или неполные данные означают отсутствие записи, просроченная
// запись удаляется.
func (s *Store) Load(ctx context.Context) (Registration, bool) {
	const op = "pending.Load"

	var flag bool
	found, err := s.store.Get(ctx, FlagKey, &flag)
	if err != nil {
		s.warnRead(op, err)
		return Registration{}, false
	}
	if !found || !flag {
		return Registration{}, false
	}

	var reg Registration
	found, err = s.store.Get(ctx, UserKey, &reg)
	if err != nil {
		s.warnRead(op, err)
		return Registration{}, false
	}
	if !found {
		return Registration{}, false
	}
	if IsExpired(reg, s.now(), s.ttl) {
		s.log.Info("pending registration expired", sl.Op(op), slog.Int64("saved_at", reg.SavedAt))
		_ = s.Clear(ctx)
		return Registration{}, false
	}
	return reg, true
}

// Exists сообщает, есть ли действительная запись.
func (s *Store) Exists(ctx context.Context) bool {
	_, ok := s.Load(ctx)
	return ok
}

// Clear удаляет оба ключа.
func (s *Store) Clear(ctx context.Context) error {
	const op = "pending.Clear"
	err := errors.Join(
		s.store.Invalidate(ctx, UserKey),
		s.store.Invalidate(ctx, FlagKey),
	)
	if err != nil {
		s.log.Error("failed to clear pending registration", sl.Op(op), sl.Err(err))
	}
	return err
}

func (s *Store) warnRead(op string, err error) {
	if errors.Is(err, statestore.ErrCorrupted) {
		s.log.Warn("pending registration is corrupted, ignoring", sl.Op(op), sl.Err(err))
		return
	}
	s.log.Warn("failed to read pending registration", sl.Op(op), sl.Err(err))
}
