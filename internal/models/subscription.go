package models

import "time"

// Subscription — состояние подписки, рассчитанное backend по вебхукам платёжного провайдера.
type Subscription struct {
	Status            string     `json:"status"` // active, trialing, past_due, canceled, none
	Plan              Plan       `json:"plan"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

// Active сообщает, даёт ли подписка доступ к платным разделам.
func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	return s.Status == "active" || s.Status == "trialing"
}

// CheckoutRequest — запрос на создание сессии оплаты.
type CheckoutRequest struct {
	Plan     Plan   `json:"plan" validate:"required,oneof=STANDARD ENTERPRISE"`
	Interval string `json:"interval" validate:"omitempty,oneof=month year"`
}
