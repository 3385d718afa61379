package backend

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

// SubscriptionStatus возвращает состояние подписки. Подписка меняется
// асинхронно по вебхуку, поэтому сразу после оплаты может быть ещё старой.
func (c *Client) SubscriptionStatus(ctx context.Context, token string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := c.do(ctx, "billing.status", http.MethodGet, "/billing/subscription", token, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateCheckoutSession создаёт сессию оплаты и возвращает адрес страницы провайдера.
func (c *Client) CreateCheckoutSession(ctx context.Context, token string, req models.CheckoutRequest) (string, error) {
	var res struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := c.do(ctx, "billing.checkout", http.MethodPost, "/billing/checkout-session", token, req, &res); err != nil {
		return "", err
	}
	return res.CheckoutURL, nil
}
