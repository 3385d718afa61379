package backend

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

// Me возвращает текущего пользователя.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "auth.me", http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login обменивает учётные данные на токены.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", "", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register регистрирует пользователя. Ответ может содержать CheckoutURL.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", "", reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout отзывает refresh-токен.
func (c *Client) Logout(ctx context.Context, tokens models.Tokens) error {
	body := map[string]string{"refresh_token": tokens.RefreshToken}
	return c.do(ctx, "auth.logout", http.MethodPost, "/auth/logout", tokens.AccessToken, body, nil)
}

// Refresh выпускает новую пару токенов.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	var tokens models.Tokens
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, "auth.refresh", http.MethodPost, "/auth/refresh", "", body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}
