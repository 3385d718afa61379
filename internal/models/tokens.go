package models

// Tokens — пара токенов backend, выданная при входе или регистрации.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid сообщает, что access-токен присутствует.
func (t Tokens) Valid() bool {
	return t.AccessToken != ""
}

// AuthResult — ответ backend на вход или регистрацию.
// При непустом CheckoutURL сессию устанавливать нельзя: пользователь
// сначала уходит на страницу оплаты.
type AuthResult struct {
	Tokens
	User        *User  `json:"user"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// Credentials — данные для входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration — данные для регистрации. Plan задаёт тариф, на который
// backend сразу оформит оплату.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=200"`
	Plan     Plan   `json:"plan,omitempty" validate:"omitempty,oneof=FREE STANDARD ENTERPRISE"`
}
