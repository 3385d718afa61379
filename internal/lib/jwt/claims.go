package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrWrongKind возвращается, если токен выпущен для другого назначения.
var ErrWrongKind = errors.New("token kind mismatch")

// CustomClaims описывает данные, хранящиеся в токене.
type CustomClaims struct {
	Kind                 string `json:"kind"` // session или device
	jwt.RegisteredClaims        // Subject хранит идентификатор
}

// GenerateToken создает токен для subject, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(subject, kind string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит токен, проверяет его подпись, срок и вид,
// возвращает CustomClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if j.kind != "" && claims.Kind != j.kind {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongKind)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: empty subject", op)
	}
	return claims, nil
}
