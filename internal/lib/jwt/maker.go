// Package jwt реализует выпуск и проверку подписанных токенов,
// которыми BFF помечает cookie сессии браузера и устройства.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга токенов.
type Maker interface {
	// GenerateToken выпускает токен для идентификатора subject с видом kind.
	GenerateToken(subject, kind string) (string, error)
	// ParseToken проверяет подпись, срок и вид токена.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	kind      string        // Ожидаемый вид токена, пустая строка — любой.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
// Непустой kind заставляет ParseToken отвергать токены другого вида,
// чтобы cookie устройства нельзя было подставить вместо cookie сессии.
func NewJWTMaker(secretKey string, ttl time.Duration, kind string) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		kind:      kind,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
