// Package jwt реализует генерацию и проверку сессионных JWT токенов.
//
// Клиентское приложение получает токен у сервиса авторизации; поле sub
// содержит идентификатор пользователя авторизации, который связан с участником клуба.
// Maker проверяет подпись HS256 и срок действия, а также умеет выпускать
// токены для разработки и тестов.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя авторизации.
	GenerateToken(authUserID, role string) (string, error)
	// ParseToken проверяет токен и возвращает его claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	audience  string        // Ожидаемая аудитория; пустая строка отключает проверку.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// WithAudience возвращает копию MakerImpl, которая выпускает и требует указанную аудиторию.
func (j *MakerImpl) WithAudience(aud string) *MakerImpl {
	cp := *j
	cp.audience = aud
	return &cp
}
