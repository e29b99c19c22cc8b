package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для любого невалидного токена:
// битая структура, чужая подпись, истекший срок
var ErrInvalidToken = errors.New("invalid token")

// ErrInvalidPayload возвращается, когда подпись верна, но в claims нет userId
var ErrInvalidPayload = errors.New("invalid token payload")

// Manager выпускает и проверяет JWT-токены.
// Секрет подписи задается один раз при создании и дальше не меняется,
// в логи и ответы он попадать не должен
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager создает менеджер токенов с заданным секретом и временем жизни токена
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// NewToken генерирует JWT-токен для указанного пользователя с заданным временем жизни
func (m *Manager) NewToken(ctx context.Context, userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": fmt.Sprintf("%d", userID),
		"iat":    now.Unix(),
		"exp":    now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken проверяет подпись и срок жизни токена и возвращает userId из claims.
// Любой сбой проверки схлопывается в ErrInvalidToken, детали наружу не уходят
func (m *Manager) ParseToken(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Проверка алгоритма: принимаем только HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	sub, ok := claims["userId"].(string)
	if !ok {
		return 0, ErrInvalidPayload
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidPayload
	}
	return userID, nil
}
