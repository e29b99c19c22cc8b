package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	security "github.com/Shiva182004/Paytm/internal/jwt-new"
)

type contextKey string

const UserIDKey contextKey = "userID"

// NewJWTMiddleware создает middleware для проверки JWT,
// менеджер токенов с секретом передается снаружи
func NewJWTMiddleware(tokens *security.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				reject(w, "Missing or invalid Authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			// Парсинг и проверка токена
			userID, err := tokens.ParseToken(tokenStr)
			if err != nil {
				if errors.Is(err, security.ErrInvalidPayload) {
					reject(w, "Invalid token payload")
					return
				}
				reject(w, "Invalid or expired token")
				return
			}

			// Устанавливаем userID в контекст запроса
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// reject отправляет 403 с JSON-сообщением, без внутренних деталей
func reject(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
