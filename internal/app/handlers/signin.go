package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shiva182004/Paytm/internal/service"
)

// SigninRequest представляет структуру запроса входа с тегами валидации
type SigninRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SigninHandler обрабатывает запрос POST /api/v1/user/signin
func SigninHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SigninHandler"
		logger := log.With(slog.String("op", op))

		var req SigninRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Message: "Invalid input",
				Details: validationDetails(err),
			})
			return
		}

		token, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			// Ответ одинаковый и для неизвестного логина, и для неверного пароля
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeJSON(w, http.StatusUnauthorized, MessageResponse{Message: "Invalid username or password"})
				return
			}
			logger.Error("signin failed", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal server error"})
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			Message: "Login successful",
			Token:   token,
		})
	}
}
