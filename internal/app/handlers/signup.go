package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shiva182004/Paytm/internal/service"
)

// SignupRequest представляет структуру запроса регистрации с тегами валидации
type SignupRequest struct {
	Username  string `json:"username" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// SignupHandler обрабатывает запрос POST /api/v1/user/signup
func SignupHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignupHandler"
		logger := log.With(slog.String("op", op))

		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Message: "Invalid input",
				Details: validationDetails(err),
			})
			return
		}

		// Вызов бизнес-логики: создание пользователя и счета, выпуск токена
		token, err := authService.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName)
		if err != nil {
			if errors.Is(err, service.ErrUserExists) {
				writeJSON(w, http.StatusConflict, MessageResponse{Message: "Email already taken"})
				return
			}
			logger.Error("signup failed", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal server error"})
			return
		}

		writeJSON(w, http.StatusCreated, TokenResponse{
			Message: "User created successfully",
			Token:   token,
		})
	}
}
