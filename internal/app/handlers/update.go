package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shiva182004/Paytm/internal/jwt-new/jwtmiddleware"
	"github.com/Shiva182004/Paytm/internal/service"
)

// UpdateRequest — частичное обновление профиля, все поля опциональны
type UpdateRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=1"`
}

// UpdateHandler обрабатывает запрос PUT /api/v1/user/ (защищен JWT middleware)
func UpdateHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateHandler"
		logger := log.With(slog.String("op", op))

		// Извлекаем userID из контекста (установленный JWT middleware)
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeJSON(w, http.StatusForbidden, MessageResponse{Message: "Invalid token payload"})
			return
		}

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Message: "Validation failed",
				Details: validationDetails(err),
			})
			return
		}

		upd := service.ProfileUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Password:  req.Password,
		}
		if err := userService.UpdateProfile(r.Context(), userID, upd); err != nil {
			if errors.Is(err, service.ErrNothingUpdated) {
				writeJSON(w, http.StatusNotFound, MessageResponse{Message: "User not found or no changes made"})
				return
			}
			// Внутренние детали клиенту не отдаем, только пишем в лог
			logger.Error("update failed", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "An error occurred while updating user information"})
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Updated Successfully"})
	}
}
