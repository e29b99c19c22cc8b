package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MessageResponse — ответ, состоящий из одного сообщения.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse — ответ с сообщением и JWT-токеном.
type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// FieldError — деталь ошибки валидации по одному полю.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse — ответ 422 с пополевой детализацией.
type ValidationErrorResponse struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

// writeJSON сериализует ответ с указанным статусом
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validationDetails превращает ошибки validator в пополевой список для клиента
func validationDetails(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		})
	}
	return details
}
