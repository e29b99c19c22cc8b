package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Shiva182004/Paytm/internal/service"
)

// BulkResponse — ответ со списком найденных пользователей.
// Ключ "user" — наследие исходного API, менять его нельзя
type BulkResponse struct {
	User []service.DirectoryEntry `json:"user"`
}

// BulkHandler обрабатывает запрос GET /api/v1/user/bulk?filter=<строка>.
// Эндпоинт намеренно открыт без аутентификации, как и в исходном API
func BulkHandler(log *slog.Logger, directoryService service.DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BulkHandler"
		logger := log.With(slog.String("op", op))

		filter := r.URL.Query().Get("filter")

		entries, err := directoryService.SearchUsers(r.Context(), filter)
		if err != nil {
			logger.Error("failed to search users", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal server error"})
			return
		}

		writeJSON(w, http.StatusOK, BulkResponse{User: entries})
	}
}
