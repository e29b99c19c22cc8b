package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shiva182004/Paytm/internal/storage"
)

// DirectoryService определяет интерфейс для поиска пользователей по имени.
type DirectoryService interface {
	SearchUsers(ctx context.Context, filter string) ([]DirectoryEntry, error)
}

// DirectoryEntry — публичная карточка пользователя, хэш пароля сюда не попадает.
type DirectoryEntry struct {
	ID        int64  `json:"_id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type directoryService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewDirectoryService(log *slog.Logger, userRepo storage.UserStorage) DirectoryService {
	return &directoryService{
		log:      log,
		userRepo: userRepo,
	}
}

// SearchUsers возвращает всех пользователей, у которых имя или фамилия
// содержит filter как подстроку. Пустой фильтр совпадает со всеми
func (s *directoryService) SearchUsers(ctx context.Context, filter string) ([]DirectoryEntry, error) {
	const op = "service.DirectoryService.SearchUsers"
	s.log.Info("searching users", slog.String("op", op), slog.String("filter", filter))

	users, err := s.userRepo.ListUsersByName(ctx, filter)
	if err != nil {
		s.log.Error("failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}

	entries := make([]DirectoryEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, DirectoryEntry{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
	}
	return entries, nil
}
