package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Shiva182004/Paytm/internal/lib/hasher"
	"github.com/Shiva182004/Paytm/internal/storage"
)

// ErrNothingUpdated — пользователь не найден или обновлять было нечего.
// Оба случая намеренно неразличимы для клиента
var ErrNothingUpdated = errors.New("user not found or no changes made")

// UserService определяет интерфейс для обновления профиля.
type UserService interface {
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error
}

// ProfileUpdate — частичное обновление профиля, nil-поля не трогаем.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Password  *string
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage) UserService {
	return &userService{
		log:      log,
		userRepo: userRepo,
	}
}

// UpdateProfile применяет частичное обновление к пользователю из токена.
// Новый пароль хэшируется до записи, в открытом виде он никуда не сохраняется
func (s *userService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error {
	const op = "service.UserService.UpdateProfile"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("updating profile")

	patch := storage.UserPatch{
		FirstName: upd.FirstName,
		LastName:  upd.LastName,
	}
	if upd.Password != nil {
		passHash, err := hasher.Hash(*upd.Password)
		if err != nil {
			logger.Error("failed to hash password", slog.Any("error", err))
			return fmt.Errorf("%s: failed to hash password: %w", op, err)
		}
		patch.PassHash = passHash
	}

	if patch.IsEmpty() {
		logger.Warn("empty update")
		return fmt.Errorf("%s: %w", op, ErrNothingUpdated)
	}

	if err := s.userRepo.UpdateUser(ctx, userID, patch); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found or nothing changed")
			return fmt.Errorf("%s: %w", op, ErrNothingUpdated)
		}
		logger.Error("failed to update user", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update user: %w", op, err)
	}

	logger.Info("profile updated successfully")
	return nil
}
