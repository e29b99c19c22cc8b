package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/Shiva182004/Paytm/internal/domain/models"
	security "github.com/Shiva182004/Paytm/internal/jwt-new"
	"github.com/Shiva182004/Paytm/internal/lib/hasher"
	"github.com/Shiva182004/Paytm/internal/storage"
)

var (
	// ErrUserExists — логин (email) уже занят другим пользователем
	ErrUserExists = errors.New("email already taken")
	// ErrInvalidCredentials — единый ответ и для "нет такого пользователя",
	// и для "неверный пароль", чтобы не раскрывать, что именно не совпало
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthService struct {
	log         *slog.Logger
	db          *sql.DB
	userRepo    storage.UserStorage
	accountRepo storage.AccountStorage
	tokens      *security.Manager
}

func NewAuthService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, accountRepo storage.AccountStorage, tokens *security.Manager) *AuthService {
	return &AuthService{
		log:         log,
		db:          db,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		tokens:      tokens,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, username, password, firstName, lastName string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// Register создает пользователя и его счет и возвращает JWT-токен.
// Пользователь и счет создаются в одной транзакции: если вставка счета
// не удалась, регистрация целиком откатывается
func (a *AuthService) Register(ctx context.Context, username, password, firstName, lastName string) (string, error) {
	const op = "service.AuthService.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("registering user")

	// Проверка уникальности логина на уровне приложения,
	// constraint в БД страхует от гонки
	_, err := a.userRepo.GetUserByUsername(ctx, username)
	if err == nil {
		logger.Warn("username already taken")
		return "", fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		logger.Error("failed to check existing user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to check existing user: %w", op, err)
	}

	passHash, err := hasher.Hash(password)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	newUser := &models.User{
		Username:  username,
		PassHash:  passHash,
		FirstName: firstName,
		LastName:  lastName,
	}
	user, err := a.userRepo.CreateUserTx(ctx, tx, newUser)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("username already taken")
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	// Стартовый баланс — случайное число из [1, 10001),
	// это удобство провижининга, а не защита
	account := &models.Account{
		UserID:  user.ID,
		Balance: 1 + rand.Float64()*10000,
	}
	if _, err := a.accountRepo.CreateAccountTx(ctx, tx, account); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create account", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create account: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	token, err := a.tokens.NewToken(ctx, user.ID)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user registered successfully", slog.Int64("userID", user.ID))
	return token, nil
}

// Login осуществляет аутентификацию пользователя.
// Введенный пароль сравнивается с сохраненным хэшем,
// после успешной проверки генерируется JWT-токен
func (a *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if !hasher.Verify(password, user.PassHash) {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := a.tokens.NewToken(ctx, user.ID)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}
