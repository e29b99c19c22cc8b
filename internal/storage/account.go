package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shiva182004/Paytm/internal/domain/models"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountStorage описывает методы для работы со счетами пользователей.
type AccountStorage interface {
	// CreateAccountTx вставляет счет в рамках транзакции регистрации.
	CreateAccountTx(ctx context.Context, tx *sql.Tx, account *models.Account) (*models.Account, error)
	// GetAccountByUserID возвращает счет по идентификатору владельца.
	GetAccountByUserID(ctx context.Context, userID int64) (*models.Account, error)
}

// accountRepository — конкретная реализация интерфейса AccountStorage.
type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository создает новый репозиторий счетов.
func NewAccountRepository(db *sql.DB) AccountStorage {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccountTx(ctx context.Context, tx *sql.Tx, account *models.Account) (*models.Account, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		"INSERT INTO accounts (user_id, balance) VALUES ($1, $2) RETURNING id",
		account.UserID, account.Balance,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	account.ID = id
	return account, nil
}

func (r *accountRepository) GetAccountByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	account := &models.Account{}
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, balance FROM accounts WHERE user_id = $1", userID)
	if err := row.Scan(&account.ID, &account.UserID, &account.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
