package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Shiva182004/Paytm/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserPatch описывает частичное обновление профиля, nil-поля не трогаем
type UserPatch struct {
	FirstName *string
	LastName  *string
	PassHash  []byte
}

// IsEmpty сообщает, есть ли в патче хоть одно поле для обновления
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PassHash == nil
}

type UserStorage interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUserTx(ctx context.Context, tx *sql.Tx, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) error
	ListUsersByName(ctx context.Context, filter string) ([]*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// получение уже существующего пользователя по логину (email)
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, username, pass_hash, first_name, last_name FROM users WHERE username = $1", username)
	if err := row.Scan(&user.ID, &user.Username, &user.PassHash, &user.FirstName, &user.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, username, pass_hash, first_name, last_name FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Username, &user.PassHash, &user.FirstName, &user.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUserTx вставляет пользователя в рамках транзакции регистрации.
// Уникальность username дополнительно держит constraint в БД
func (r *userRepository) CreateUserTx(ctx context.Context, tx *sql.Tx, user *models.User) (*models.User, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		"INSERT INTO users (username, pass_hash, first_name, last_name) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Username, user.PassHash, user.FirstName, user.LastName,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return nil, ErrUserExists
			}
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

// UpdateUser применяет частичное обновление профиля.
// Пустой патч и несуществующий id неразличимы: оба дают ErrUserNotFound
func (r *userRepository) UpdateUser(ctx context.Context, id int64, patch UserPatch) error {
	set := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if patch.FirstName != nil {
		args = append(args, *patch.FirstName)
		set = append(set, fmt.Sprintf("first_name = $%d", len(args)))
	}
	if patch.LastName != nil {
		args = append(args, *patch.LastName)
		set = append(set, fmt.Sprintf("last_name = $%d", len(args)))
	}
	if patch.PassHash != nil {
		args = append(args, patch.PassHash)
		set = append(set, fmt.Sprintf("pass_hash = $%d", len(args)))
	}
	if len(set) == 0 {
		return ErrUserNotFound
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsersByName возвращает пользователей, у которых имя или фамилия
// содержит filter как подстроку (LIKE — с учетом регистра).
// Пустой фильтр совпадает со всеми
func (r *userRepository) ListUsersByName(ctx context.Context, filter string) ([]*models.User, error) {
	query := `
		SELECT id, username, first_name, last_name
		FROM users
		WHERE first_name LIKE '%' || $1 || '%' OR last_name LIKE '%' || $1 || '%'
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
