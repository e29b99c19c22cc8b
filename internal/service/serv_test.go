package service_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Shiva182004/Paytm/internal/domain/models"
	security "github.com/Shiva182004/Paytm/internal/jwt-new"
	"github.com/Shiva182004/Paytm/internal/lib/hasher"
	"github.com/Shiva182004/Paytm/internal/service"
	"github.com/Shiva182004/Paytm/internal/storage"
)

type fakeUserRepo struct {
	users map[string]*models.User // ключ — username
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUserTx(ctx context.Context, tx *sql.Tx, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Username]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, id int64, patch storage.UserPatch) error {
	if patch.IsEmpty() {
		return storage.ErrUserNotFound
	}
	for _, u := range f.users {
		if u.ID == id {
			if patch.FirstName != nil {
				u.FirstName = *patch.FirstName
			}
			if patch.LastName != nil {
				u.LastName = *patch.LastName
			}
			if patch.PassHash != nil {
				u.PassHash = patch.PassHash
			}
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (f *fakeUserRepo) ListUsersByName(ctx context.Context, filter string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		if strings.Contains(u.FirstName, filter) || strings.Contains(u.LastName, filter) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAccountRepo struct {
	accounts map[int64]*models.Account // ключ — userID
	err      error                     // если задана, CreateAccountTx падает с этой ошибкой
}

var _ storage.AccountStorage = (*fakeAccountRepo)(nil)

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*models.Account)}
}

func (f *fakeAccountRepo) CreateAccountTx(ctx context.Context, tx *sql.Tx, account *models.Account) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	account.ID = int64(len(f.accounts) + 1)
	f.accounts[account.UserID] = account
	return account, nil
}

func (f *fakeAccountRepo) GetAccountByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	account, ok := f.accounts[userID]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}
	return account, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testTokens() *security.Manager {
	return security.NewManager("testsecret", time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	// Используем sqlmock для эмуляции транзакции регистрации.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	userRepo := newFakeUserRepo()
	accountRepo := newFakeAccountRepo()
	tokens := testTokens()
	authSvc := service.NewAuthService(testLogger(), db, userRepo, accountRepo, tokens)
	ctx := context.Background()

	token, err := authSvc.Register(ctx, "newuser@example.com", "password123", "New", "User")
	assert.NoError(t, err, "Register should succeed for a new user")
	assert.NotEmpty(t, token, "Token should not be empty")

	// Пользователь создан, пароль сохранен только в виде хэша
	user, err := userRepo.GetUserByUsername(ctx, "newuser@example.com")
	assert.NoError(t, err, "User should exist after registration")
	assert.Equal(t, "New", user.FirstName)
	assert.Equal(t, "User", user.LastName)
	assert.NotEqual(t, "password123", string(user.PassHash), "Password should be hashed")
	assert.True(t, hasher.Verify("password123", user.PassHash), "Stored hash should match the password")

	// Токен действительно указывает на созданного пользователя
	userID, err := tokens.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID, "Token should carry the new user's id")

	// Счет создан ровно один, баланс в документированных границах
	account, err := accountRepo.GetAccountByUserID(ctx, user.ID)
	assert.NoError(t, err, "Account should be provisioned with the user")
	assert.Equal(t, user.ID, account.UserID)
	assert.GreaterOrEqual(t, account.Balance, 1.0, "Balance should be at least 1")
	assert.Less(t, account.Balance, 10001.0, "Balance should be below 10001")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	// Дубликат обнаруживается до начала транзакции, поэтому ожиданий нет

	userRepo := newFakeUserRepo()
	accountRepo := newFakeAccountRepo()
	authSvc := service.NewAuthService(testLogger(), db, userRepo, accountRepo, testTokens())
	ctx := context.Background()

	passHash, err := hasher.Hash("password123")
	assert.NoError(t, err)
	_, err = userRepo.CreateUserTx(ctx, nil, &models.User{
		Username:  "taken@example.com",
		PassHash:  passHash,
		FirstName: "Old",
		LastName:  "User",
	})
	assert.NoError(t, err)

	token, err := authSvc.Register(ctx, "taken@example.com", "otherpass", "New", "User")
	assert.ErrorIs(t, err, service.ErrUserExists, "Register should fail for a taken username")
	assert.Empty(t, token)

	// Второй пользователь не появился
	assert.Len(t, userRepo.users, 1, "Duplicate registration must not create a second user")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Register_AccountCreateFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Вставка счета падает — транзакция должна откатиться
	mock.ExpectBegin()
	mock.ExpectRollback()

	userRepo := newFakeUserRepo()
	accountRepo := newFakeAccountRepo()
	accountRepo.err = errors.New("insert failed")
	authSvc := service.NewAuthService(testLogger(), db, userRepo, accountRepo, testTokens())

	token, err := authSvc.Register(context.Background(), "newuser@example.com", "password123", "New", "User")
	assert.Error(t, err, "Register should fail when account creation fails")
	assert.Empty(t, token, "No token should be issued on failed registration")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Login_Success(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	userRepo := newFakeUserRepo()
	tokens := testTokens()
	authSvc := service.NewAuthService(testLogger(), db, userRepo, newFakeAccountRepo(), tokens)
	ctx := context.Background()

	passHash, err := hasher.Hash("password123")
	assert.NoError(t, err)
	user, err := userRepo.CreateUserTx(ctx, nil, &models.User{
		Username:  "existing@example.com",
		PassHash:  passHash,
		FirstName: "Ex",
		LastName:  "Isting",
	})
	assert.NoError(t, err)

	token, err := authSvc.Login(ctx, "existing@example.com", "password123")
	assert.NoError(t, err, "Login should succeed with correct password")
	assert.NotEmpty(t, token)

	userID, err := tokens.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID, "Token should resolve to the logged-in user")
}

func TestAuthService_Login_WrongPasswordAndUnknownUser(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	userRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), db, userRepo, newFakeAccountRepo(), testTokens())
	ctx := context.Background()

	passHash, err := hasher.Hash("password123")
	assert.NoError(t, err)
	_, err = userRepo.CreateUserTx(ctx, nil, &models.User{
		Username: "existing@example.com",
		PassHash: passHash,
	})
	assert.NoError(t, err)

	// Неверный пароль и несуществующий логин дают одну и ту же ошибку
	_, errWrongPass := authSvc.Login(ctx, "existing@example.com", "wrongpassword")
	assert.ErrorIs(t, errWrongPass, service.ErrInvalidCredentials)

	_, errNoUser := authSvc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, errNoUser, service.ErrInvalidCredentials)
}

func TestUserService_UpdateProfile_Names(t *testing.T) {
	userRepo := newFakeUserRepo()
	userSvc := service.NewUserService(testLogger(), userRepo)
	ctx := context.Background()

	user, err := userRepo.CreateUserTx(ctx, nil, &models.User{
		Username:  "user@example.com",
		PassHash:  []byte("hashed"),
		FirstName: "Old",
		LastName:  "Name",
	})
	assert.NoError(t, err)

	firstName := "Z"
	err = userSvc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{FirstName: &firstName})
	assert.NoError(t, err, "Update should succeed")

	updated, err := userRepo.GetUserByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Z", updated.FirstName, "First name should be updated")
	assert.Equal(t, "Name", updated.LastName, "Last name should be untouched")
}

func TestUserService_UpdateProfile_PasswordRehashed(t *testing.T) {
	userRepo := newFakeUserRepo()
	userSvc := service.NewUserService(testLogger(), userRepo)
	ctx := context.Background()

	oldHash, err := hasher.Hash("oldpassword")
	assert.NoError(t, err)
	user, err := userRepo.CreateUserTx(ctx, nil, &models.User{
		Username: "user@example.com",
		PassHash: oldHash,
	})
	assert.NoError(t, err)

	newPassword := "newpassword"
	err = userSvc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{Password: &newPassword})
	assert.NoError(t, err)

	updated, err := userRepo.GetUserByID(ctx, user.ID)
	assert.NoError(t, err)
	// Сохранен хэш нового пароля, а не сам пароль
	assert.NotEqual(t, newPassword, string(updated.PassHash), "Plaintext password must not be persisted")
	assert.True(t, hasher.Verify(newPassword, updated.PassHash), "New password should verify")
	assert.False(t, hasher.Verify("oldpassword", updated.PassHash), "Old password should no longer verify")
}

func TestUserService_UpdateProfile_EmptyUpdate(t *testing.T) {
	userRepo := newFakeUserRepo()
	userSvc := service.NewUserService(testLogger(), userRepo)
	ctx := context.Background()

	user, err := userRepo.CreateUserTx(ctx, nil, &models.User{Username: "user@example.com"})
	assert.NoError(t, err)

	err = userSvc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{})
	assert.ErrorIs(t, err, service.ErrNothingUpdated, "Empty update should be reported as nothing updated")
}

func TestUserService_UpdateProfile_UserNotFound(t *testing.T) {
	userRepo := newFakeUserRepo()
	userSvc := service.NewUserService(testLogger(), userRepo)

	firstName := "Z"
	err := userSvc.UpdateProfile(context.Background(), 999, service.ProfileUpdate{FirstName: &firstName})
	assert.ErrorIs(t, err, service.ErrNothingUpdated, "Missing user should be reported as nothing updated")
}

func TestDirectoryService_SearchUsers(t *testing.T) {
	userRepo := newFakeUserRepo()
	dirSvc := service.NewDirectoryService(testLogger(), userRepo)
	ctx := context.Background()

	_, err := userRepo.CreateUserTx(ctx, nil, &models.User{
		Username: "a@x.com", PassHash: []byte("h1"), FirstName: "Alice", LastName: "Brown",
	})
	assert.NoError(t, err)
	_, err = userRepo.CreateUserTx(ctx, nil, &models.User{
		Username: "b@x.com", PassHash: []byte("h2"), FirstName: "Bob", LastName: "Stone",
	})
	assert.NoError(t, err)

	// Пустой фильтр возвращает всех
	all, err := dirSvc.SearchUsers(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	// Подстрочный поиск по имени или фамилии
	alice, err := dirSvc.SearchUsers(ctx, "Ali")
	assert.NoError(t, err)
	assert.Len(t, alice, 1)
	assert.Equal(t, "a@x.com", alice[0].Username)
	assert.Equal(t, "Alice", alice[0].FirstName)
	assert.Equal(t, "Brown", alice[0].LastName)

	// Поиск по фамилии тоже работает
	stone, err := dirSvc.SearchUsers(ctx, "Stone")
	assert.NoError(t, err)
	assert.Len(t, stone, 1)
	assert.Equal(t, "b@x.com", stone[0].Username)

	// Поиск с учетом регистра: "ali" не совпадает с "Alice"
	none, err := dirSvc.SearchUsers(ctx, "ali")
	assert.NoError(t, err)
	assert.Len(t, none, 0)
}
