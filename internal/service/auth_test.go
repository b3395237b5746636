package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
)

// fakeUserRepo — заглушка репозитория пользователей для unit-тестов.
type fakeUserRepo struct {
	user        *model.User
	lastLoginID int64
}

func (f *fakeUserRepo) GetActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.user == nil || f.user.Username != username || !f.user.IsActive {
		return nil, repository.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, repository.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, userID int64) error {
	f.lastLoginID = userID
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	if f.user == nil || f.user.ID != userID {
		return repository.ErrNotFound
	}
	f.user.PasswordHash = passwordHash
	return nil
}

func newTestUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("не удалось захэшировать пароль: %v", err)
	}
	return &model.User{
		ID:           42,
		Username:     "ivanov",
		PasswordHash: string(hash),
		FullName:     "Иван Иванов",
		Role:         "Manager",
		Permissions:  []string{"inquiries"},
		IsActive:     true,
	}
}

func newAuthService(repo repository.UserRepository) *AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, nil, "auth-test-secret", time.Hour, logger)
}

func TestLogin(t *testing.T) {
	repo := &fakeUserRepo{user: newTestUser(t, "secret123")}
	svc := newAuthService(repo)

	token, user, err := svc.Login(context.Background(), "ivanov", "secret123")
	if err != nil {
		t.Fatalf("Login() вернул ошибку: %v", err)
	}
	if user.Username != "ivanov" {
		t.Errorf("Username = %q, ожидается ivanov", user.Username)
	}
	if repo.lastLoginID != 42 {
		t.Errorf("last_login не обновлён: lastLoginID = %d", repo.lastLoginID)
	}

	// Токен подписан HS256 и несёт данные пользователя
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte("auth-test-secret"), nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		t.Fatalf("выпущенный токен не парсится: %v", err)
	}
	if !parsed.Valid {
		t.Error("выпущенный токен невалиден")
	}
	if claims["username"] != "ivanov" {
		t.Errorf("claims[username] = %v, ожидается ivanov", claims["username"])
	}
	if claims["role"] != "Manager" {
		t.Errorf("claims[role] = %v, ожидается Manager", claims["role"])
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := &fakeUserRepo{user: newTestUser(t, "secret123")}
	svc := newAuthService(repo)
	ctx := context.Background()

	// Неверный пароль и неизвестный логин дают одинаковую ошибку
	if _, _, err := svc.Login(ctx, "ivanov", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("неверный пароль: err = %v, ожидается ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "unknown", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("неизвестный логин: err = %v, ожидается ErrInvalidCredentials", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	user := newTestUser(t, "secret123")
	user.IsActive = false
	svc := newAuthService(&fakeUserRepo{user: user})

	if _, _, err := svc.Login(context.Background(), "ivanov", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("неактивный пользователь: err = %v, ожидается ErrInvalidCredentials", err)
	}
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := newAuthService(&fakeUserRepo{})
	ctx := context.Background()

	if _, _, err := svc.Login(ctx, "", "secret123"); !errors.Is(err, ErrValidation) {
		t.Errorf("пустой логин: err = %v, ожидается ErrValidation", err)
	}
	if _, _, err := svc.Login(ctx, "ivanov", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("пустой пароль: err = %v, ожидается ErrValidation", err)
	}
}

func TestChangePassword_Validation(t *testing.T) {
	repo := &fakeUserRepo{user: newTestUser(t, "secret123")}
	svc := newAuthService(repo)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "ivanov", 42, "", "new"); !errors.Is(err, ErrValidation) {
		t.Errorf("пустой текущий пароль: err = %v, ожидается ErrValidation", err)
	}
	if err := svc.ChangePassword(ctx, "ivanov", 42, "secret123", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("пустой новый пароль: err = %v, ожидается ErrValidation", err)
	}
	if err := svc.ChangePassword(ctx, "ivanov", 42, "wrong", "new"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("неверный текущий пароль: err = %v, ожидается ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, "ivanov", 99, "secret123", "new"); !errors.Is(err, ErrNotFound) {
		t.Errorf("неизвестный пользователь: err = %v, ожидается ErrNotFound", err)
	}
}
