// auth.go — аутентификация: вход по паролю, выпуск JWT, смена пароля.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
)

// bcryptCost — стоимость хэширования паролей.
const bcryptCost = 10

// AuthService — вход, выпуск токенов и смена пароля.
type AuthService struct {
	users      repository.UserRepository
	audit      *repository.AuditRunner
	jwtSecret  []byte
	jwtExpires time.Duration
	logger     *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(
	users repository.UserRepository,
	audit *repository.AuditRunner,
	jwtSecret string,
	jwtExpires time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		audit:      audit,
		jwtSecret:  []byte(jwtSecret),
		jwtExpires: jwtExpires,
		logger:     logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет учётные данные и выпускает HS256 JWT.
// Неактивные пользователи и неверные пароли дают одинаковую ошибку.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: логин и пароль обязательны", ErrValidation)
	}

	user, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// Вход важнее отметки времени
		s.logger.Warn("Не удалось обновить last_login",
			slog.String("username", username), slog.Any("error", err))
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Пользователь вошёл в систему",
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	return token, user, nil
}

// issueToken подписывает HS256 JWT с данными пользователя.
func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"userId":      user.ID,
		"username":    user.Username,
		"role":        user.Role,
		"permissions": user.Permissions,
		"iat":         now.Unix(),
		"exp":         now.Add(s.jwtExpires).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ChangePassword меняет пароль пользователя после проверки текущего.
// Запись аудируется от имени самого пользователя.
func (s *AuthService) ChangePassword(ctx context.Context, actingUser string, userID int64, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: текущий и новый пароль обязательны", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: пользователь %d", ErrNotFound, userID)
		}
		return fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("хэширование пароля: %w", err)
	}

	err = s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewUserRepository(tx).UpdatePasswordHash(ctx, userID, string(hash))
	})
	if err != nil {
		return fmt.Errorf("смена пароля: %w", err)
	}

	s.logger.Info("Пароль изменён", slog.String("username", user.Username))
	return nil
}
