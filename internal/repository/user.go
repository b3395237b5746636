package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// UserRepository — доступ к таблице users.
type UserRepository interface {
	// GetActiveByUsername возвращает активного пользователя по логину.
	GetActiveByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByID возвращает пользователя по ID.
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	// TouchLastLogin фиксирует время входа пользователя.
	TouchLastLogin(ctx context.Context, userID int64) error
	// UpdatePasswordHash меняет хэш пароля пользователя.
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `
	user_id, username, password_hash, full_name, email, role, department,
	permissions, is_active, last_login,
	created_by, created_at, modified_by, modified_at`

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.Department,
		&u.Permissions, &u.IsActive, &u.LastLogin,
		&u.CreatedBy, &u.CreatedAt, &u.ModifiedBy, &u.ModifiedAt,
	)
}

func (r *userRepo) GetActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE username = $1 AND is_active`

	u := &model.User{}
	if err := scanUser(r.db.QueryRow(ctx, query, username), u); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE user_id = $1`

	u := &model.User{}
	if err := scanUser(r.db.QueryRow(ctx, query, userID), u); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE users SET last_login = now() WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка обновления времени входа: %w", err)
	}
	return nil
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE user_id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("ошибка смены пароля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
