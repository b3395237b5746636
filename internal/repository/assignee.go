package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// AssigneeRepository — CRUD для таблицы assignees.
type AssigneeRepository interface {
	// List возвращает исполнителей по алфавиту.
	List(ctx context.Context) ([]*model.Assignee, error)
	// GetByID возвращает исполнителя по ID.
	GetByID(ctx context.Context, assigneeID int64) (*model.Assignee, error)
	// Create вставляет исполнителя и заполняет a.ID.
	Create(ctx context.Context, a *model.Assignee) error
	// Update перезаписывает все редактируемые поля исполнителя.
	Update(ctx context.Context, a *model.Assignee) error
	// Delete удаляет исполнителя.
	Delete(ctx context.Context, assigneeID int64) error
}

type assigneeRepo struct {
	db DBTX
}

// NewAssigneeRepository создаёт репозиторий исполнителей.
func NewAssigneeRepository(db DBTX) AssigneeRepository {
	return &assigneeRepo{db: db}
}

const assigneeColumns = `
	assignee_id, assignee_name, title, department, email, phone, specialty,
	created_by, created_at, modified_by, modified_at`

func scanAssignee(row pgx.Row, a *model.Assignee) error {
	return row.Scan(
		&a.ID, &a.Name, &a.Title, &a.Department, &a.Email, &a.Phone, &a.Specialty,
		&a.CreatedBy, &a.CreatedAt, &a.ModifiedBy, &a.ModifiedAt,
	)
}

func (r *assigneeRepo) List(ctx context.Context) ([]*model.Assignee, error) {
	query := `
		SELECT` + assigneeColumns + `
		FROM assignees
		ORDER BY assignee_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка исполнителей: %w", err)
	}
	defer rows.Close()

	var assignees []*model.Assignee
	for rows.Next() {
		a := &model.Assignee{}
		if err := scanAssignee(rows, a); err != nil {
			return nil, fmt.Errorf("ошибка чтения исполнителя: %w", err)
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}

func (r *assigneeRepo) GetByID(ctx context.Context, assigneeID int64) (*model.Assignee, error) {
	query := `
		SELECT` + assigneeColumns + `
		FROM assignees
		WHERE assignee_id = $1`

	a := &model.Assignee{}
	if err := scanAssignee(r.db.QueryRow(ctx, query, assigneeID), a); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения исполнителя: %w", err)
	}
	return a, nil
}

func (r *assigneeRepo) Create(ctx context.Context, a *model.Assignee) error {
	query := `
		INSERT INTO assignees (assignee_name, title, department, email, phone, specialty)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING assignee_id`

	err := r.db.QueryRow(ctx, query,
		a.Name, a.Title, a.Department, a.Email, a.Phone, a.Specialty,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания исполнителя: %w", err)
	}
	return nil
}

func (r *assigneeRepo) Update(ctx context.Context, a *model.Assignee) error {
	query := `
		UPDATE assignees SET
			assignee_name = $1,
			title = $2,
			department = $3,
			email = $4,
			phone = $5,
			specialty = $6
		WHERE assignee_id = $7
		RETURNING assignee_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		a.Name, a.Title, a.Department, a.Email, a.Phone, a.Specialty, a.ID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления исполнителя: %w", err)
	}
	return nil
}

func (r *assigneeRepo) Delete(ctx context.Context, assigneeID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assignees WHERE assignee_id = $1`, assigneeID)
	if err != nil {
		return fmt.Errorf("ошибка удаления исполнителя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
