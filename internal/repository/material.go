package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// MaterialRepository — CRUD для таблицы materials.
type MaterialRepository interface {
	// List возвращает материалы с типом, по алфавиту.
	List(ctx context.Context) ([]*model.Material, error)
	// GetByID возвращает материал по ID.
	GetByID(ctx context.Context, materialID int64) (*model.Material, error)
	// Create вставляет материал и заполняет m.ID.
	Create(ctx context.Context, m *model.Material) error
	// Update перезаписывает все редактируемые поля материала.
	Update(ctx context.Context, m *model.Material) error
	// Delete удаляет материал.
	Delete(ctx context.Context, materialID int64) error
}

type materialRepo struct {
	db DBTX
}

// NewMaterialRepository создаёт репозиторий материалов.
func NewMaterialRepository(db DBTX) MaterialRepository {
	return &materialRepo{db: db}
}

const materialColumns = `
	m.material_id, m.material_name, m.material_description,
	m.material_type_id, mt.material_type_description,
	m.material_category, m.unit_of_measure, m.standard_cost,
	m.created_by, m.created_at, m.modified_by, m.modified_at`

func scanMaterial(row pgx.Row, m *model.Material) error {
	return row.Scan(
		&m.ID, &m.Name, &m.Description,
		&m.MaterialTypeID, &m.MaterialTypeName,
		&m.Category, &m.UnitOfMeasure, &m.StandardCost,
		&m.CreatedBy, &m.CreatedAt, &m.ModifiedBy, &m.ModifiedAt,
	)
}

func (r *materialRepo) List(ctx context.Context) ([]*model.Material, error) {
	query := `
		SELECT` + materialColumns + `
		FROM materials m
		LEFT JOIN material_types mt ON m.material_type_id = mt.material_type_id
		ORDER BY m.material_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка материалов: %w", err)
	}
	defer rows.Close()

	var materials []*model.Material
	for rows.Next() {
		m := &model.Material{}
		if err := scanMaterial(rows, m); err != nil {
			return nil, fmt.Errorf("ошибка чтения материала: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *materialRepo) GetByID(ctx context.Context, materialID int64) (*model.Material, error) {
	query := `
		SELECT` + materialColumns + `
		FROM materials m
		LEFT JOIN material_types mt ON m.material_type_id = mt.material_type_id
		WHERE m.material_id = $1`

	m := &model.Material{}
	if err := scanMaterial(r.db.QueryRow(ctx, query, materialID), m); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения материала: %w", err)
	}
	return m, nil
}

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	query := `
		INSERT INTO materials (
			material_name, material_description, material_type_id,
			material_category, unit_of_measure, standard_cost
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING material_id`

	err := r.db.QueryRow(ctx, query,
		m.Name, m.Description, m.MaterialTypeID,
		m.Category, m.UnitOfMeasure, m.StandardCost,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания материала: %w", err)
	}
	return nil
}

func (r *materialRepo) Update(ctx context.Context, m *model.Material) error {
	query := `
		UPDATE materials SET
			material_name = $1,
			material_description = $2,
			material_type_id = $3,
			material_category = $4,
			unit_of_measure = $5,
			standard_cost = $6
		WHERE material_id = $7
		RETURNING material_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		m.Name, m.Description, m.MaterialTypeID,
		m.Category, m.UnitOfMeasure, m.StandardCost,
		m.ID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления материала: %w", err)
	}
	return nil
}

func (r *materialRepo) Delete(ctx context.Context, materialID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE material_id = $1`, materialID)
	if err != nil {
		return fmt.Errorf("ошибка удаления материала: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
