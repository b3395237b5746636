package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// LookupRepository — CRUD справочников: задачи, категории продукции,
// типы клиентов, типы материалов, страны.
type LookupRepository interface {
	ListTasks(ctx context.Context) ([]*model.Task, error)
	GetTask(ctx context.Context, taskID int64) (*model.Task, error)
	CreateTask(ctx context.Context, t *model.Task) error
	UpdateTask(ctx context.Context, t *model.Task) error
	DeleteTask(ctx context.Context, taskID int64) error

	ListProductCategories(ctx context.Context) ([]*model.ProductCategory, error)
	GetProductCategory(ctx context.Context, categoryID int64) (*model.ProductCategory, error)
	CreateProductCategory(ctx context.Context, c *model.ProductCategory) error
	UpdateProductCategory(ctx context.Context, c *model.ProductCategory) error
	DeleteProductCategory(ctx context.Context, categoryID int64) error

	ListCustomerTypes(ctx context.Context) ([]*model.CustomerType, error)
	GetCustomerType(ctx context.Context, typeID int64) (*model.CustomerType, error)
	CreateCustomerType(ctx context.Context, t *model.CustomerType) error
	UpdateCustomerType(ctx context.Context, t *model.CustomerType) error
	DeleteCustomerType(ctx context.Context, typeID int64) error

	ListMaterialTypes(ctx context.Context) ([]*model.MaterialType, error)
	GetMaterialType(ctx context.Context, typeID int64) (*model.MaterialType, error)
	CreateMaterialType(ctx context.Context, t *model.MaterialType) error
	UpdateMaterialType(ctx context.Context, t *model.MaterialType) error
	DeleteMaterialType(ctx context.Context, typeID int64) error

	ListCountries(ctx context.Context) ([]*model.Country, error)
	GetCountry(ctx context.Context, countryID int64) (*model.Country, error)
	CreateCountry(ctx context.Context, c *model.Country) error
	UpdateCountry(ctx context.Context, c *model.Country) error
	DeleteCountry(ctx context.Context, countryID int64) error
}

type lookupRepo struct {
	db DBTX
}

// NewLookupRepository создаёт репозиторий справочников.
func NewLookupRepository(db DBTX) LookupRepository {
	return &lookupRepo{db: db}
}

// --- Задачи ---

func (r *lookupRepo) ListTasks(ctx context.Context) ([]*model.Task, error) {
	query := `
		SELECT task_id, task_name, task_description, default_duration_days,
			created_by, created_at, modified_by, modified_at
		FROM tasks
		ORDER BY task_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t := &model.Task{}
		err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DefaultDurationDays,
			&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *lookupRepo) GetTask(ctx context.Context, taskID int64) (*model.Task, error) {
	query := `
		SELECT task_id, task_name, task_description, default_duration_days,
			created_by, created_at, modified_by, modified_at
		FROM tasks
		WHERE task_id = $1`

	t := &model.Task{}
	err := r.db.QueryRow(ctx, query, taskID).Scan(
		&t.ID, &t.Name, &t.Description, &t.DefaultDurationDays,
		&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}
	return t, nil
}

func (r *lookupRepo) CreateTask(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (task_name, task_description, default_duration_days)
		VALUES ($1, $2, $3)
		RETURNING task_id`

	if err := r.db.QueryRow(ctx, query, t.Name, t.Description, t.DefaultDurationDays).Scan(&t.ID); err != nil {
		return fmt.Errorf("ошибка создания задачи: %w", err)
	}
	return nil
}

func (r *lookupRepo) UpdateTask(ctx context.Context, t *model.Task) error {
	query := `
		UPDATE tasks SET task_name = $1, task_description = $2, default_duration_days = $3
		WHERE task_id = $4
		RETURNING task_id`

	var id int64
	if err := r.db.QueryRow(ctx, query, t.Name, t.Description, t.DefaultDurationDays, t.ID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	return nil
}

func (r *lookupRepo) DeleteTask(ctx context.Context, taskID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Категории продукции ---

func (r *lookupRepo) ListProductCategories(ctx context.Context) ([]*model.ProductCategory, error) {
	query := `
		SELECT product_category_id, category_name, category_description,
			created_by, created_at, modified_by, modified_at
		FROM product_categories
		ORDER BY category_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка категорий: %w", err)
	}
	defer rows.Close()

	var categories []*model.ProductCategory
	for rows.Next() {
		c := &model.ProductCategory{}
		err := rows.Scan(&c.ID, &c.Name, &c.Description,
			&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения категории: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *lookupRepo) GetProductCategory(ctx context.Context, categoryID int64) (*model.ProductCategory, error) {
	query := `
		SELECT product_category_id, category_name, category_description,
			created_by, created_at, modified_by, modified_at
		FROM product_categories
		WHERE product_category_id = $1`

	c := &model.ProductCategory{}
	err := r.db.QueryRow(ctx, query, categoryID).Scan(
		&c.ID, &c.Name, &c.Description,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения категории: %w", err)
	}
	return c, nil
}

func (r *lookupRepo) CreateProductCategory(ctx context.Context, c *model.ProductCategory) error {
	query := `
		INSERT INTO product_categories (category_name, category_description)
		VALUES ($1, $2)
		RETURNING product_category_id`

	if err := r.db.QueryRow(ctx, query, c.Name, c.Description).Scan(&c.ID); err != nil {
		return fmt.Errorf("ошибка создания категории: %w", err)
	}
	return nil
}

func (r *lookupRepo) UpdateProductCategory(ctx context.Context, c *model.ProductCategory) error {
	query := `
		UPDATE product_categories SET category_name = $1, category_description = $2
		WHERE product_category_id = $3
		RETURNING product_category_id`

	var id int64
	if err := r.db.QueryRow(ctx, query, c.Name, c.Description, c.ID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления категории: %w", err)
	}
	return nil
}

func (r *lookupRepo) DeleteProductCategory(ctx context.Context, categoryID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_categories WHERE product_category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Типы клиентов ---

func (r *lookupRepo) ListCustomerTypes(ctx context.Context) ([]*model.CustomerType, error) {
	query := `
		SELECT customer_type_id, customer_type_description,
			created_by, created_at, modified_by, modified_at
		FROM customer_types
		ORDER BY customer_type_description`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения типов клиентов: %w", err)
	}
	defer rows.Close()

	var types []*model.CustomerType
	for rows.Next() {
		t := &model.CustomerType{}
		err := rows.Scan(&t.ID, &t.Description,
			&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения типа клиента: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *lookupRepo) GetCustomerType(ctx context.Context, typeID int64) (*model.CustomerType, error) {
	query := `
		SELECT customer_type_id, customer_type_description,
			created_by, created_at, modified_by, modified_at
		FROM customer_types
		WHERE customer_type_id = $1`

	t := &model.CustomerType{}
	err := r.db.QueryRow(ctx, query, typeID).Scan(
		&t.ID, &t.Description,
		&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения типа клиента: %w", err)
	}
	return t, nil
}

func (r *lookupRepo) CreateCustomerType(ctx context.Context, t *model.CustomerType) error {
	query := `
		INSERT INTO customer_types (customer_type_description)
		VALUES ($1)
		RETURNING customer_type_id`

	if err := r.db.QueryRow(ctx, query, t.Description).Scan(&t.ID); err != nil {
		return fmt.Errorf("ошибка создания типа клиента: %w", err)
	}
	return nil
}

func (r *lookupRepo) UpdateCustomerType(ctx context.Context, t *model.CustomerType) error {
	query := `
		UPDATE customer_types SET customer_type_description = $1
		WHERE customer_type_id = $2
		RETURNING customer_type_id`

	var id int64
	if err := r.db.QueryRow(ctx, query, t.Description, t.ID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления типа клиента: %w", err)
	}
	return nil
}

func (r *lookupRepo) DeleteCustomerType(ctx context.Context, typeID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customer_types WHERE customer_type_id = $1`, typeID)
	if err != nil {
		return fmt.Errorf("ошибка удаления типа клиента: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Типы материалов ---

func (r *lookupRepo) ListMaterialTypes(ctx context.Context) ([]*model.MaterialType, error) {
	query := `
		SELECT material_type_id, material_type_description,
			created_by, created_at, modified_by, modified_at
		FROM material_types
		ORDER BY material_type_description`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения типов материалов: %w", err)
	}
	defer rows.Close()

	var types []*model.MaterialType
	for rows.Next() {
		t := &model.MaterialType{}
		err := rows.Scan(&t.ID, &t.Description,
			&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения типа материала: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *lookupRepo) GetMaterialType(ctx context.Context, typeID int64) (*model.MaterialType, error) {
	query := `
		SELECT material_type_id, material_type_description,
			created_by, created_at, modified_by, modified_at
		FROM material_types
		WHERE material_type_id = $1`

	t := &model.MaterialType{}
	err := r.db.QueryRow(ctx, query, typeID).Scan(
		&t.ID, &t.Description,
		&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения типа материала: %w", err)
	}
	return t, nil
}

func (r *lookupRepo) CreateMaterialType(ctx context.Context, t *model.MaterialType) error {
	query := `
		INSERT INTO material_types (material_type_description)
		VALUES ($1)
		RETURNING material_type_id`

	if err := r.db.QueryRow(ctx, query, t.Description).Scan(&t.ID); err != nil {
		return fmt.Errorf("ошибка создания типа материала: %w", err)
	}
	return nil
}

func (r *lookupRepo) UpdateMaterialType(ctx context.Context, t *model.MaterialType) error {
	query := `
		UPDATE material_types SET material_type_description = $1
		WHERE material_type_id = $2
		RETURNING material_type_id`

	var id int64
	if err := r.db.QueryRow(ctx, query, t.Description, t.ID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления типа материала: %w", err)
	}
	return nil
}

func (r *lookupRepo) DeleteMaterialType(ctx context.Context, typeID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM material_types WHERE material_type_id = $1`, typeID)
	if err != nil {
		return fmt.Errorf("ошибка удаления типа материала: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Страны ---

func (r *lookupRepo) ListCountries(ctx context.Context) ([]*model.Country, error) {
	query := `
		SELECT country_id, country_name, country_code,
			created_by, created_at, modified_by, modified_at
		FROM countries
		ORDER BY country_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка стран: %w", err)
	}
	defer rows.Close()

	var countries []*model.Country
	for rows.Next() {
		c := &model.Country{}
		err := rows.Scan(&c.ID, &c.Name, &c.Code,
			&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения страны: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *lookupRepo) GetCountry(ctx context.Context, countryID int64) (*model.Country, error) {
	query := `
		SELECT country_id, country_name, country_code,
			created_by, created_at, modified_by, modified_at
		FROM countries
		WHERE country_id = $1`

	c := &model.Country{}
	err := r.db.QueryRow(ctx, query, countryID).Scan(
		&c.ID, &c.Name, &c.Code,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения страны: %w", err)
	}
	return c, nil
}

func (r *lookupRepo) CreateCountry(ctx context.Context, c *model.Country) error {
	query := `
		INSERT INTO countries (country_name, country_code)
		VALUES ($1, $2)
		RETURNING country_id`

	if err := r.db.QueryRow(ctx, query, c.Name, c.Code).Scan(&c.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: страна с таким названием уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания страны: %w", err)
	}
	return nil
}

func (r *lookupRepo) UpdateCountry(ctx context.Context, c *model.Country) error {
	query := `
		UPDATE countries SET country_name = $1, country_code = $2
		WHERE country_id = $3
		RETURNING country_id`

	var id int64
	if err := r.db.QueryRow(ctx, query, c.Name, c.Code, c.ID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: страна с таким названием уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка обновления страны: %w", err)
	}
	return nil
}

func (r *lookupRepo) DeleteCountry(ctx context.Context, countryID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM countries WHERE country_id = $1`, countryID)
	if err != nil {
		return fmt.Errorf("ошибка удаления страны: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
