package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// CustomerRepository — CRUD для таблицы customers.
type CustomerRepository interface {
	// List возвращает клиентов с типом и страной, по алфавиту.
	List(ctx context.Context) ([]*model.Customer, error)
	// GetByID возвращает клиента по ID.
	GetByID(ctx context.Context, customerID int64) (*model.Customer, error)
	// Create вставляет клиента и заполняет c.ID.
	Create(ctx context.Context, c *model.Customer) error
	// Update перезаписывает все редактируемые поля клиента.
	Update(ctx context.Context, c *model.Customer) error
	// Delete удаляет клиента.
	Delete(ctx context.Context, customerID int64) error
}

type customerRepo struct {
	db DBTX
}

// NewCustomerRepository создаёт репозиторий клиентов.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `
	c.customer_id, c.customer_name, c.customer_type_id, ct.customer_type_description,
	c.contact_person, c.contact_email, c.contact_phone,
	c.country_id, co.country_name, c.address,
	c.created_by, c.created_at, c.modified_by, c.modified_at`

func scanCustomer(row pgx.Row, c *model.Customer) error {
	return row.Scan(
		&c.ID, &c.Name, &c.CustomerTypeID, &c.CustomerTypeName,
		&c.ContactPerson, &c.ContactEmail, &c.ContactPhone,
		&c.CountryID, &c.CountryName, &c.Address,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt,
	)
}

func (r *customerRepo) List(ctx context.Context) ([]*model.Customer, error) {
	query := `
		SELECT` + customerColumns + `
		FROM customers c
		LEFT JOIN customer_types ct ON c.customer_type_id = ct.customer_type_id
		LEFT JOIN countries co ON c.country_id = co.country_id
		ORDER BY c.customer_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка клиентов: %w", err)
	}
	defer rows.Close()

	var customers []*model.Customer
	for rows.Next() {
		c := &model.Customer{}
		if err := scanCustomer(rows, c); err != nil {
			return nil, fmt.Errorf("ошибка чтения клиента: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepo) GetByID(ctx context.Context, customerID int64) (*model.Customer, error) {
	query := `
		SELECT` + customerColumns + `
		FROM customers c
		LEFT JOIN customer_types ct ON c.customer_type_id = ct.customer_type_id
		LEFT JOIN countries co ON c.country_id = co.country_id
		WHERE c.customer_id = $1`

	c := &model.Customer{}
	if err := scanCustomer(r.db.QueryRow(ctx, query, customerID), c); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения клиента: %w", err)
	}
	return c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (
			customer_name, customer_type_id, contact_person,
			contact_email, contact_phone, country_id, address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING customer_id`

	err := r.db.QueryRow(ctx, query,
		c.Name, c.CustomerTypeID, c.ContactPerson,
		c.ContactEmail, c.ContactPhone, c.CountryID, c.Address,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания клиента: %w", err)
	}
	return nil
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	query := `
		UPDATE customers SET
			customer_name = $1,
			customer_type_id = $2,
			contact_person = $3,
			contact_email = $4,
			contact_phone = $5,
			country_id = $6,
			address = $7
		WHERE customer_id = $8
		RETURNING customer_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		c.Name, c.CustomerTypeID, c.ContactPerson,
		c.ContactEmail, c.ContactPhone, c.CountryID, c.Address,
		c.ID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления клиента: %w", err)
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, customerID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("ошибка удаления клиента: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
