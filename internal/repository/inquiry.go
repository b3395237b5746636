package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// maxNumberSuffix — предел суффикса номера заявки в пределах месяца.
// Формат INQ-YYYYMM-NNNNNN допускает шесть цифр; переполнение — фатальная
// ошибка, номера не зацикливаются.
const maxNumberSuffix = 999999

// HeaderUpdate — частичное обновление заголовка заявки.
// Поля с семантикой COALESCE (nil — оставить как есть): InquiryDate,
// Description, CustomerID, Status. Остальные поля перезаписываются
// всегда, nil означает очистку колонки.
type HeaderUpdate struct {
	InquiryDate       *time.Time
	Description       *string
	CustomerID        *int64
	Status            *string
	ProductCategoryID *int64
	InquiryGroup      *string
	Remarks           *string
	Conclusion        *string
}

// DetailUpdate — частичное обновление строки заявки.
// Status, Progress, EstimatedCost, ActualCost и CustomerApproved
// следуют семантике COALESCE; ссылки и даты перезаписываются всегда.
type DetailUpdate struct {
	MaterialID       *int64
	TaskID           *int64
	AssigneeID       *int64
	Status           *string
	Progress         *int
	StartDate        *time.Time
	DueDate          *time.Time
	EstimatedCost    *float64
	ActualCost       *float64
	CustomerApproved *string
	Remarks          *string
}

// InquiryRepository — доступ к заявкам: заголовки, строки, нумерация.
type InquiryRepository interface {
	// ListHeaders возвращает все заголовки с данными клиента и категории.
	ListHeaders(ctx context.Context) ([]*model.InquiryHeader, error)
	// GetHeader возвращает заголовок по ID.
	GetHeader(ctx context.Context, inquiryID int64) (*model.InquiryHeader, error)
	// ListDetails возвращает строки заявки в порядке detail_id.
	ListDetails(ctx context.Context, inquiryID int64) ([]*model.InquiryDetail, error)
	// NextNumber генерирует следующий номер заявки для месяца now.
	// Должен вызываться внутри транзакции: advisory-блокировка
	// удерживается до её завершения.
	NextNumber(ctx context.Context, now time.Time) (string, error)
	// InsertHeader вставляет заголовок и заполняет h.ID.
	InsertHeader(ctx context.Context, h *model.InquiryHeader) error
	// UpdateHeader применяет частичное обновление заголовка.
	UpdateHeader(ctx context.Context, inquiryID int64, upd HeaderUpdate) error
	// DeleteHeader удаляет заголовок; строки и вложения каскадируются БД.
	DeleteHeader(ctx context.Context, inquiryID int64) error
	// DeleteDetails удаляет все строки заявки.
	DeleteDetails(ctx context.Context, inquiryID int64) error
	// InsertDetail вставляет строку заявки и заполняет d.ID.
	InsertDetail(ctx context.Context, d *model.InquiryDetail) error
	// UpdateDetail применяет частичное обновление одной строки.
	UpdateDetail(ctx context.Context, inquiryID, detailID int64, upd DetailUpdate) error
}

type inquiryRepo struct {
	db DBTX
}

// NewInquiryRepository создаёт репозиторий заявок.
// Для операций записи передавайте pgx.Tx, открытую через AuditRunner.
func NewInquiryRepository(db DBTX) InquiryRepository {
	return &inquiryRepo{db: db}
}

// headerColumns — общая часть SELECT для заголовков.
const headerColumns = `
	h.inquiry_id, h.inquiry_number, h.inquiry_date, h.inquiry_description,
	h.customer_id, c.customer_name, c.contact_person, c.contact_email, c.contact_phone,
	co.country_name, h.product_category_id, pc.category_name,
	h.status, h.inquiry_group, h.remarks, h.conclusion,
	h.created_by, h.created_at, h.modified_by, h.modified_at`

func scanHeader(row pgx.Row, h *model.InquiryHeader) error {
	return row.Scan(
		&h.ID, &h.InquiryNumber, &h.InquiryDate, &h.Description,
		&h.CustomerID, &h.CustomerName, &h.ContactPerson, &h.ContactEmail, &h.ContactPhone,
		&h.CountryName, &h.ProductCategoryID, &h.ProductCategoryName,
		&h.Status, &h.InquiryGroup, &h.Remarks, &h.Conclusion,
		&h.CreatedBy, &h.CreatedAt, &h.ModifiedBy, &h.ModifiedAt,
	)
}

func (r *inquiryRepo) ListHeaders(ctx context.Context) ([]*model.InquiryHeader, error) {
	query := `
		SELECT` + headerColumns + `
		FROM inquiry_headers h
		LEFT JOIN customers c ON h.customer_id = c.customer_id
		LEFT JOIN countries co ON c.country_id = co.country_id
		LEFT JOIN product_categories pc ON h.product_category_id = pc.product_category_id
		ORDER BY h.inquiry_date DESC, h.inquiry_id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	var headers []*model.InquiryHeader
	for rows.Next() {
		h := &model.InquiryHeader{}
		if err := scanHeader(rows, h); err != nil {
			return nil, fmt.Errorf("ошибка чтения заголовка заявки: %w", err)
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

func (r *inquiryRepo) GetHeader(ctx context.Context, inquiryID int64) (*model.InquiryHeader, error) {
	query := `
		SELECT` + headerColumns + `
		FROM inquiry_headers h
		LEFT JOIN customers c ON h.customer_id = c.customer_id
		LEFT JOIN countries co ON c.country_id = co.country_id
		LEFT JOIN product_categories pc ON h.product_category_id = pc.product_category_id
		WHERE h.inquiry_id = $1`

	h := &model.InquiryHeader{}
	if err := scanHeader(r.db.QueryRow(ctx, query, inquiryID), h); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения заявки: %w", err)
	}
	return h, nil
}

func (r *inquiryRepo) ListDetails(ctx context.Context, inquiryID int64) ([]*model.InquiryDetail, error) {
	query := `
		SELECT
			d.detail_id, d.inquiry_id,
			d.material_id, m.material_name, mt.material_type_description,
			d.task_id, t.task_name,
			d.assignee_id, a.assignee_name,
			d.status, d.progress, d.start_date, d.due_date,
			d.estimated_cost, d.actual_cost, d.customer_approved, d.remarks,
			d.created_by, d.created_at, d.modified_by, d.modified_at
		FROM inquiry_details d
		LEFT JOIN materials m ON d.material_id = m.material_id
		LEFT JOIN material_types mt ON m.material_type_id = mt.material_type_id
		LEFT JOIN tasks t ON d.task_id = t.task_id
		LEFT JOIN assignees a ON d.assignee_id = a.assignee_id
		WHERE d.inquiry_id = $1
		ORDER BY d.detail_id`

	rows, err := r.db.Query(ctx, query, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения строк заявки: %w", err)
	}
	defer rows.Close()

	var details []*model.InquiryDetail
	for rows.Next() {
		d := &model.InquiryDetail{}
		err := rows.Scan(
			&d.ID, &d.InquiryID,
			&d.MaterialID, &d.MaterialName, &d.MaterialTypeName,
			&d.TaskID, &d.TaskName,
			&d.AssigneeID, &d.AssigneeName,
			&d.Status, &d.Progress, &d.StartDate, &d.DueDate,
			&d.EstimatedCost, &d.ActualCost, &d.CustomerApproved, &d.Remarks,
			&d.CreatedBy, &d.CreatedAt, &d.ModifiedBy, &d.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки заявки: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *inquiryRepo) NextNumber(ctx context.Context, now time.Time) (string, error) {
	bucket := now.Format("200601")
	prefix := "INQ-" + bucket + "-"

	// Сериализация конкурентных генераторов в пределах месяца.
	// Блокировка транзакционная: снимается на COMMIT/ROLLBACK.
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('inquiry_number:' || $1))`, bucket)
	if err != nil {
		return "", fmt.Errorf("ошибка блокировки генератора номеров: %w", err)
	}

	var maxSuffix int
	query := `
		SELECT COALESCE(MAX(substring(inquiry_number from 12)::int), 0)
		FROM inquiry_headers
		WHERE inquiry_number LIKE $1`
	if err := r.db.QueryRow(ctx, query, prefix+"%").Scan(&maxSuffix); err != nil {
		return "", fmt.Errorf("ошибка поиска последнего номера заявки: %w", err)
	}

	next := maxSuffix + 1
	if next > maxNumberSuffix {
		return "", fmt.Errorf("%w: месяц %s", ErrNumberExhausted, bucket)
	}
	return fmt.Sprintf("%s%06d", prefix, next), nil
}

func (r *inquiryRepo) InsertHeader(ctx context.Context, h *model.InquiryHeader) error {
	query := `
		INSERT INTO inquiry_headers (
			inquiry_number, inquiry_date, inquiry_description, customer_id,
			product_category_id, status, inquiry_group, remarks, conclusion
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING inquiry_id`

	err := r.db.QueryRow(ctx, query,
		h.InquiryNumber, h.InquiryDate, h.Description, h.CustomerID,
		h.ProductCategoryID, h.Status, h.InquiryGroup, h.Remarks, h.Conclusion,
	).Scan(&h.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: номер заявки уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка вставки заголовка заявки: %w", err)
	}
	return nil
}

func (r *inquiryRepo) UpdateHeader(ctx context.Context, inquiryID int64, upd HeaderUpdate) error {
	query := `
		UPDATE inquiry_headers SET
			inquiry_date = COALESCE($1, inquiry_date),
			inquiry_description = COALESCE($2, inquiry_description),
			customer_id = COALESCE($3, customer_id),
			status = COALESCE($4, status),
			product_category_id = $5,
			inquiry_group = $6,
			remarks = $7,
			conclusion = $8
		WHERE inquiry_id = $9
		RETURNING inquiry_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		upd.InquiryDate, upd.Description, upd.CustomerID, upd.Status,
		upd.ProductCategoryID, upd.InquiryGroup, upd.Remarks, upd.Conclusion,
		inquiryID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления заголовка заявки: %w", err)
	}
	return nil
}

func (r *inquiryRepo) DeleteHeader(ctx context.Context, inquiryID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inquiry_headers WHERE inquiry_id = $1`, inquiryID)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inquiryRepo) DeleteDetails(ctx context.Context, inquiryID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM inquiry_details WHERE inquiry_id = $1`, inquiryID); err != nil {
		return fmt.Errorf("ошибка удаления строк заявки: %w", err)
	}
	return nil
}

func (r *inquiryRepo) InsertDetail(ctx context.Context, d *model.InquiryDetail) error {
	query := `
		INSERT INTO inquiry_details (
			inquiry_id, material_id, task_id, assignee_id, status,
			progress, start_date, due_date, estimated_cost, actual_cost,
			customer_approved, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING detail_id`

	err := r.db.QueryRow(ctx, query,
		d.InquiryID, d.MaterialID, d.TaskID, d.AssigneeID, d.Status,
		d.Progress, d.StartDate, d.DueDate, d.EstimatedCost, d.ActualCost,
		d.CustomerApproved, d.Remarks,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("ошибка вставки строки заявки: %w", err)
	}
	return nil
}

func (r *inquiryRepo) UpdateDetail(ctx context.Context, inquiryID, detailID int64, upd DetailUpdate) error {
	query := `
		UPDATE inquiry_details SET
			material_id = $1,
			task_id = $2,
			assignee_id = $3,
			status = COALESCE($4, status),
			progress = COALESCE($5, progress),
			start_date = $6,
			due_date = $7,
			estimated_cost = COALESCE($8, estimated_cost),
			actual_cost = COALESCE($9, actual_cost),
			customer_approved = COALESCE($10, customer_approved),
			remarks = $11
		WHERE detail_id = $12 AND inquiry_id = $13
		RETURNING detail_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		upd.MaterialID, upd.TaskID, upd.AssigneeID, upd.Status, upd.Progress,
		upd.StartDate, upd.DueDate, upd.EstimatedCost, upd.ActualCost,
		upd.CustomerApproved, upd.Remarks,
		detailID, inquiryID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления строки заявки: %w", err)
	}
	return nil
}
