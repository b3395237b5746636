package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// AttachmentRepository — доступ к таблице attachments.
// Вложение привязано ровно к одному владельцу: заголовку или строке заявки.
type AttachmentRepository interface {
	// Create вставляет запись вложения и заполняет a.ID.
	Create(ctx context.Context, a *model.Attachment) error
	// GetByID возвращает вложение по ID.
	GetByID(ctx context.Context, attachmentID int64) (*model.Attachment, error)
	// ListByInquiry возвращает вложения заголовка, новые первыми.
	ListByInquiry(ctx context.Context, inquiryID int64) ([]*model.Attachment, error)
	// ListByDetail возвращает вложения строки, новые первыми.
	ListByDetail(ctx context.Context, detailID int64) ([]*model.Attachment, error)
	// ListByDetails возвращает вложения нескольких строк одним запросом.
	ListByDetails(ctx context.Context, detailIDs []int64) (map[int64][]*model.Attachment, error)
	// Delete удаляет запись вложения.
	Delete(ctx context.Context, attachmentID int64) error
	// InquiryExists проверяет существование заголовка заявки.
	InquiryExists(ctx context.Context, inquiryID int64) (bool, error)
	// DetailExists проверяет существование строки заявки.
	DetailExists(ctx context.Context, detailID int64) (bool, error)
}

type attachmentRepo struct {
	db DBTX
}

// NewAttachmentRepository создаёт репозиторий вложений.
func NewAttachmentRepository(db DBTX) AttachmentRepository {
	return &attachmentRepo{db: db}
}

const attachmentColumns = `
	attachment_id, inquiry_id, detail_id, original_filename, stored_filename,
	file_size, mime_type, created_by, created_at, modified_by, modified_at`

func scanAttachment(row pgx.Row, a *model.Attachment) error {
	return row.Scan(
		&a.ID, &a.InquiryID, &a.DetailID, &a.OriginalFilename, &a.StoredFilename,
		&a.Size, &a.MimeType, &a.CreatedBy, &a.CreatedAt, &a.ModifiedBy, &a.ModifiedAt,
	)
}

func (r *attachmentRepo) Create(ctx context.Context, a *model.Attachment) error {
	query := `
		INSERT INTO attachments (
			inquiry_id, detail_id, original_filename, stored_filename, file_size, mime_type
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING attachment_id`

	err := r.db.QueryRow(ctx, query,
		a.InquiryID, a.DetailID, a.OriginalFilename, a.StoredFilename, a.Size, a.MimeType,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: файл с таким именем уже сохранён", ErrConflict)
		}
		return fmt.Errorf("ошибка регистрации вложения: %w", err)
	}
	return nil
}

func (r *attachmentRepo) GetByID(ctx context.Context, attachmentID int64) (*model.Attachment, error) {
	query := `
		SELECT` + attachmentColumns + `
		FROM attachments
		WHERE attachment_id = $1`

	a := &model.Attachment{}
	if err := scanAttachment(r.db.QueryRow(ctx, query, attachmentID), a); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения вложения: %w", err)
	}
	return a, nil
}

func (r *attachmentRepo) listWhere(ctx context.Context, where string, arg any) ([]*model.Attachment, error) {
	query := `
		SELECT` + attachmentColumns + `
		FROM attachments
		WHERE ` + where + `
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка вложений: %w", err)
	}
	defer rows.Close()

	var attachments []*model.Attachment
	for rows.Next() {
		a := &model.Attachment{}
		if err := scanAttachment(rows, a); err != nil {
			return nil, fmt.Errorf("ошибка чтения вложения: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *attachmentRepo) ListByInquiry(ctx context.Context, inquiryID int64) ([]*model.Attachment, error) {
	return r.listWhere(ctx, "inquiry_id = $1", inquiryID)
}

func (r *attachmentRepo) ListByDetail(ctx context.Context, detailID int64) ([]*model.Attachment, error) {
	return r.listWhere(ctx, "detail_id = $1", detailID)
}

func (r *attachmentRepo) ListByDetails(ctx context.Context, detailIDs []int64) (map[int64][]*model.Attachment, error) {
	grouped := make(map[int64][]*model.Attachment)
	if len(detailIDs) == 0 {
		return grouped, nil
	}

	attachments, err := r.listWhere(ctx, "detail_id = ANY($1)", detailIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		grouped[*a.DetailID] = append(grouped[*a.DetailID], a)
	}
	return grouped, nil
}

func (r *attachmentRepo) Delete(ctx context.Context, attachmentID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM attachments WHERE attachment_id = $1`, attachmentID)
	if err != nil {
		return fmt.Errorf("ошибка удаления вложения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attachmentRepo) InquiryExists(ctx context.Context, inquiryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inquiry_headers WHERE inquiry_id = $1)`, inquiryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки заявки: %w", err)
	}
	return exists, nil
}

func (r *attachmentRepo) DetailExists(ctx context.Context, detailID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inquiry_details WHERE detail_id = $1)`, detailID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки строки заявки: %w", err)
	}
	return exists, nil
}
