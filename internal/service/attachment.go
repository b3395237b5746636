// attachment.go — сервис вложений: файлы на диске, метаданные в БД.
// Файл и запись создаются не атомарно: при сбое вставки файл удаляется,
// при удалении записи файл подчищается по возможности.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
	"github.com/skyhigh-intl/inquiry-api/internal/storage"
)

// UploadFile — один загружаемый файл.
type UploadFile struct {
	Name     string
	MimeType string
	Content  io.Reader
}

// AttachmentService — загрузка, выдача и удаление вложений.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	audit       *repository.AuditRunner
	store       *storage.DiskStore
	logger      *slog.Logger
}

// NewAttachmentService создаёт сервис вложений.
func NewAttachmentService(
	attachments repository.AttachmentRepository,
	audit *repository.AuditRunner,
	store *storage.DiskStore,
	logger *slog.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		audit:       audit,
		store:       store,
		logger:      logger.With(slog.String("component", "attachment_service")),
	}
}

// UploadToInquiry загружает файлы к заголовку заявки.
func (s *AttachmentService) UploadToInquiry(ctx context.Context, actingUser string, inquiryID int64, files []UploadFile) ([]*model.Attachment, error) {
	exists, err := s.attachments.InquiryExists(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("проверка заявки: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: заявка %d", ErrNotFound, inquiryID)
	}
	return s.upload(ctx, actingUser, &inquiryID, nil, files)
}

// UploadToDetail загружает файлы к строке заявки.
func (s *AttachmentService) UploadToDetail(ctx context.Context, actingUser string, detailID int64, files []UploadFile) ([]*model.Attachment, error) {
	exists, err := s.attachments.DetailExists(ctx, detailID)
	if err != nil {
		return nil, fmt.Errorf("проверка строки заявки: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: строка заявки %d", ErrNotFound, detailID)
	}
	return s.upload(ctx, actingUser, nil, &detailID, files)
}

// upload сохраняет файлы на диск и регистрирует записи вложений.
// При ошибке вставки сохранённый файл удаляется (компенсация).
func (s *AttachmentService) upload(ctx context.Context, actingUser string, inquiryID, detailID *int64, files []UploadFile) ([]*model.Attachment, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: файлы не переданы", ErrValidation)
	}

	var uploaded []*model.Attachment
	for _, f := range files {
		storedName, size, err := s.store.Store(f.Content, f.Name, f.MimeType)
		if err != nil {
			if errors.Is(err, storage.ErrTypeNotAllowed) || errors.Is(err, storage.ErrTooLarge) {
				return nil, fmt.Errorf("%w: %s: %s", ErrValidation, f.Name, err)
			}
			return nil, fmt.Errorf("сохранение файла '%s': %w", f.Name, err)
		}

		a := &model.Attachment{
			InquiryID:        inquiryID,
			DetailID:         detailID,
			OriginalFilename: f.Name,
			StoredFilename:   storedName,
			Size:             size,
			MimeType:         f.MimeType,
		}
		err = s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
			return repository.NewAttachmentRepository(tx).Create(ctx, a)
		})
		if err != nil {
			if rmErr := s.store.Remove(storedName); rmErr != nil {
				s.logger.Warn("Не удалось удалить файл после сбоя вставки",
					slog.String("stored_filename", storedName), slog.Any("error", rmErr))
			}
			return nil, fmt.Errorf("регистрация вложения '%s': %w", f.Name, err)
		}
		uploaded = append(uploaded, a)
	}

	s.logger.Info("Файлы загружены",
		slog.Int("count", len(uploaded)),
		slog.String("user", actingUser),
	)
	return uploaded, nil
}

// ListForInquiry возвращает вложения заголовка заявки.
func (s *AttachmentService) ListForInquiry(ctx context.Context, inquiryID int64) ([]*model.Attachment, error) {
	attachments, err := s.attachments.ListByInquiry(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("вложения заявки: %w", err)
	}
	return attachments, nil
}

// ListForDetail возвращает вложения строки заявки.
func (s *AttachmentService) ListForDetail(ctx context.Context, detailID int64) ([]*model.Attachment, error) {
	attachments, err := s.attachments.ListByDetail(ctx, detailID)
	if err != nil {
		return nil, fmt.Errorf("вложения строки: %w", err)
	}
	return attachments, nil
}

// Open возвращает метаданные вложения и открытый файл.
// Закрытие файла — обязанность вызывающего.
func (s *AttachmentService) Open(ctx context.Context, attachmentID int64) (*model.Attachment, *os.File, error) {
	a, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: вложение %d", ErrNotFound, attachmentID)
		}
		return nil, nil, fmt.Errorf("получение вложения: %w", err)
	}

	f, err := s.store.Open(a.StoredFilename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: файл вложения %d отсутствует на диске", ErrNotFound, attachmentID)
		}
		return nil, nil, fmt.Errorf("открытие вложения: %w", err)
	}
	return a, f, nil
}

// Delete удаляет запись вложения и затем файл.
// Сбой удаления файла не откатывает удаление записи.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID int64) error {
	a, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: вложение %d", ErrNotFound, attachmentID)
		}
		return fmt.Errorf("получение вложения: %w", err)
	}

	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: вложение %d", ErrNotFound, attachmentID)
		}
		return fmt.Errorf("удаление вложения: %w", err)
	}

	if err := s.store.Remove(a.StoredFilename); err != nil {
		s.logger.Warn("Запись удалена, но файл остался на диске",
			slog.String("stored_filename", a.StoredFilename), slog.Any("error", err))
	}

	s.logger.Info("Вложение удалено",
		slog.Int64("attachment_id", attachmentID),
		slog.String("filename", a.OriginalFilename),
	)
	return nil
}
