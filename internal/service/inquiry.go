// inquiry.go — сервис заявок: агрегат заголовок + строки.
// Все записи идут в одной транзакции от имени пользователя аудита.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
	"github.com/skyhigh-intl/inquiry-api/internal/storage"
)

// DetailInput — входные данные одной строки заявки.
// Незаполненные поля получают значения по умолчанию.
type DetailInput struct {
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

// CreateInquiryInput — входные данные создания заявки.
type CreateInquiryInput struct {
	InquiryDate       *time.Time
	Description       string
	CustomerID        int64
	ProductCategoryID *int64
	Status            *string
	InquiryGroup      *string
	Remarks           *string
	Conclusion        *string
	Details           []DetailInput
}

// UpdateInquiryInput — входные данные обновления заявки.
// Description, CustomerID, Status и InquiryDate: nil — оставить как есть.
// ProductCategoryID, InquiryGroup, Remarks, Conclusion перезаписываются
// всегда, nil очищает колонку. Details == nil — строки не трогаются;
// непустой или пустой список — полная замена строк.
type UpdateInquiryInput struct {
	InquiryDate       *time.Time
	Description       *string
	CustomerID        *int64
	ProductCategoryID *int64
	Status            *string
	InquiryGroup      *string
	Remarks           *string
	Conclusion        *string
	Details           []DetailInput
}

// InquiryAggregate — заявка целиком: заголовок, строки со своими
// вложениями и вложения заголовка.
type InquiryAggregate struct {
	Header            *model.InquiryHeader
	Details           []*model.InquiryDetail
	HeaderAttachments []*model.Attachment
}

// InquiryService — бизнес-логика заявок.
type InquiryService struct {
	inquiries   repository.InquiryRepository
	attachments repository.AttachmentRepository
	audit       *repository.AuditRunner
	store       *storage.DiskStore
	logger      *slog.Logger
}

// NewInquiryService создаёт сервис заявок.
func NewInquiryService(
	inquiries repository.InquiryRepository,
	attachments repository.AttachmentRepository,
	audit *repository.AuditRunner,
	store *storage.DiskStore,
	logger *slog.Logger,
) *InquiryService {
	return &InquiryService{
		inquiries:   inquiries,
		attachments: attachments,
		audit:       audit,
		store:       store,
		logger:      logger.With(slog.String("component", "inquiry_service")),
	}
}

// List возвращает все заголовки заявок.
func (s *InquiryService) List(ctx context.Context) ([]*model.InquiryHeader, error) {
	headers, err := s.inquiries.ListHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("список заявок: %w", err)
	}
	return headers, nil
}

// Get возвращает заявку целиком: заголовок, строки и вложения.
func (s *InquiryService) Get(ctx context.Context, inquiryID int64) (*InquiryAggregate, error) {
	header, err := s.inquiries.GetHeader(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: заявка %d", ErrNotFound, inquiryID)
		}
		return nil, fmt.Errorf("получение заявки: %w", err)
	}

	details, err := s.inquiries.ListDetails(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("строки заявки: %w", err)
	}

	headerAttachments, err := s.attachments.ListByInquiry(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("вложения заявки: %w", err)
	}

	detailIDs := make([]int64, 0, len(details))
	for _, d := range details {
		detailIDs = append(detailIDs, d.ID)
	}
	byDetail, err := s.attachments.ListByDetails(ctx, detailIDs)
	if err != nil {
		return nil, fmt.Errorf("вложения строк: %w", err)
	}
	for _, d := range details {
		d.Attachments = byDetail[d.ID]
	}

	return &InquiryAggregate{
		Header:            header,
		Details:           details,
		HeaderAttachments: headerAttachments,
	}, nil
}

// validateDetail проверяет статус, прогресс и подтверждение строки.
func validateDetail(d DetailInput) error {
	if d.Status != nil && !model.IsValidDetailStatus(*d.Status) {
		return fmt.Errorf("%w: недопустимый статус строки '%s'", ErrValidation, *d.Status)
	}
	if d.Progress != nil && (*d.Progress < 0 || *d.Progress > 100) {
		return fmt.Errorf("%w: прогресс должен быть в диапазоне 0-100", ErrValidation)
	}
	if d.CustomerApproved != nil && !model.IsValidApproval(*d.CustomerApproved) {
		return fmt.Errorf("%w: недопустимое подтверждение '%s'", ErrValidation, *d.CustomerApproved)
	}
	return nil
}

// detailFromInput строит строку заявки с подстановкой значений по умолчанию.
func detailFromInput(inquiryID int64, in DetailInput) *model.InquiryDetail {
	d := &model.InquiryDetail{
		InquiryID:        inquiryID,
		MaterialID:       in.MaterialID,
		TaskID:           in.TaskID,
		AssigneeID:       in.AssigneeID,
		Status:           model.StatusNotStarted,
		CustomerApproved: model.ApprovalNA,
		StartDate:        in.StartDate,
		DueDate:          in.DueDate,
		Remarks:          in.Remarks,
	}
	if in.Status != nil {
		d.Status = *in.Status
	}
	if in.Progress != nil {
		d.Progress = *in.Progress
	}
	if in.EstimatedCost != nil {
		d.EstimatedCost = *in.EstimatedCost
	}
	if in.ActualCost != nil {
		d.ActualCost = *in.ActualCost
	}
	if in.CustomerApproved != nil {
		d.CustomerApproved = *in.CustomerApproved
	}
	return d
}

// Create создаёт заявку с номером и строками в одной транзакции.
// При гонке за номер (нарушение уникальности) создание повторяется один раз.
func (s *InquiryService) Create(ctx context.Context, actingUser string, in CreateInquiryInput) (*model.InquiryHeader, error) {
	// Валидация до открытия транзакции
	if in.CustomerID == 0 || in.Description == "" {
		return nil, fmt.Errorf("%w: клиент и описание обязательны", ErrValidation)
	}
	if in.Status != nil && !model.IsValidHeaderStatus(*in.Status) {
		return nil, fmt.Errorf("%w: недопустимый статус '%s'", ErrValidation, *in.Status)
	}
	for i, d := range in.Details {
		if err := validateDetail(d); err != nil {
			return nil, fmt.Errorf("строка %d: %w", i+1, err)
		}
	}

	header, err := s.createOnce(ctx, actingUser, in)
	if errors.Is(err, repository.ErrConflict) {
		// Номер успел занять конкурент — повторяем с новым номером.
		s.logger.Warn("Конфликт номера заявки, повтор создания")
		header, err = s.createOnce(ctx, actingUser, in)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: не удалось выделить номер заявки", ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("Заявка создана",
		slog.String("inquiry_number", header.InquiryNumber),
		slog.Int64("inquiry_id", header.ID),
		slog.String("user", actingUser),
		slog.Int("details", len(in.Details)),
	)
	return header, nil
}

func (s *InquiryService) createOnce(ctx context.Context, actingUser string, in CreateInquiryInput) (*model.InquiryHeader, error) {
	header := &model.InquiryHeader{
		InquiryDate: time.Now().UTC(),
		Description: in.Description,
		CustomerID:  in.CustomerID,
		Status:      model.StatusNotStarted,

		ProductCategoryID: in.ProductCategoryID,
		InquiryGroup:      in.InquiryGroup,
		Remarks:           in.Remarks,
		Conclusion:        in.Conclusion,
	}
	if in.InquiryDate != nil {
		header.InquiryDate = *in.InquiryDate
	}
	if in.Status != nil {
		header.Status = *in.Status
	}

	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		repo := repository.NewInquiryRepository(tx)

		number, err := repo.NextNumber(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("генерация номера: %w", err)
		}
		header.InquiryNumber = number

		if err := repo.InsertHeader(ctx, header); err != nil {
			return err
		}
		// Строки вставляются в порядке входного списка
		for _, d := range in.Details {
			if err := repo.InsertDetail(ctx, detailFromInput(header.ID, d)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		if errors.Is(err, repository.ErrNumberExhausted) {
			return nil, fmt.Errorf("%w: %s", ErrNumberExhausted, time.Now().UTC().Format("200601"))
		}
		return nil, fmt.Errorf("создание заявки: %w", err)
	}
	return header, nil
}

// Update обновляет заголовок и, если передан список строк,
// полностью заменяет строки заявки. Всё в одной транзакции.
func (s *InquiryService) Update(ctx context.Context, actingUser string, inquiryID int64, in UpdateInquiryInput) error {
	if in.Status != nil && !model.IsValidHeaderStatus(*in.Status) {
		return fmt.Errorf("%w: недопустимый статус '%s'", ErrValidation, *in.Status)
	}
	for i, d := range in.Details {
		if err := validateDetail(d); err != nil {
			return fmt.Errorf("строка %d: %w", i+1, err)
		}
	}

	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		repo := repository.NewInquiryRepository(tx)

		upd := repository.HeaderUpdate{
			InquiryDate:       in.InquiryDate,
			Description:       in.Description,
			CustomerID:        in.CustomerID,
			Status:            in.Status,
			ProductCategoryID: in.ProductCategoryID,
			InquiryGroup:      in.InquiryGroup,
			Remarks:           in.Remarks,
			Conclusion:        in.Conclusion,
		}
		if err := repo.UpdateHeader(ctx, inquiryID, upd); err != nil {
			return err
		}

		// nil — строки не трогаем; иначе полная замена списка
		if in.Details == nil {
			return nil
		}
		if err := repo.DeleteDetails(ctx, inquiryID); err != nil {
			return err
		}
		for _, d := range in.Details {
			if err := repo.InsertDetail(ctx, detailFromInput(inquiryID, d)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: заявка %d", ErrNotFound, inquiryID)
		}
		return fmt.Errorf("обновление заявки: %w", err)
	}

	s.logger.Info("Заявка обновлена",
		slog.Int64("inquiry_id", inquiryID),
		slog.String("user", actingUser),
		slog.Bool("details_replaced", in.Details != nil),
	)
	return nil
}

// UpdateDetail обновляет одну строку заявки одним аудируемым запросом.
func (s *InquiryService) UpdateDetail(ctx context.Context, actingUser string, inquiryID, detailID int64, in DetailInput) error {
	if err := validateDetail(in); err != nil {
		return err
	}

	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewInquiryRepository(tx).UpdateDetail(ctx, inquiryID, detailID, repository.DetailUpdate{
			MaterialID:       in.MaterialID,
			TaskID:           in.TaskID,
			AssigneeID:       in.AssigneeID,
			Status:           in.Status,
			Progress:         in.Progress,
			StartDate:        in.StartDate,
			DueDate:          in.DueDate,
			EstimatedCost:    in.EstimatedCost,
			ActualCost:       in.ActualCost,
			CustomerApproved: in.CustomerApproved,
			Remarks:          in.Remarks,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: строка %d заявки %d", ErrNotFound, detailID, inquiryID)
		}
		return fmt.Errorf("обновление строки: %w", err)
	}

	s.logger.Info("Строка заявки обновлена",
		slog.Int64("inquiry_id", inquiryID),
		slog.Int64("detail_id", detailID),
		slog.String("user", actingUser),
	)
	return nil
}

// Delete удаляет заявку; строки и записи вложений каскадируются БД.
// Файлы вложений подчищаются с диска после удаления, по возможности.
func (s *InquiryService) Delete(ctx context.Context, inquiryID int64) error {
	// Имена файлов собираются до удаления: после каскада записей не будет.
	storedNames := s.collectStoredFiles(ctx, inquiryID)

	if err := s.inquiries.DeleteHeader(ctx, inquiryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: заявка %d", ErrNotFound, inquiryID)
		}
		return fmt.Errorf("удаление заявки: %w", err)
	}

	for _, name := range storedNames {
		if err := s.store.Remove(name); err != nil {
			s.logger.Warn("Заявка удалена, но файл вложения остался на диске",
				slog.Int64("inquiry_id", inquiryID),
				slog.String("stored_filename", name),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("Заявка удалена",
		slog.Int64("inquiry_id", inquiryID),
		slog.Int("swept_files", len(storedNames)),
	)
	return nil
}

// collectStoredFiles возвращает имена файлов всех вложений заявки:
// заголовка и её строк. Ошибки чтения не мешают удалению, только логируются.
func (s *InquiryService) collectStoredFiles(ctx context.Context, inquiryID int64) []string {
	var names []string

	headerAtt, err := s.attachments.ListByInquiry(ctx, inquiryID)
	if err != nil {
		s.logger.Warn("Не удалось получить вложения заголовка перед удалением",
			slog.Int64("inquiry_id", inquiryID), slog.Any("error", err))
	}
	for _, a := range headerAtt {
		names = append(names, a.StoredFilename)
	}

	details, err := s.inquiries.ListDetails(ctx, inquiryID)
	if err != nil {
		s.logger.Warn("Не удалось получить строки заявки перед удалением",
			slog.Int64("inquiry_id", inquiryID), slog.Any("error", err))
		return names
	}
	detailIDs := make([]int64, 0, len(details))
	for _, d := range details {
		detailIDs = append(detailIDs, d.ID)
	}
	byDetail, err := s.attachments.ListByDetails(ctx, detailIDs)
	if err != nil {
		s.logger.Warn("Не удалось получить вложения строк перед удалением",
			slog.Int64("inquiry_id", inquiryID), slog.Any("error", err))
		return names
	}
	for _, list := range byDetail {
		for _, a := range list {
			names = append(names, a.StoredFilename)
		}
	}
	return names
}
