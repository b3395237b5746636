package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skyhigh-intl/inquiry-api/internal/config"
	"github.com/skyhigh-intl/inquiry-api/internal/database"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
	"github.com/skyhigh-intl/inquiry-api/internal/storage"
)

// setupInquiryService поднимает контейнер PostgreSQL, накатывает миграции
// и собирает сервис заявок поверх живой БД и временного каталога вложений.
// Требует доступный Docker.
func setupInquiryService(t *testing.T) (*InquiryService, *pgxpool.Pool, *storage.DiskStore) {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("интеграционный тест: установите TEST_INTEGRATION=1 для запуска")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("inquiry_test"),
		postgres.WithUsername("inquiry"),
		postgres.WithPassword("inquiry"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("не удалось запустить контейнер PostgreSQL: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("ошибка остановки контейнера: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("не удалось получить хост контейнера: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("не удалось получить порт контейнера: %v", err)
	}

	t.Setenv("IQ_DB_HOST", host)
	t.Setenv("IQ_DB_PORT", port.Port())
	t.Setenv("IQ_DB_NAME", "inquiry_test")
	t.Setenv("IQ_DB_USER", "inquiry")
	t.Setenv("IQ_DB_PASSWORD", "inquiry")
	t.Setenv("IQ_JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("ошибка применения миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("ошибка подключения к БД: %v", err)
	}
	t.Cleanup(pool.Close)

	store, err := storage.NewDiskStore(t.TempDir(), 10<<20)
	if err != nil {
		t.Fatalf("ошибка создания хранилища вложений: %v", err)
	}

	svc := NewInquiryService(
		repository.NewInquiryRepository(pool),
		repository.NewAttachmentRepository(pool),
		repository.NewAuditRunner(pool),
		store,
		logger,
	)
	return svc, pool, store
}

// seedCustomer создаёт клиента для тестовых заявок.
func seedCustomer(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	c := &model.Customer{Name: name}
	err := repository.NewAuditRunner(pool).RunAsUser(context.Background(), "seed", func(tx pgx.Tx) error {
		return repository.NewCustomerRepository(tx).Create(context.Background(), c)
	})
	if err != nil {
		t.Fatalf("не удалось создать клиента: %v", err)
	}
	return c.ID
}

func intPtr(i int) *int               { return &i }
func int64Ptr(i int64) *int64         { return &i }
func floatPtr(f float64) *float64     { return &f }
func timePtr(tm time.Time) *time.Time { return &tm }

func TestInquiryCreateAndGet(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Acme Corp")

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "Запрос на образцы гранита",
		CustomerID:  customerID,
		Details: []DetailInput{
			{DueDate: timePtr(due), EstimatedCost: floatPtr(1500)},
			{Progress: intPtr(25), Status: strPtr(model.StatusInProgress)},
		},
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}
	if header.ID == 0 {
		t.Fatal("Create() не заполнил ID заголовка")
	}
	// Номер формата INQ-YYYYMM-NNNNNN с текущим месяцем
	wantPrefix := "INQ-" + time.Now().UTC().Format("200601") + "-000001"
	if header.InquiryNumber != wantPrefix {
		t.Errorf("InquiryNumber = %q, ожидается %q", header.InquiryNumber, wantPrefix)
	}

	agg, err := svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if agg.Header.Description != "Запрос на образцы гранита" {
		t.Errorf("Description = %q", agg.Header.Description)
	}
	if agg.Header.CustomerName == nil || *agg.Header.CustomerName != "Acme Corp" {
		t.Errorf("CustomerName = %v, ожидается Acme Corp", agg.Header.CustomerName)
	}
	if agg.Header.CreatedBy != "ivanov" {
		t.Errorf("CreatedBy = %q, ожидается ivanov", agg.Header.CreatedBy)
	}
	if len(agg.Details) != 2 {
		t.Fatalf("len(Details) = %d, ожидается 2", len(agg.Details))
	}
	// Значения по умолчанию для незаполненных полей строки
	if agg.Details[0].Status != model.StatusNotStarted {
		t.Errorf("Details[0].Status = %q, ожидается Not Started", agg.Details[0].Status)
	}
	if agg.Details[0].CustomerApproved != model.ApprovalNA {
		t.Errorf("Details[0].CustomerApproved = %q, ожидается NA", agg.Details[0].CustomerApproved)
	}
	if agg.Details[0].EstimatedCost != 1500 {
		t.Errorf("Details[0].EstimatedCost = %v, ожидается 1500", agg.Details[0].EstimatedCost)
	}
	if agg.Details[1].Progress != 25 {
		t.Errorf("Details[1].Progress = %d, ожидается 25", agg.Details[1].Progress)
	}
}

func TestInquiryCreateConcurrent(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Wayne Enterprises")

	const workers = 8
	numbers := make(chan string, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
				Description: "Конкурентная заявка",
				CustomerID:  customerID,
				Details:     []DetailInput{{}},
			})
			if err != nil {
				errs <- err
				return
			}
			numbers <- header.InquiryNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Errorf("Create() вернул ошибку: %v", err)
	}

	// Все номера различны: advisory-блокировка сериализует генераторы
	seen := make(map[string]bool)
	for n := range numbers {
		if seen[n] {
			t.Errorf("номер %q выдан дважды", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Errorf("уникальных номеров = %d, ожидается %d", len(seen), workers)
	}
}

func TestInquiryCreateValidation(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Globex")

	tests := []struct {
		name string
		in   CreateInquiryInput
	}{
		{
			name: "без клиента",
			in:   CreateInquiryInput{Description: "..."},
		},
		{
			name: "без описания",
			in:   CreateInquiryInput{CustomerID: customerID},
		},
		{
			name: "недопустимый статус заголовка",
			in: CreateInquiryInput{
				Description: "...", CustomerID: customerID,
				Status: strPtr("Done"),
			},
		},
		{
			name: "недопустимый статус строки",
			in: CreateInquiryInput{
				Description: "...", CustomerID: customerID,
				Details: []DetailInput{{Status: strPtr("Done")}},
			},
		},
		{
			name: "прогресс вне диапазона",
			in: CreateInquiryInput{
				Description: "...", CustomerID: customerID,
				Details: []DetailInput{{Progress: intPtr(101)}},
			},
		},
		{
			name: "недопустимое подтверждение",
			in: CreateInquiryInput{
				Description: "...", CustomerID: customerID,
				Details: []DetailInput{{CustomerApproved: strPtr("Maybe")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "ivanov", tt.in)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, ожидается ErrValidation", err)
			}
		})
	}

	// Невалидные входные данные не оставляют следов в БД
	headers, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(headers) != 0 {
		t.Errorf("len(headers) = %d, ожидается 0", len(headers))
	}
}

func TestInquiryCreateAtomicity(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Initech")

	// Вторая строка ссылается на несуществующий материал: FK валит
	// транзакцию, заголовок и первая строка не должны сохраниться
	_, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "Заявка с битой строкой",
		CustomerID:  customerID,
		Details: []DetailInput{
			{},
			{MaterialID: int64Ptr(99999)},
		},
	})
	if err == nil {
		t.Fatal("Create() не вернул ошибку при нарушении внешнего ключа")
	}

	headers, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(headers) != 0 {
		t.Errorf("len(headers) после отката = %d, ожидается 0", len(headers))
	}
}

func TestInquiryUpdate(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Hooli")

	header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "Исходное описание",
		CustomerID:  customerID,
		Details:     []DetailInput{{}, {}},
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}

	// Details == nil: строки не трогаются
	err = svc.Update(ctx, "petrov", header.ID, UpdateInquiryInput{
		Status: strPtr(model.StatusInProgress),
	})
	if err != nil {
		t.Fatalf("Update() вернул ошибку: %v", err)
	}

	agg, err := svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if agg.Header.Status != model.StatusInProgress {
		t.Errorf("Status = %q, ожидается In Progress", agg.Header.Status)
	}
	if agg.Header.Description != "Исходное описание" {
		t.Errorf("Description = %q, ожидается без изменений", agg.Header.Description)
	}
	if len(agg.Details) != 2 {
		t.Errorf("len(Details) = %d, ожидается 2 (строки не тронуты)", len(agg.Details))
	}
	if agg.Header.ModifiedBy != "petrov" {
		t.Errorf("ModifiedBy = %q, ожидается petrov", agg.Header.ModifiedBy)
	}

	// Непустой список: полная замена строк
	err = svc.Update(ctx, "petrov", header.ID, UpdateInquiryInput{
		Details: []DetailInput{{Progress: intPtr(75)}},
	})
	if err != nil {
		t.Fatalf("Update() с заменой строк вернул ошибку: %v", err)
	}
	agg, err = svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if len(agg.Details) != 1 {
		t.Fatalf("len(Details) после замены = %d, ожидается 1", len(agg.Details))
	}
	if agg.Details[0].Progress != 75 {
		t.Errorf("Progress = %d, ожидается 75", agg.Details[0].Progress)
	}

	// Пустой (но не nil) список удаляет все строки
	err = svc.Update(ctx, "petrov", header.ID, UpdateInquiryInput{
		Details: []DetailInput{},
	})
	if err != nil {
		t.Fatalf("Update() с пустым списком вернул ошибку: %v", err)
	}
	agg, err = svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if len(agg.Details) != 0 {
		t.Errorf("len(Details) после очистки = %d, ожидается 0", len(agg.Details))
	}

	// Обновление несуществующей заявки
	err = svc.Update(ctx, "petrov", header.ID+100, UpdateInquiryInput{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() несуществующей заявки: err = %v, ожидается ErrNotFound", err)
	}
}

func TestInquiryUpdateAtomicity(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Stark Industries")

	header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "Исходное описание",
		CustomerID:  customerID,
		Details: []DetailInput{
			{Remarks: strPtr("первая строка")},
			{Remarks: strPtr("вторая строка")},
		},
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}

	// Вторая строка замены ссылается на несуществующий материал: FK валит
	// транзакцию, и замена строк вместе с изменением заголовка откатывается
	err = svc.Update(ctx, "petrov", header.ID, UpdateInquiryInput{
		Description: strPtr("Новое описание"),
		Details: []DetailInput{
			{Remarks: strPtr("замена")},
			{MaterialID: int64Ptr(99999)},
		},
	})
	if err == nil {
		t.Fatal("Update() не вернул ошибку при нарушении внешнего ключа")
	}

	agg, err := svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if agg.Header.Description != "Исходное описание" {
		t.Errorf("Description = %q, ожидается без изменений", agg.Header.Description)
	}
	if agg.Header.ModifiedBy != "ivanov" {
		t.Errorf("ModifiedBy = %q, ожидается ivanov", agg.Header.ModifiedBy)
	}
	if len(agg.Details) != 2 {
		t.Fatalf("len(Details) после отката = %d, ожидается 2", len(agg.Details))
	}
	remarks := map[string]bool{}
	for _, d := range agg.Details {
		if d.Remarks != nil {
			remarks[*d.Remarks] = true
		}
	}
	if !remarks["первая строка"] || !remarks["вторая строка"] {
		t.Errorf("строки после отката = %v, ожидаются исходные", remarks)
	}
}

func TestInquiryUpdateDetail(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Umbrella")

	header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "Заявка",
		CustomerID:  customerID,
		Details:     []DetailInput{{}},
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}
	agg, err := svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	detailID := agg.Details[0].ID

	err = svc.UpdateDetail(ctx, "petrov", header.ID, detailID, DetailInput{
		Status:   strPtr(model.StatusCompleted),
		Progress: intPtr(100),
	})
	if err != nil {
		t.Fatalf("UpdateDetail() вернул ошибку: %v", err)
	}

	agg, err = svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if agg.Details[0].Status != model.StatusCompleted {
		t.Errorf("Status = %q, ожидается Completed", agg.Details[0].Status)
	}
	if agg.Details[0].Progress != 100 {
		t.Errorf("Progress = %d, ожидается 100", agg.Details[0].Progress)
	}
	if agg.Details[0].ModifiedBy != "petrov" {
		t.Errorf("ModifiedBy = %q, ожидается petrov", agg.Details[0].ModifiedBy)
	}

	err = svc.UpdateDetail(ctx, "petrov", header.ID, detailID+100, DetailInput{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDetail() несуществующей строки: err = %v, ожидается ErrNotFound", err)
	}
}

func TestInquiryDelete(t *testing.T) {
	svc, pool, _ := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Massive Dynamic")

	header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "На удаление",
		CustomerID:  customerID,
		Details:     []DetailInput{{}},
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}

	if err := svc.Delete(ctx, header.ID); err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}
	if _, err := svc.Get(ctx, header.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() после удаления: err = %v, ожидается ErrNotFound", err)
	}

	if err := svc.Delete(ctx, header.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete(): err = %v, ожидается ErrNotFound", err)
	}
}

// storeAttachment сохраняет файл в хранилище и регистрирует вложение
// у заголовка либо строки заявки. Возвращает имя файла в хранилище.
func storeAttachment(t *testing.T, pool *pgxpool.Pool, store *storage.DiskStore, inquiryID, detailID *int64) string {
	t.Helper()

	name, size, err := store.Store(strings.NewReader("%PDF-1.4 тест"), "report.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("не удалось сохранить файл: %v", err)
	}
	a := &model.Attachment{
		InquiryID:        inquiryID,
		DetailID:         detailID,
		OriginalFilename: "report.pdf",
		StoredFilename:   name,
		Size:             size,
		MimeType:         "application/pdf",
	}
	err = repository.NewAuditRunner(pool).RunAsUser(context.Background(), "ivanov", func(tx pgx.Tx) error {
		return repository.NewAttachmentRepository(tx).Create(context.Background(), a)
	})
	if err != nil {
		t.Fatalf("не удалось зарегистрировать вложение: %v", err)
	}
	return name
}

func TestInquiryDeleteSweepsFiles(t *testing.T) {
	svc, pool, store := setupInquiryService(t)
	ctx := context.Background()
	customerID := seedCustomer(t, pool, "Cyberdyne")

	header, err := svc.Create(ctx, "ivanov", CreateInquiryInput{
		Description: "С вложениями",
		CustomerID:  customerID,
		Details:     []DetailInput{{}},
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}
	agg, err := svc.Get(ctx, header.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	detailID := agg.Details[0].ID

	headerFile := storeAttachment(t, pool, store, &header.ID, nil)
	detailFile := storeAttachment(t, pool, store, nil, &detailID)

	if err := svc.Delete(ctx, header.ID); err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}

	// Файлы вложений заголовка и строки подчищены с диска
	if _, err := store.Open(headerFile); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("файл вложения заголовка: err = %v, ожидается ErrNotFound", err)
	}
	if _, err := store.Open(detailFile); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("файл вложения строки: err = %v, ожидается ErrNotFound", err)
	}
}
