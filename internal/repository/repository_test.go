package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
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
)

// setupTestDB поднимает контейнер PostgreSQL, накатывает миграции
// и возвращает пул соединений. Требует доступный Docker.
func setupTestDB(t *testing.T) *pgxpool.Pool {
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

	return pool
}

// createCountry — справочная страна для тестовых данных.
func createCountry(t *testing.T, pool *pgxpool.Pool, actingUser, name string) *model.Country {
	t.Helper()
	c := &model.Country{Name: name}
	err := NewAuditRunner(pool).RunAsUser(context.Background(), actingUser, func(tx pgx.Tx) error {
		return NewLookupRepository(tx).CreateCountry(context.Background(), c)
	})
	if err != nil {
		t.Fatalf("не удалось создать страну: %v", err)
	}
	return c
}

// createCustomer — клиент для тестовых данных.
func createCustomer(t *testing.T, pool *pgxpool.Pool, actingUser, name string, countryID *int64) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, CountryID: countryID}
	err := NewAuditRunner(pool).RunAsUser(context.Background(), actingUser, func(tx pgx.Tx) error {
		return NewCustomerRepository(tx).Create(context.Background(), c)
	})
	if err != nil {
		t.Fatalf("не удалось создать клиента: %v", err)
	}
	return c
}

func TestAuditAttribution(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)
	lookups := NewLookupRepository(pool)

	country := createCountry(t, pool, "ivanov", "Italy")

	got, err := lookups.GetCountry(ctx, country.ID)
	if err != nil {
		t.Fatalf("GetCountry() вернул ошибку: %v", err)
	}
	if got.CreatedBy != "ivanov" {
		t.Errorf("CreatedBy = %q, ожидается ivanov", got.CreatedBy)
	}
	if got.ModifiedBy != "ivanov" {
		t.Errorf("ModifiedBy = %q, ожидается ivanov", got.ModifiedBy)
	}
	// У нетронутой записи modified_at совпадает с created_at
	if !got.ModifiedAt.Equal(got.CreatedAt) {
		t.Errorf("ModifiedAt = %v, ожидается равенство CreatedAt = %v", got.ModifiedAt, got.CreatedAt)
	}

	// Обновление другим пользователем: автор сохраняется, редактор меняется
	got.Name = "Italia"
	err = runner.RunAsUser(ctx, "petrov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).UpdateCountry(ctx, got)
	})
	if err != nil {
		t.Fatalf("UpdateCountry() вернул ошибку: %v", err)
	}

	updated, err := lookups.GetCountry(ctx, country.ID)
	if err != nil {
		t.Fatalf("GetCountry() вернул ошибку: %v", err)
	}
	if updated.CreatedBy != "ivanov" {
		t.Errorf("CreatedBy после обновления = %q, ожидается ivanov", updated.CreatedBy)
	}
	if updated.ModifiedBy != "petrov" {
		t.Errorf("ModifiedBy = %q, ожидается petrov", updated.ModifiedBy)
	}
	if !updated.ModifiedAt.After(updated.CreatedAt) {
		t.Errorf("ModifiedAt = %v, ожидается позже CreatedAt = %v", updated.ModifiedAt, updated.CreatedAt)
	}
}

func TestAuditEmptyUserFallsBackToSystem(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	country := createCountry(t, pool, "", "France")

	got, err := NewLookupRepository(pool).GetCountry(ctx, country.ID)
	if err != nil {
		t.Fatalf("GetCountry() вернул ошибку: %v", err)
	}
	if got.CreatedBy != "system" {
		t.Errorf("CreatedBy = %q, ожидается system", got.CreatedBy)
	}
}

func TestCountryConflict(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)

	createCountry(t, pool, "ivanov", "Germany")

	dup := &model.Country{Name: "Germany"}
	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).CreateCountry(ctx, dup)
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, ожидается ErrConflict", err)
	}
}

func TestTaskCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)
	lookups := NewLookupRepository(pool)

	desc := "Подготовка образца для клиента"
	task := &model.Task{Name: "Sample Preparation", Description: &desc, DefaultDurationDays: 7}
	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).CreateTask(ctx, task)
	})
	if err != nil {
		t.Fatalf("CreateTask() вернул ошибку: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("CreateTask() не заполнил ID")
	}

	got, err := lookups.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() вернул ошибку: %v", err)
	}
	if got.Name != "Sample Preparation" {
		t.Errorf("Name = %q, ожидается Sample Preparation", got.Name)
	}
	if got.DefaultDurationDays != 7 {
		t.Errorf("DefaultDurationDays = %d, ожидается 7", got.DefaultDurationDays)
	}

	got.Name = "Sample Preparation v2"
	got.DefaultDurationDays = 10
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).UpdateTask(ctx, got)
	})
	if err != nil {
		t.Fatalf("UpdateTask() вернул ошибку: %v", err)
	}

	tasks, err := lookups.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks() вернул ошибку: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Sample Preparation v2" {
		t.Errorf("ListTasks() = %+v, ожидается одна обновлённая задача", tasks)
	}

	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).DeleteTask(ctx, task.ID)
	})
	if err != nil {
		t.Fatalf("DeleteTask() вернул ошибку: %v", err)
	}
	if _, err := lookups.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask() после удаления: err = %v, ожидается ErrNotFound", err)
	}
}

func TestCustomerCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)
	customers := NewCustomerRepository(pool)

	country := createCountry(t, pool, "ivanov", "Japan")

	ct := &model.CustomerType{Description: "Distributor"}
	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).CreateCustomerType(ctx, ct)
	})
	if err != nil {
		t.Fatalf("CreateCustomerType() вернул ошибку: %v", err)
	}

	contact := "Taro Yamada"
	c := &model.Customer{
		Name:           "Acme Corp",
		CustomerTypeID: &ct.ID,
		CountryID:      &country.ID,
		ContactPerson:  &contact,
	}
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewCustomerRepository(tx).Create(ctx, c)
	})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}

	got, err := customers.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() вернул ошибку: %v", err)
	}
	if got.Name != "Acme Corp" {
		t.Errorf("Name = %q, ожидается Acme Corp", got.Name)
	}
	// Поля из JOIN
	if got.CustomerTypeName == nil || *got.CustomerTypeName != "Distributor" {
		t.Errorf("CustomerTypeName = %v, ожидается Distributor", got.CustomerTypeName)
	}
	if got.CountryName == nil || *got.CountryName != "Japan" {
		t.Errorf("CountryName = %v, ожидается Japan", got.CountryName)
	}

	got.Name = "Acme International"
	got.CustomerTypeID = nil
	err = runner.RunAsUser(ctx, "petrov", func(tx pgx.Tx) error {
		return NewCustomerRepository(tx).Update(ctx, got)
	})
	if err != nil {
		t.Fatalf("Update() вернул ошибку: %v", err)
	}

	updated, err := customers.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() вернул ошибку: %v", err)
	}
	if updated.Name != "Acme International" {
		t.Errorf("Name = %q, ожидается Acme International", updated.Name)
	}
	if updated.CustomerTypeID != nil {
		t.Errorf("CustomerTypeID = %v, ожидается nil", updated.CustomerTypeID)
	}
	if updated.ModifiedBy != "petrov" {
		t.Errorf("ModifiedBy = %q, ожидается petrov", updated.ModifiedBy)
	}

	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewCustomerRepository(tx).Delete(ctx, c.ID)
	})
	if err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}
	if _, err := customers.GetByID(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() после удаления: err = %v, ожидается ErrNotFound", err)
	}
}

func TestNextNumber(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)

	country := createCountry(t, pool, "ivanov", "Spain")
	customer := createCustomer(t, pool, "ivanov", "Globex", &country.ID)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	var first string
	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		repo := NewInquiryRepository(tx)
		number, err := repo.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		first = number
		h := &model.InquiryHeader{
			InquiryNumber: number,
			InquiryDate:   now,
			Description:   "Первая заявка месяца",
			CustomerID:    customer.ID,
			Status:        model.StatusNotStarted,
		}
		return repo.InsertHeader(ctx, h)
	})
	if err != nil {
		t.Fatalf("генерация первой заявки: %v", err)
	}
	if first != "INQ-202609-000001" {
		t.Errorf("первый номер = %q, ожидается INQ-202609-000001", first)
	}

	// Номера монотонно растут в пределах месяца
	var second string
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		number, err := NewInquiryRepository(tx).NextNumber(ctx, now)
		if err != nil {
			return err
		}
		second = number
		return nil
	})
	if err != nil {
		t.Fatalf("генерация второго номера: %v", err)
	}
	if second != "INQ-202609-000002" {
		t.Errorf("второй номер = %q, ожидается INQ-202609-000002", second)
	}

	// Новый месяц начинает счёт заново
	var nextMonth string
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		number, err := NewInquiryRepository(tx).NextNumber(ctx, now.AddDate(0, 1, 0))
		if err != nil {
			return err
		}
		nextMonth = number
		return nil
	})
	if err != nil {
		t.Fatalf("генерация номера следующего месяца: %v", err)
	}
	if nextMonth != "INQ-202610-000001" {
		t.Errorf("номер следующего месяца = %q, ожидается INQ-202610-000001", nextMonth)
	}
}

func TestInquiryHeaderAndDetails(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)
	inquiries := NewInquiryRepository(pool)

	country := createCountry(t, pool, "ivanov", "Brazil")
	customer := createCustomer(t, pool, "ivanov", "Initech", &country.ID)

	task := &model.Task{Name: "Costing", DefaultDurationDays: 5}
	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewLookupRepository(tx).CreateTask(ctx, task)
	})
	if err != nil {
		t.Fatalf("CreateTask() вернул ошибку: %v", err)
	}

	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	h := &model.InquiryHeader{
		InquiryDate: now,
		Description: "Заявка с двумя строками",
		CustomerID:  customer.ID,
		Status:      model.StatusNotStarted,
	}
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		repo := NewInquiryRepository(tx)
		number, err := repo.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		h.InquiryNumber = number
		if err := repo.InsertHeader(ctx, h); err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			d := &model.InquiryDetail{
				InquiryID:        h.ID,
				TaskID:           &task.ID,
				Status:           model.StatusNotStarted,
				CustomerApproved: model.ApprovalNA,
			}
			if err := repo.InsertDetail(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("создание заявки: %v", err)
	}

	details, err := inquiries.ListDetails(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListDetails() вернул ошибку: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("len(details) = %d, ожидается 2", len(details))
	}
	if details[0].TaskName == nil || *details[0].TaskName != "Costing" {
		t.Errorf("TaskName = %v, ожидается Costing", details[0].TaskName)
	}

	// COALESCE-семантика: nil-поля заголовка не трогаются,
	// поля без COALESCE перезаписываются (в т.ч. в NULL)
	group := "Q3"
	status := model.StatusInProgress
	err = runner.RunAsUser(ctx, "petrov", func(tx pgx.Tx) error {
		return NewInquiryRepository(tx).UpdateHeader(ctx, h.ID, HeaderUpdate{
			Status:       &status,
			InquiryGroup: &group,
		})
	})
	if err != nil {
		t.Fatalf("UpdateHeader() вернул ошибку: %v", err)
	}

	got, err := inquiries.GetHeader(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHeader() вернул ошибку: %v", err)
	}
	if got.Description != "Заявка с двумя строками" {
		t.Errorf("Description = %q, ожидается без изменений", got.Description)
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("Status = %q, ожидается In Progress", got.Status)
	}
	if got.InquiryGroup == nil || *got.InquiryGroup != "Q3" {
		t.Errorf("InquiryGroup = %v, ожидается Q3", got.InquiryGroup)
	}
	if got.ModifiedBy != "petrov" {
		t.Errorf("ModifiedBy = %q, ожидается petrov", got.ModifiedBy)
	}

	// Обновление строки: прогресс по COALESCE, срок перезаписывается
	progress := 50
	due := now.AddDate(0, 0, 10)
	detailStatus := model.StatusInProgress
	err = runner.RunAsUser(ctx, "petrov", func(tx pgx.Tx) error {
		return NewInquiryRepository(tx).UpdateDetail(ctx, h.ID, details[0].ID, DetailUpdate{
			TaskID:   &task.ID,
			Status:   &detailStatus,
			Progress: &progress,
			DueDate:  &due,
		})
	})
	if err != nil {
		t.Fatalf("UpdateDetail() вернул ошибку: %v", err)
	}

	details, err = inquiries.ListDetails(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListDetails() вернул ошибку: %v", err)
	}
	if details[0].Progress != 50 {
		t.Errorf("Progress = %d, ожидается 50", details[0].Progress)
	}
	if details[0].DueDate == nil {
		t.Error("DueDate = nil, ожидается установленный срок")
	}

	// Строка чужой заявки не обновляется
	err = runner.RunAsUser(ctx, "petrov", func(tx pgx.Tx) error {
		return NewInquiryRepository(tx).UpdateDetail(ctx, h.ID+1, details[0].ID, DetailUpdate{})
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDetail() для чужой заявки: err = %v, ожидается ErrNotFound", err)
	}

	// Полная замена строк: удалить все и вставить заново
	err = runner.RunAsUser(ctx, "petrov", func(tx pgx.Tx) error {
		repo := NewInquiryRepository(tx)
		if err := repo.DeleteDetails(ctx, h.ID); err != nil {
			return err
		}
		d := &model.InquiryDetail{
			InquiryID:        h.ID,
			Status:           model.StatusNotStarted,
			CustomerApproved: model.ApprovalNA,
		}
		return repo.InsertDetail(ctx, d)
	})
	if err != nil {
		t.Fatalf("замена строк: %v", err)
	}

	details, err = inquiries.ListDetails(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListDetails() вернул ошибку: %v", err)
	}
	if len(details) != 1 {
		t.Errorf("len(details) после замены = %d, ожидается 1", len(details))
	}

	// Удаление заголовка каскадирует строки
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewInquiryRepository(tx).DeleteHeader(ctx, h.ID)
	})
	if err != nil {
		t.Fatalf("DeleteHeader() вернул ошибку: %v", err)
	}
	if _, err := inquiries.GetHeader(ctx, h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetHeader() после удаления: err = %v, ожидается ErrNotFound", err)
	}
	details, err = inquiries.ListDetails(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListDetails() вернул ошибку: %v", err)
	}
	if len(details) != 0 {
		t.Errorf("len(details) после каскада = %d, ожидается 0", len(details))
	}
}

func TestRollbackLeavesNoTrace(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)

	country := createCountry(t, pool, "ivanov", "Chile")
	customer := createCustomer(t, pool, "ivanov", "Umbrella", &country.ID)

	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	boom := errors.New("намеренный сбой")

	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		repo := NewInquiryRepository(tx)
		number, err := repo.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		h := &model.InquiryHeader{
			InquiryNumber: number,
			InquiryDate:   now,
			Description:   "Не должна сохраниться",
			CustomerID:    customer.ID,
			Status:        model.StatusNotStarted,
		}
		if err := repo.InsertHeader(ctx, h); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, ожидается намеренный сбой", err)
	}

	headers, err := NewInquiryRepository(pool).ListHeaders(ctx)
	if err != nil {
		t.Fatalf("ListHeaders() вернул ошибку: %v", err)
	}
	if len(headers) != 0 {
		t.Errorf("len(headers) после отката = %d, ожидается 0", len(headers))
	}

	// Номер отката не сжигается: следующая транзакция получает тот же
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		number, err := NewInquiryRepository(tx).NextNumber(ctx, now)
		if err != nil {
			return err
		}
		if number != "INQ-202609-000001" {
			return fmt.Errorf("номер после отката = %q, ожидается INQ-202609-000001", number)
		}
		return nil
	})
	if err != nil {
		t.Error(err)
	}
}

func TestAttachments(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)
	attachments := NewAttachmentRepository(pool)

	country := createCountry(t, pool, "ivanov", "Norway")
	customer := createCustomer(t, pool, "ivanov", "Hooli", &country.ID)

	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	h := &model.InquiryHeader{
		InquiryDate: now,
		Description: "Заявка с вложениями",
		CustomerID:  customer.ID,
		Status:      model.StatusNotStarted,
	}
	d := &model.InquiryDetail{
		Status:           model.StatusNotStarted,
		CustomerApproved: model.ApprovalNA,
	}
	err := runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		repo := NewInquiryRepository(tx)
		number, err := repo.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		h.InquiryNumber = number
		if err := repo.InsertHeader(ctx, h); err != nil {
			return err
		}
		d.InquiryID = h.ID
		return repo.InsertDetail(ctx, d)
	})
	if err != nil {
		t.Fatalf("создание заявки: %v", err)
	}

	headerFile := &model.Attachment{
		InquiryID:        &h.ID,
		OriginalFilename: "drawing.pdf",
		StoredFilename:   "11111111-1111-1111-1111-111111111111.pdf",
		Size:             1024,
		MimeType:         "application/pdf",
	}
	detailFile := &model.Attachment{
		DetailID:         &d.ID,
		OriginalFilename: "photo.png",
		StoredFilename:   "22222222-2222-2222-2222-222222222222.png",
		Size:             2048,
		MimeType:         "image/png",
	}
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		repo := NewAttachmentRepository(tx)
		if err := repo.Create(ctx, headerFile); err != nil {
			return err
		}
		return repo.Create(ctx, detailFile)
	})
	if err != nil {
		t.Fatalf("регистрация вложений: %v", err)
	}

	// Вложение не может принадлежать обоим владельцам сразу
	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewAttachmentRepository(tx).Create(ctx, &model.Attachment{
			InquiryID:        &h.ID,
			DetailID:         &d.ID,
			OriginalFilename: "both.pdf",
			StoredFilename:   "33333333-3333-3333-3333-333333333333.pdf",
			Size:             1,
			MimeType:         "application/pdf",
		})
	})
	if err == nil {
		t.Error("Create() с двумя владельцами не вернул ошибку")
	}

	byInquiry, err := attachments.ListByInquiry(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListByInquiry() вернул ошибку: %v", err)
	}
	if len(byInquiry) != 1 || byInquiry[0].OriginalFilename != "drawing.pdf" {
		t.Errorf("ListByInquiry() = %+v, ожидается одно вложение drawing.pdf", byInquiry)
	}

	grouped, err := attachments.ListByDetails(ctx, []int64{d.ID})
	if err != nil {
		t.Fatalf("ListByDetails() вернул ошибку: %v", err)
	}
	if len(grouped[d.ID]) != 1 || grouped[d.ID][0].OriginalFilename != "photo.png" {
		t.Errorf("ListByDetails() = %+v, ожидается photo.png для строки", grouped)
	}

	// Пустой список строк — пустой результат без запроса
	empty, err := attachments.ListByDetails(ctx, nil)
	if err != nil {
		t.Fatalf("ListByDetails(nil) вернул ошибку: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListByDetails(nil) = %+v, ожидается пустая карта", empty)
	}

	err = runner.RunAsUser(ctx, "ivanov", func(tx pgx.Tx) error {
		return NewAttachmentRepository(tx).Delete(ctx, headerFile.ID)
	})
	if err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}
	if _, err := attachments.GetByID(ctx, headerFile.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() после удаления: err = %v, ожидается ErrNotFound", err)
	}
}

func TestUserRepository(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewAuditRunner(pool)
	users := NewUserRepository(pool)

	err := runner.ExecAsUser(ctx, "admin", `
		INSERT INTO users (username, password_hash, full_name, role, permissions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		"ivanov", "$2a$10$fakehash", "Иван Иванов", "Manager", []string{"inquiries", "customers"}, true,
	)
	if err != nil {
		t.Fatalf("вставка пользователя: %v", err)
	}

	got, err := users.GetActiveByUsername(ctx, "ivanov")
	if err != nil {
		t.Fatalf("GetActiveByUsername() вернул ошибку: %v", err)
	}
	if got.FullName != "Иван Иванов" {
		t.Errorf("FullName = %q, ожидается Иван Иванов", got.FullName)
	}
	// Права хранятся в JSONB и читаются списком
	if len(got.Permissions) != 2 || got.Permissions[0] != "inquiries" {
		t.Errorf("Permissions = %v, ожидается [inquiries customers]", got.Permissions)
	}
	if got.CreatedBy != "admin" {
		t.Errorf("CreatedBy = %q, ожидается admin", got.CreatedBy)
	}
	if got.LastLogin != nil {
		t.Errorf("LastLogin = %v, ожидается nil", got.LastLogin)
	}

	if err := users.TouchLastLogin(ctx, got.ID); err != nil {
		t.Fatalf("TouchLastLogin() вернул ошибку: %v", err)
	}
	touched, err := users.GetByID(ctx, got.ID)
	if err != nil {
		t.Fatalf("GetByID() вернул ошибку: %v", err)
	}
	if touched.LastLogin == nil {
		t.Error("LastLogin = nil после TouchLastLogin()")
	}

	// Неактивный пользователь не находится по логину
	err = runner.ExecAsUser(ctx, "admin",
		`UPDATE users SET is_active = FALSE WHERE user_id = $1`, got.ID)
	if err != nil {
		t.Fatalf("деактивация пользователя: %v", err)
	}
	if _, err := users.GetActiveByUsername(ctx, "ivanov"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActiveByUsername() для неактивного: err = %v, ожидается ErrNotFound", err)
	}

	if err := users.UpdatePasswordHash(ctx, got.ID, "$2a$10$newhash"); err != nil {
		t.Fatalf("UpdatePasswordHash() вернул ошибку: %v", err)
	}
	if err := users.UpdatePasswordHash(ctx, got.ID+100, "$2a$10$newhash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePasswordHash() для несуществующего: err = %v, ожидается ErrNotFound", err)
	}
}
