// masterdata.go — сервис справочных данных: клиенты, материалы,
// исполнители и простые справочники. Чтения идут с пула, записи —
// в аудируемых транзакциях от имени пользователя.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
)

// MasterDataService — CRUD справочных данных.
type MasterDataService struct {
	customers repository.CustomerRepository
	materials repository.MaterialRepository
	assignees repository.AssigneeRepository
	lookups   repository.LookupRepository
	audit     *repository.AuditRunner
	logger    *slog.Logger
}

// NewMasterDataService создаёт сервис справочных данных.
func NewMasterDataService(
	customers repository.CustomerRepository,
	materials repository.MaterialRepository,
	assignees repository.AssigneeRepository,
	lookups repository.LookupRepository,
	audit *repository.AuditRunner,
	logger *slog.Logger,
) *MasterDataService {
	return &MasterDataService{
		customers: customers,
		materials: materials,
		assignees: assignees,
		lookups:   lookups,
		audit:     audit,
		logger:    logger.With(slog.String("component", "masterdata_service")),
	}
}

// mapRepoErr переводит ошибки репозитория в ошибки сервисного слоя.
func mapRepoErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// --- Клиенты ---

func (s *MasterDataService) ListCustomers(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.customers.List(ctx)
	return customers, mapRepoErr(err, "список клиентов")
}

func (s *MasterDataService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	return c, mapRepoErr(err, fmt.Sprintf("клиент %d", id))
}

func (s *MasterDataService) CreateCustomer(ctx context.Context, actingUser string, c *model.Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: название клиента обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewCustomerRepository(tx).Create(ctx, c)
	})
	if err != nil {
		return mapRepoErr(err, "создание клиента")
	}
	s.logger.Info("Клиент создан", slog.Int64("customer_id", c.ID), slog.String("user", actingUser))
	return nil
}

func (s *MasterDataService) UpdateCustomer(ctx context.Context, actingUser string, c *model.Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: название клиента обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewCustomerRepository(tx).Update(ctx, c)
	})
	if err != nil {
		return mapRepoErr(err, fmt.Sprintf("клиент %d", c.ID))
	}
	s.logger.Info("Клиент обновлён", slog.Int64("customer_id", c.ID), slog.String("user", actingUser))
	return nil
}

func (s *MasterDataService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return mapRepoErr(err, fmt.Sprintf("клиент %d", id))
	}
	s.logger.Info("Клиент удалён", slog.Int64("customer_id", id))
	return nil
}

// --- Материалы ---

func (s *MasterDataService) ListMaterials(ctx context.Context) ([]*model.Material, error) {
	materials, err := s.materials.List(ctx)
	return materials, mapRepoErr(err, "список материалов")
}

func (s *MasterDataService) GetMaterial(ctx context.Context, id int64) (*model.Material, error) {
	m, err := s.materials.GetByID(ctx, id)
	return m, mapRepoErr(err, fmt.Sprintf("материал %d", id))
}

func (s *MasterDataService) CreateMaterial(ctx context.Context, actingUser string, m *model.Material) error {
	if m.Name == "" {
		return fmt.Errorf("%w: название материала обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewMaterialRepository(tx).Create(ctx, m)
	})
	if err != nil {
		return mapRepoErr(err, "создание материала")
	}
	s.logger.Info("Материал создан", slog.Int64("material_id", m.ID), slog.String("user", actingUser))
	return nil
}

func (s *MasterDataService) UpdateMaterial(ctx context.Context, actingUser string, m *model.Material) error {
	if m.Name == "" {
		return fmt.Errorf("%w: название материала обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewMaterialRepository(tx).Update(ctx, m)
	})
	if err != nil {
		return mapRepoErr(err, fmt.Sprintf("материал %d", m.ID))
	}
	s.logger.Info("Материал обновлён", slog.Int64("material_id", m.ID), slog.String("user", actingUser))
	return nil
}

func (s *MasterDataService) DeleteMaterial(ctx context.Context, id int64) error {
	if err := s.materials.Delete(ctx, id); err != nil {
		return mapRepoErr(err, fmt.Sprintf("материал %d", id))
	}
	s.logger.Info("Материал удалён", slog.Int64("material_id", id))
	return nil
}

// --- Исполнители ---

func (s *MasterDataService) ListAssignees(ctx context.Context) ([]*model.Assignee, error) {
	assignees, err := s.assignees.List(ctx)
	return assignees, mapRepoErr(err, "список исполнителей")
}

func (s *MasterDataService) GetAssignee(ctx context.Context, id int64) (*model.Assignee, error) {
	a, err := s.assignees.GetByID(ctx, id)
	return a, mapRepoErr(err, fmt.Sprintf("исполнитель %d", id))
}

func (s *MasterDataService) CreateAssignee(ctx context.Context, actingUser string, a *model.Assignee) error {
	if a.Name == "" {
		return fmt.Errorf("%w: имя исполнителя обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewAssigneeRepository(tx).Create(ctx, a)
	})
	if err != nil {
		return mapRepoErr(err, "создание исполнителя")
	}
	s.logger.Info("Исполнитель создан", slog.Int64("assignee_id", a.ID), slog.String("user", actingUser))
	return nil
}

func (s *MasterDataService) UpdateAssignee(ctx context.Context, actingUser string, a *model.Assignee) error {
	if a.Name == "" {
		return fmt.Errorf("%w: имя исполнителя обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewAssigneeRepository(tx).Update(ctx, a)
	})
	if err != nil {
		return mapRepoErr(err, fmt.Sprintf("исполнитель %d", a.ID))
	}
	s.logger.Info("Исполнитель обновлён", slog.Int64("assignee_id", a.ID), slog.String("user", actingUser))
	return nil
}

func (s *MasterDataService) DeleteAssignee(ctx context.Context, id int64) error {
	if err := s.assignees.Delete(ctx, id); err != nil {
		return mapRepoErr(err, fmt.Sprintf("исполнитель %d", id))
	}
	s.logger.Info("Исполнитель удалён", slog.Int64("assignee_id", id))
	return nil
}

// --- Задачи ---

func (s *MasterDataService) ListTasks(ctx context.Context) ([]*model.Task, error) {
	tasks, err := s.lookups.ListTasks(ctx)
	return tasks, mapRepoErr(err, "список задач")
}

func (s *MasterDataService) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	t, err := s.lookups.GetTask(ctx, id)
	return t, mapRepoErr(err, fmt.Sprintf("задача %d", id))
}

func (s *MasterDataService) CreateTask(ctx context.Context, actingUser string, t *model.Task) error {
	if t.Name == "" {
		return fmt.Errorf("%w: название задачи обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).CreateTask(ctx, t)
	})
	return mapRepoErr(err, "создание задачи")
}

func (s *MasterDataService) UpdateTask(ctx context.Context, actingUser string, t *model.Task) error {
	if t.Name == "" {
		return fmt.Errorf("%w: название задачи обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).UpdateTask(ctx, t)
	})
	return mapRepoErr(err, fmt.Sprintf("задача %d", t.ID))
}

func (s *MasterDataService) DeleteTask(ctx context.Context, id int64) error {
	return mapRepoErr(s.lookups.DeleteTask(ctx, id), fmt.Sprintf("задача %d", id))
}

// --- Категории продукции ---

func (s *MasterDataService) ListProductCategories(ctx context.Context) ([]*model.ProductCategory, error) {
	categories, err := s.lookups.ListProductCategories(ctx)
	return categories, mapRepoErr(err, "список категорий")
}

func (s *MasterDataService) GetProductCategory(ctx context.Context, id int64) (*model.ProductCategory, error) {
	c, err := s.lookups.GetProductCategory(ctx, id)
	return c, mapRepoErr(err, fmt.Sprintf("категория %d", id))
}

func (s *MasterDataService) CreateProductCategory(ctx context.Context, actingUser string, c *model.ProductCategory) error {
	if c.Name == "" {
		return fmt.Errorf("%w: название категории обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).CreateProductCategory(ctx, c)
	})
	return mapRepoErr(err, "создание категории")
}

func (s *MasterDataService) UpdateProductCategory(ctx context.Context, actingUser string, c *model.ProductCategory) error {
	if c.Name == "" {
		return fmt.Errorf("%w: название категории обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).UpdateProductCategory(ctx, c)
	})
	return mapRepoErr(err, fmt.Sprintf("категория %d", c.ID))
}

func (s *MasterDataService) DeleteProductCategory(ctx context.Context, id int64) error {
	return mapRepoErr(s.lookups.DeleteProductCategory(ctx, id), fmt.Sprintf("категория %d", id))
}

// --- Типы клиентов ---

func (s *MasterDataService) ListCustomerTypes(ctx context.Context) ([]*model.CustomerType, error) {
	types, err := s.lookups.ListCustomerTypes(ctx)
	return types, mapRepoErr(err, "список типов клиентов")
}

func (s *MasterDataService) GetCustomerType(ctx context.Context, id int64) (*model.CustomerType, error) {
	t, err := s.lookups.GetCustomerType(ctx, id)
	return t, mapRepoErr(err, fmt.Sprintf("тип клиента %d", id))
}

func (s *MasterDataService) CreateCustomerType(ctx context.Context, actingUser string, t *model.CustomerType) error {
	if t.Description == "" {
		return fmt.Errorf("%w: описание типа обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).CreateCustomerType(ctx, t)
	})
	return mapRepoErr(err, "создание типа клиента")
}

func (s *MasterDataService) UpdateCustomerType(ctx context.Context, actingUser string, t *model.CustomerType) error {
	if t.Description == "" {
		return fmt.Errorf("%w: описание типа обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).UpdateCustomerType(ctx, t)
	})
	return mapRepoErr(err, fmt.Sprintf("тип клиента %d", t.ID))
}

func (s *MasterDataService) DeleteCustomerType(ctx context.Context, id int64) error {
	return mapRepoErr(s.lookups.DeleteCustomerType(ctx, id), fmt.Sprintf("тип клиента %d", id))
}

// --- Типы материалов ---

func (s *MasterDataService) ListMaterialTypes(ctx context.Context) ([]*model.MaterialType, error) {
	types, err := s.lookups.ListMaterialTypes(ctx)
	return types, mapRepoErr(err, "список типов материалов")
}

func (s *MasterDataService) GetMaterialType(ctx context.Context, id int64) (*model.MaterialType, error) {
	t, err := s.lookups.GetMaterialType(ctx, id)
	return t, mapRepoErr(err, fmt.Sprintf("тип материала %d", id))
}

func (s *MasterDataService) CreateMaterialType(ctx context.Context, actingUser string, t *model.MaterialType) error {
	if t.Description == "" {
		return fmt.Errorf("%w: описание типа обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).CreateMaterialType(ctx, t)
	})
	return mapRepoErr(err, "создание типа материала")
}

func (s *MasterDataService) UpdateMaterialType(ctx context.Context, actingUser string, t *model.MaterialType) error {
	if t.Description == "" {
		return fmt.Errorf("%w: описание типа обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).UpdateMaterialType(ctx, t)
	})
	return mapRepoErr(err, fmt.Sprintf("тип материала %d", t.ID))
}

func (s *MasterDataService) DeleteMaterialType(ctx context.Context, id int64) error {
	return mapRepoErr(s.lookups.DeleteMaterialType(ctx, id), fmt.Sprintf("тип материала %d", id))
}

// --- Страны ---

func (s *MasterDataService) ListCountries(ctx context.Context) ([]*model.Country, error) {
	countries, err := s.lookups.ListCountries(ctx)
	return countries, mapRepoErr(err, "список стран")
}

func (s *MasterDataService) GetCountry(ctx context.Context, id int64) (*model.Country, error) {
	c, err := s.lookups.GetCountry(ctx, id)
	return c, mapRepoErr(err, fmt.Sprintf("страна %d", id))
}

func (s *MasterDataService) CreateCountry(ctx context.Context, actingUser string, c *model.Country) error {
	if c.Name == "" {
		return fmt.Errorf("%w: название страны обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).CreateCountry(ctx, c)
	})
	return mapRepoErr(err, "создание страны")
}

func (s *MasterDataService) UpdateCountry(ctx context.Context, actingUser string, c *model.Country) error {
	if c.Name == "" {
		return fmt.Errorf("%w: название страны обязательно", ErrValidation)
	}
	err := s.audit.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		return repository.NewLookupRepository(tx).UpdateCountry(ctx, c)
	})
	return mapRepoErr(err, fmt.Sprintf("страна %d", c.ID))
}

func (s *MasterDataService) DeleteCountry(ctx context.Context, id int64) error {
	return mapRepoErr(s.lookups.DeleteCountry(ctx, id), fmt.Sprintf("страна %d", id))
}
