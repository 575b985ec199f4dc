// Package controller implements the business logic for managing
// employees: uniqueness checks, sparse updates, best-effort department
// enrichment, and the by-department statistics the other services rely on.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	e "github.com/gartstein/staffhub/internal/employee/errors"
	"github.com/gartstein/staffhub/internal/employee/models"
	"github.com/gartstein/staffhub/internal/pkg/events"
	"github.com/gartstein/staffhub/internal/pkg/idempotency"
	"go.uber.org/zap"
)

// Repository defines the storage interface for Employee objects.
type Repository interface {
	CreateEmployee(ctx context.Context, emp *models.Employee) error
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	ListEmployees(ctx context.Context, filter models.Filter) ([]models.Employee, int64, error)
	SaveEmployee(ctx context.Context, emp *models.Employee) error
	DeleteEmployee(ctx context.Context, id uint) error
	EmailExists(ctx context.Context, email string, excludeID uint) (bool, error)
	CountByDepartment(ctx context.Context, departmentID uint) (int64, error)
	StatsByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
	Close() error
}

// DepartmentLookup resolves department records from the department service.
type DepartmentLookup interface {
	Department(ctx context.Context, id uint) (*models.DepartmentRef, error)
}

// EventProducer publishes lifecycle events.
type EventProducer interface {
	Produce(action events.Action, payload any)
}

// EmployeeService provides methods to manage employees.
type EmployeeService struct {
	repo        Repository
	departments DepartmentLookup
	producer    EventProducer
	idem        idempotency.Store
	logger      *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(
	repo Repository,
	departments DepartmentLookup,
	producer EventProducer,
	idem idempotency.Store,
	logger *zap.Logger,
) *EmployeeService {
	return &EmployeeService{
		repo:        repo,
		departments: departments,
		producer:    producer,
		idem:        idem,
		logger:      logger.Named("employee_service"),
	}
}

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") || len(email) > 254 {
		return fmt.Errorf("%w: invalid email", e.ErrInvalidInput)
	}
	return nil
}

// CreateEmployee adds a new employee after validating the email and its
// uniqueness. Department assignment is accepted as given: it is a weak
// reference and never verified against the department service here.
func (s *EmployeeService) CreateEmployee(ctx context.Context, emp *models.Employee, idempotencyKey string) (*models.Employee, bool, error) {
	if idempotencyKey != "" {
		stored, ok, err := s.idem.Processed(ctx, idempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if ok {
			var replay models.Employee
			if err := json.Unmarshal(stored, &replay); err != nil {
				return nil, false, fmt.Errorf("failed to decode stored result: %w", err)
			}
			return &replay, true, nil
		}
	}

	if emp.FirstName == "" || emp.LastName == "" {
		return nil, false, fmt.Errorf("%w: first and last name required", e.ErrInvalidInput)
	}
	if err := validateEmail(emp.Email); err != nil {
		return nil, false, err
	}

	if exists, err := s.repo.EmailExists(ctx, emp.Email, 0); err != nil {
		return nil, false, fmt.Errorf("failed to check email uniqueness: %w", err)
	} else if exists {
		return nil, false, e.ErrDuplicateEmail
	}

	if err := s.repo.CreateEmployee(ctx, emp); err != nil {
		return nil, false, fmt.Errorf("failed to create employee: %w", err)
	}
	s.producer.Produce(events.ActionCreated, emp)

	if idempotencyKey != "" {
		payload, err := json.Marshal(emp)
		if err == nil {
			err = s.idem.Store(ctx, idempotencyKey, payload)
		}
		if err != nil {
			s.logger.Warn("failed to store idempotency result",
				zap.String("key", idempotencyKey), zap.Error(err))
		}
	}
	return emp, false, nil
}

// GetEmployee retrieves an employee and attaches department data when the
// department service answers. A failed lookup leaves Department nil and
// never fails the read.
func (s *EmployeeService) GetEmployee(ctx context.Context, id uint) (*models.EnrichedEmployee, error) {
	emp, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return s.enrich(ctx, emp), nil
}

// ListEmployees returns a page of employees, each enriched independently:
// one failed department lookup does not affect the siblings.
func (s *EmployeeService) ListEmployees(ctx context.Context, filter models.Filter) ([]models.EnrichedEmployee, int64, error) {
	emps, total, err := s.repo.ListEmployees(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	enriched := make([]models.EnrichedEmployee, 0, len(emps))
	for i := range emps {
		enriched = append(enriched, *s.enrich(ctx, &emps[i]))
	}
	return enriched, total, nil
}

func (s *EmployeeService) enrich(ctx context.Context, emp *models.Employee) *models.EnrichedEmployee {
	out := &models.EnrichedEmployee{Employee: *emp}
	if emp.DepartmentID == nil {
		return out
	}

	ref, err := s.departments.Department(ctx, *emp.DepartmentID)
	if err != nil {
		s.logger.Warn("department enrichment failed",
			zap.Uint("employee_id", emp.ID),
			zap.Uint("department_id", *emp.DepartmentID),
			zap.Error(err),
		)
		return out
	}
	out.Department = ref
	return out
}

// UpdateEmployee merges the sparse update onto the stored record and saves
// it. Email uniqueness is re-checked only when the update carries an email.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uint, update *models.EmployeeUpdate) (*models.Employee, error) {
	current, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}

	if update.FirstName != nil && *update.FirstName == "" {
		return nil, fmt.Errorf("%w: first name cannot be blank", e.ErrInvalidInput)
	}
	if update.LastName != nil && *update.LastName == "" {
		return nil, fmt.Errorf("%w: last name cannot be blank", e.ErrInvalidInput)
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return nil, err
		}
		exists, err := s.repo.EmailExists(ctx, *update.Email, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateEmail
		}
	}

	merged := update.Apply(*current)
	if err := s.repo.SaveEmployee(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	s.producer.Produce(events.ActionUpdated, &merged)
	return &merged, nil
}

// DeleteEmployee removes an employee by id.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id uint) error {
	emp, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get employee for deletion: %w", err)
	}

	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	s.producer.Produce(events.ActionDeleted, emp)
	return nil
}

// CountByDepartment reports how many employees reference the department.
// The department service calls this before deleting a department.
func (s *EmployeeService) CountByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	count, err := s.repo.CountByDepartment(ctx, departmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// StatsByDepartment aggregates employee counts per department. Labels come
// from the department service; a failed lookup falls back to a synthesized
// placeholder instead of failing the whole call.
func (s *EmployeeService) StatsByDepartment(ctx context.Context) ([]models.StatGroup, error) {
	rows, err := s.repo.StatsByDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	groups := make([]models.StatGroup, 0, len(rows))
	for _, row := range rows {
		group := models.StatGroup{Count: row.Count}
		if row.DepartmentID == nil {
			group.Key = "none"
			group.Label = "Unassigned"
			groups = append(groups, group)
			continue
		}

		id := *row.DepartmentID
		group.Key = strconv.FormatUint(uint64(id), 10)
		group.Label = fmt.Sprintf("Department %d", id)
		if ref, err := s.departments.Department(ctx, id); err == nil {
			group.Label = ref.Name
		} else {
			s.logger.Warn("statistics label enrichment failed",
				zap.Uint("department_id", id), zap.Error(err))
		}
		groups = append(groups, group)
	}
	return groups, nil
}
