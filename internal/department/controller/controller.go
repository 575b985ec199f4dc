// Package controller implements the business logic for managing
// departments: uniqueness checks, sparse updates, the employee-count guard
// on deletion, and create deduplication via idempotency keys.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	e "github.com/gartstein/staffhub/internal/department/errors"
	"github.com/gartstein/staffhub/internal/department/models"
	"github.com/gartstein/staffhub/internal/pkg/events"
	"github.com/gartstein/staffhub/internal/pkg/idempotency"
	"go.uber.org/zap"
)

// Repository defines the storage interface for Department objects.
type Repository interface {
	CreateDepartment(ctx context.Context, dept *models.Department) error
	GetDepartment(ctx context.Context, id uint) (*models.Department, error)
	ListDepartments(ctx context.Context, filter models.Filter) ([]models.Department, int64, error)
	SaveDepartment(ctx context.Context, dept *models.Department) error
	DeleteDepartment(ctx context.Context, id uint) error
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	CodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	Close() error
}

// EmployeeCounter reports how many employees the employee service has
// assigned to a department.
type EmployeeCounter interface {
	CountByDepartment(ctx context.Context, departmentID uint) (int64, error)
}

// EventProducer publishes lifecycle events.
type EventProducer interface {
	Produce(action events.Action, payload any)
}

// DepartmentService provides methods to manage departments.
type DepartmentService struct {
	repo      Repository
	employees EmployeeCounter
	producer  EventProducer
	idem      idempotency.Store
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(
	repo Repository,
	employees EmployeeCounter,
	producer EventProducer,
	idem idempotency.Store,
	logger *zap.Logger,
) *DepartmentService {
	return &DepartmentService{
		repo:      repo,
		employees: employees,
		producer:  producer,
		idem:      idem,
		logger:    logger.Named("department_service"),
	}
}

func (s *DepartmentService) validate(dept *models.Department) error {
	if dept.Name == "" || len(dept.Name) > 100 {
		return fmt.Errorf("%w: name must be 1-100 characters", e.ErrInvalidInput)
	}
	if !models.CodePattern.MatchString(dept.Code) {
		return fmt.Errorf("%w: code must be 2-10 uppercase letters", e.ErrInvalidInput)
	}
	if len(dept.Description) > 500 {
		return fmt.Errorf("%w: description too long", e.ErrInvalidInput)
	}
	return nil
}

// CreateDepartment adds a new department after validating input and
// uniqueness. When idempotencyKey is non-empty and already processed, the
// previously produced department is returned verbatim and replayed is true:
// no new persistence write occurs.
func (s *DepartmentService) CreateDepartment(ctx context.Context, dept *models.Department, idempotencyKey string) (*models.Department, bool, error) {
	if idempotencyKey != "" {
		stored, ok, err := s.idem.Processed(ctx, idempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if ok {
			var replay models.Department
			if err := json.Unmarshal(stored, &replay); err != nil {
				return nil, false, fmt.Errorf("failed to decode stored result: %w", err)
			}
			return &replay, true, nil
		}
	}

	if err := s.validate(dept); err != nil {
		return nil, false, err
	}

	if exists, err := s.repo.NameExists(ctx, dept.Name, 0); err != nil {
		return nil, false, fmt.Errorf("failed to check name uniqueness: %w", err)
	} else if exists {
		return nil, false, e.ErrDuplicateName
	}
	if exists, err := s.repo.CodeExists(ctx, dept.Code, 0); err != nil {
		return nil, false, fmt.Errorf("failed to check code uniqueness: %w", err)
	} else if exists {
		return nil, false, e.ErrDuplicateCode
	}

	if err := s.repo.CreateDepartment(ctx, dept); err != nil {
		return nil, false, fmt.Errorf("failed to create department: %w", err)
	}
	s.producer.Produce(events.ActionCreated, dept)

	if idempotencyKey != "" {
		payload, err := json.Marshal(dept)
		if err == nil {
			err = s.idem.Store(ctx, idempotencyKey, payload)
		}
		if err != nil {
			// The creation already happened; losing the entry only
			// costs a duplicate-key conflict on retry.
			s.logger.Warn("failed to store idempotency result",
				zap.String("key", idempotencyKey), zap.Error(err))
		}
	}
	return dept, false, nil
}

// GetDepartment retrieves a department by id.
func (s *DepartmentService) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	dept, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return dept, nil
}

// ListDepartments returns a page of departments matching the filter.
func (s *DepartmentService) ListDepartments(ctx context.Context, filter models.Filter) ([]models.Department, int64, error) {
	depts, total, err := s.repo.ListDepartments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list departments: %w", err)
	}
	return depts, total, nil
}

// UpdateDepartment merges the sparse update onto the stored record and
// saves it. Uniqueness is re-checked only for fields present in the update,
// excluding the record itself. An empty update still saves the record.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uint, update *models.DepartmentUpdate) (*models.Department, error) {
	current, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load department: %w", err)
	}

	if update.Name != nil {
		if *update.Name == "" || len(*update.Name) > 100 {
			return nil, fmt.Errorf("%w: name must be 1-100 characters", e.ErrInvalidInput)
		}
		exists, err := s.repo.NameExists(ctx, *update.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateName
		}
	}
	if update.Code != nil {
		if !models.CodePattern.MatchString(*update.Code) {
			return nil, fmt.Errorf("%w: code must be 2-10 uppercase letters", e.ErrInvalidInput)
		}
		exists, err := s.repo.CodeExists(ctx, *update.Code, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateCode
		}
	}
	if update.Description != nil && len(*update.Description) > 500 {
		return nil, fmt.Errorf("%w: description too long", e.ErrInvalidInput)
	}

	merged := update.Apply(*current)
	if err := s.repo.SaveDepartment(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to save department: %w", err)
	}
	s.producer.Produce(events.ActionUpdated, &merged)
	return &merged, nil
}

// DeleteDepartment removes a department unless the employee service still
// counts employees assigned to it. A failed count query aborts the delete:
// the guard never decides on ambiguous information.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uint) error {
	dept, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get department for deletion: %w", err)
	}

	count, err := s.employees.CountByDepartment(ctx, id)
	if err != nil {
		s.logger.Error("employee count query failed",
			zap.Uint("department_id", id), zap.Error(err))
		return fmt.Errorf("%w: %v", e.ErrEmployeeSvcFailure, err)
	}
	if count > 0 {
		return &e.InUseError{
			DepartmentID:   id,
			DepartmentName: dept.Name,
			EmployeeCount:  count,
		}
	}

	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	s.producer.Produce(events.ActionDeleted, dept)
	return nil
}
