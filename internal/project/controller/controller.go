// Package controller implements the business logic for managing projects
// and their memberships: code uniqueness, lifecycle validation, batch
// member assignment with remote identity checks, and project statistics.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gartstein/staffhub/internal/pkg/events"
	"github.com/gartstein/staffhub/internal/pkg/idempotency"
	"github.com/gartstein/staffhub/internal/pkg/remote"
	e "github.com/gartstein/staffhub/internal/project/errors"
	"github.com/gartstein/staffhub/internal/project/models"
	"go.uber.org/zap"
)

// Repository defines the storage interface for projects and memberships.
type Repository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	ListProjects(ctx context.Context, filter models.Filter) ([]models.Project, int64, error)
	SaveProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id uint) error
	CodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	AddMembers(ctx context.Context, members []models.ProjectMember) error
	RemoveMember(ctx context.Context, projectID, employeeID uint) error
	ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error)
	ExistingMemberIDs(ctx context.Context, projectID uint, employeeIDs []uint) ([]uint, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	StartDates(ctx context.Context) ([]models.Project, error)
	Close() error
}

// EmployeeDirectory resolves and validates employee ids against the
// employee service.
type EmployeeDirectory interface {
	Employee(ctx context.Context, id uint) (*models.EmployeeRef, error)
	ValidateIDs(ctx context.Context, ids []uint) ([]uint, error)
}

// EventProducer publishes lifecycle events.
type EventProducer interface {
	Produce(action events.Action, payload any)
}

// ProjectService provides methods to manage projects.
type ProjectService struct {
	repo      Repository
	employees EmployeeDirectory
	producer  EventProducer
	idem      idempotency.Store
	logger    *zap.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(
	repo Repository,
	employees EmployeeDirectory,
	producer EventProducer,
	idem idempotency.Store,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		repo:      repo,
		employees: employees,
		producer:  producer,
		idem:      idem,
		logger:    logger.Named("project_service"),
	}
}

func validateDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return fmt.Errorf("%w: end date precedes start date", e.ErrInvalidInput)
	}
	return nil
}

// CreateProject adds a new project after validating the code shape, the
// status, the date ordering, and code uniqueness.
func (s *ProjectService) CreateProject(ctx context.Context, project *models.Project, idempotencyKey string) (*models.Project, bool, error) {
	if idempotencyKey != "" {
		stored, ok, err := s.idem.Processed(ctx, idempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if ok {
			var replay models.Project
			if err := json.Unmarshal(stored, &replay); err != nil {
				return nil, false, fmt.Errorf("failed to decode stored result: %w", err)
			}
			return &replay, true, nil
		}
	}

	if project.Name == "" {
		return nil, false, fmt.Errorf("%w: name is required", e.ErrInvalidInput)
	}
	if !models.CodePattern.MatchString(project.Code) {
		return nil, false, fmt.Errorf("%w: code must match %s", e.ErrInvalidInput, models.CodePattern)
	}
	if project.Status == "" {
		project.Status = models.StatusPlanned
	}
	if !project.Status.Valid() {
		return nil, false, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, project.Status)
	}
	if err := validateDates(project.StartDate, project.EndDate); err != nil {
		return nil, false, err
	}

	if exists, err := s.repo.CodeExists(ctx, project.Code, 0); err != nil {
		return nil, false, fmt.Errorf("failed to check code uniqueness: %w", err)
	} else if exists {
		return nil, false, e.ErrDuplicateCode
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, false, fmt.Errorf("failed to create project: %w", err)
	}
	s.producer.Produce(events.ActionCreated, project)

	if idempotencyKey != "" {
		payload, err := json.Marshal(project)
		if err == nil {
			err = s.idem.Store(ctx, idempotencyKey, payload)
		}
		if err != nil {
			s.logger.Warn("failed to store idempotency result",
				zap.String("key", idempotencyKey), zap.Error(err))
		}
	}
	return project, false, nil
}

// GetProject retrieves a project by id.
func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjects returns a page of projects matching the filter.
func (s *ProjectService) ListProjects(ctx context.Context, filter models.Filter) ([]models.Project, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, filter.Status)
	}
	projects, total, err := s.repo.ListProjects(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProject merges the sparse update onto the stored record and saves
// it. Code uniqueness is re-checked only when the update carries a code,
// and date ordering is validated on the merged result so a new end date is
// checked against the stored start date and vice versa.
func (s *ProjectService) UpdateProject(ctx context.Context, id uint, update *models.ProjectUpdate) (*models.Project, error) {
	current, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if update.Name != nil && *update.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be blank", e.ErrInvalidInput)
	}
	if update.Code != nil {
		if !models.CodePattern.MatchString(*update.Code) {
			return nil, fmt.Errorf("%w: code must match %s", e.ErrInvalidInput, models.CodePattern)
		}
		exists, err := s.repo.CodeExists(ctx, *update.Code, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateCode
		}
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, *update.Status)
	}

	merged := update.Apply(*current)
	if err := validateDates(merged.StartDate, merged.EndDate); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProject(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	s.producer.Produce(events.ActionUpdated, &merged)
	return &merged, nil
}

// DeleteProject removes a project together with its membership rows.
func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get project for deletion: %w", err)
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.producer.Produce(events.ActionDeleted, project)
	return nil
}

// AddMembers assigns a batch of employees to a project. The whole batch is
// accepted or rejected as a unit, in this order: the request itself must
// not name an employee twice, no requested employee may already be a
// member, and every id must be known to the employee service. When the
// employee service cannot answer, the batch fails closed.
func (s *ProjectService) AddMembers(ctx context.Context, projectID uint, batch []models.NewMember) ([]models.ProjectMember, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty member batch", e.ErrInvalidInput)
	}

	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	seen := make(map[uint]struct{}, len(batch))
	ids := make([]uint, 0, len(batch))
	for _, m := range batch {
		if m.AllocationPercent < 0 || m.AllocationPercent > 100 {
			return nil, fmt.Errorf("%w: allocation percent out of range for employee %d", e.ErrInvalidInput, m.EmployeeID)
		}
		if _, dup := seen[m.EmployeeID]; dup {
			return nil, &e.DuplicateInBatchError{EmployeeID: m.EmployeeID}
		}
		seen[m.EmployeeID] = struct{}{}
		ids = append(ids, m.EmployeeID)
	}

	existing, err := s.repo.ExistingMemberIDs(ctx, projectID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing memberships: %w", err)
	}
	if len(existing) > 0 {
		return nil, &e.AlreadyMemberError{ProjectID: projectID, EmployeeIDs: existing}
	}

	missing, err := s.employees.ValidateIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrEmployeeSvcFailure, err)
	}
	if len(missing) > 0 {
		return nil, &e.UnknownEmployeesError{EmployeeIDs: missing}
	}

	now := time.Now().UTC()
	members := make([]models.ProjectMember, 0, len(batch))
	for _, m := range batch {
		members = append(members, models.ProjectMember{
			ProjectID:         projectID,
			EmployeeID:        m.EmployeeID,
			Role:              m.Role,
			AllocationPercent: m.AllocationPercent,
			AssignedAt:        now,
		})
	}
	if err := s.repo.AddMembers(ctx, members); err != nil {
		return nil, fmt.Errorf("failed to add members: %w", err)
	}
	s.producer.Produce(events.ActionUpdated, project)
	return members, nil
}

// RemoveMember removes one employee from a project.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, employeeID uint) error {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.repo.RemoveMember(ctx, projectID, employeeID); err != nil {
		if errors.Is(err, e.ErrMemberNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	s.producer.Produce(events.ActionUpdated, &models.ProjectMember{ProjectID: projectID, EmployeeID: employeeID})
	return nil
}

// ListMembers returns the project's memberships, each enriched
// independently with employee data. A failed lookup leaves Employee nil
// and never fails the read.
func (s *ProjectService) ListMembers(ctx context.Context, projectID uint) ([]models.EnrichedMember, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	enriched := make([]models.EnrichedMember, 0, len(members))
	for _, m := range members {
		out := models.EnrichedMember{ProjectMember: m}
		ref, err := s.employees.Employee(ctx, m.EmployeeID)
		if err != nil {
			if !errors.Is(err, remote.ErrNotFound) {
				s.logger.Warn("member enrichment failed",
					zap.Uint("project_id", projectID),
					zap.Uint("employee_id", m.EmployeeID),
					zap.Error(err),
				)
			}
		} else {
			out.Employee = ref
		}
		enriched = append(enriched, out)
	}
	return enriched, nil
}

// StatsByStatus aggregates project counts per lifecycle status.
func (s *ProjectService) StatsByStatus(ctx context.Context) ([]models.StatGroup, error) {
	rows, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	groups := make([]models.StatGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, models.StatGroup{
			Key:   string(row.Status),
			Label: string(row.Status),
			Count: row.Count,
		})
	}
	return groups, nil
}

// StatsByMonth aggregates project counts per start month. Grouping runs in
// Go over the start dates so the result is identical on every SQL dialect.
func (s *ProjectService) StatsByMonth(ctx context.Context) ([]models.StatGroup, error) {
	projects, err := s.repo.StartDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	counts := make(map[string]int64, len(projects))
	for _, p := range projects {
		counts[p.StartDate.UTC().Format("2006-01")]++
	}

	months := make([]string, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Strings(months)

	groups := make([]models.StatGroup, 0, len(months))
	for _, month := range months {
		groups = append(groups, models.StatGroup{Key: month, Label: month, Count: counts[month]})
	}
	return groups, nil
}
