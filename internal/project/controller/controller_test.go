package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gartstein/staffhub/internal/pkg/events"
	"github.com/gartstein/staffhub/internal/pkg/idempotency"
	"github.com/gartstein/staffhub/internal/pkg/remote"
	"github.com/gartstein/staffhub/internal/pkg/utils"
	e "github.com/gartstein/staffhub/internal/project/errors"
	"github.com/gartstein/staffhub/internal/project/models"
	"go.uber.org/zap/zaptest"
)

// MockRepository implements the Repository interface for testing.
type MockRepository struct {
	createProject     func(context.Context, *models.Project) error
	getProject        func(context.Context, uint) (*models.Project, error)
	listProjects      func(context.Context, models.Filter) ([]models.Project, int64, error)
	saveProject       func(context.Context, *models.Project) error
	deleteProject     func(context.Context, uint) error
	codeExists        func(context.Context, string, uint) (bool, error)
	addMembers        func(context.Context, []models.ProjectMember) error
	removeMember      func(context.Context, uint, uint) error
	listMembers       func(context.Context, uint) ([]models.ProjectMember, error)
	existingMemberIDs func(context.Context, uint, []uint) ([]uint, error)
	countByStatus     func(context.Context) ([]models.StatusCount, error)
	startDates        func(context.Context) ([]models.Project, error)
}

func (m *MockRepository) CreateProject(ctx context.Context, p *models.Project) error {
	return m.createProject(ctx, p)
}

func (m *MockRepository) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return m.getProject(ctx, id)
}

func (m *MockRepository) ListProjects(ctx context.Context, f models.Filter) ([]models.Project, int64, error) {
	return m.listProjects(ctx, f)
}

func (m *MockRepository) SaveProject(ctx context.Context, p *models.Project) error {
	return m.saveProject(ctx, p)
}

func (m *MockRepository) DeleteProject(ctx context.Context, id uint) error {
	return m.deleteProject(ctx, id)
}

func (m *MockRepository) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	return m.codeExists(ctx, code, excludeID)
}

func (m *MockRepository) AddMembers(ctx context.Context, members []models.ProjectMember) error {
	return m.addMembers(ctx, members)
}

func (m *MockRepository) RemoveMember(ctx context.Context, projectID, employeeID uint) error {
	return m.removeMember(ctx, projectID, employeeID)
}

func (m *MockRepository) ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	return m.listMembers(ctx, projectID)
}

func (m *MockRepository) ExistingMemberIDs(ctx context.Context, projectID uint, ids []uint) ([]uint, error) {
	return m.existingMemberIDs(ctx, projectID, ids)
}

func (m *MockRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return m.countByStatus(ctx)
}

func (m *MockRepository) StartDates(ctx context.Context) ([]models.Project, error) {
	return m.startDates(ctx)
}

func (m *MockRepository) Close() error { return nil }

// MockDirectory is a test double for the employee directory client.
type MockDirectory struct {
	employee    func(context.Context, uint) (*models.EmployeeRef, error)
	validateIDs func(context.Context, []uint) ([]uint, error)
}

func (m *MockDirectory) Employee(ctx context.Context, id uint) (*models.EmployeeRef, error) {
	return m.employee(ctx, id)
}

func (m *MockDirectory) ValidateIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return m.validateIDs(ctx, ids)
}

// MockProducer records produced events.
type MockProducer struct {
	produced []events.Action
}

func (m *MockProducer) Produce(action events.Action, _ any) {
	m.produced = append(m.produced, action)
}

func newService(t *testing.T, repo *MockRepository, dir *MockDirectory) *ProjectService {
	if dir == nil {
		dir = &MockDirectory{
			employee: func(context.Context, uint) (*models.EmployeeRef, error) {
				return nil, remote.ErrUnavailable
			},
			validateIDs: func(context.Context, []uint) ([]uint, error) {
				return nil, nil
			},
		}
	}
	return NewProjectService(repo, dir, &MockProducer{},
		idempotency.NewMemoryStore(), zaptest.NewLogger(t))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectService_CreateProject(t *testing.T) {
	endBeforeStart := date(2026, 1, 1)

	tests := []struct {
		name          string
		input         *models.Project
		mockSetup     func(*MockRepository)
		expectedError error
	}{
		{
			name:  "successful creation",
			input: &models.Project{Code: "PHX-1", Name: "Phoenix", StartDate: date(2026, 3, 1)},
			mockSetup: func(mr *MockRepository) {
				mr.codeExists = func(context.Context, string, uint) (bool, error) { return false, nil }
				mr.createProject = func(_ context.Context, p *models.Project) error {
					p.ID = 1
					return nil
				}
			},
		},
		{
			name:  "duplicate code",
			input: &models.Project{Code: "PHX-1", Name: "Phoenix", StartDate: date(2026, 3, 1)},
			mockSetup: func(mr *MockRepository) {
				mr.codeExists = func(context.Context, string, uint) (bool, error) { return true, nil }
			},
			expectedError: e.ErrDuplicateCode,
		},
		{
			name:          "malformed code",
			input:         &models.Project{Code: "phx 1", Name: "Phoenix", StartDate: date(2026, 3, 1)},
			mockSetup:     func(_ *MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "unknown status",
			input: &models.Project{Code: "PHX-1", Name: "Phoenix",
				Status: "PAUSED", StartDate: date(2026, 3, 1)},
			mockSetup:     func(_ *MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "end date precedes start date",
			input: &models.Project{Code: "PHX-1", Name: "Phoenix",
				StartDate: date(2026, 3, 1), EndDate: &endBeforeStart},
			mockSetup:     func(_ *MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockRepository{}
			tt.mockSetup(mockRepo)

			service := newService(t, mockRepo, nil)
			result, _, err := service.CreateProject(context.Background(), tt.input, "")

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.ID == 0 {
				t.Error("expected project ID to be set")
			}
			if result.Status != models.StatusPlanned {
				t.Errorf("missing status should default to PLANNED, got %q", result.Status)
			}
		})
	}
}

func TestProjectService_CreateProject_Idempotency(t *testing.T) {
	creates := 0
	mockRepo := &MockRepository{}
	mockRepo.codeExists = func(context.Context, string, uint) (bool, error) { return false, nil }
	mockRepo.createProject = func(_ context.Context, p *models.Project) error {
		creates++
		p.ID = 7
		return nil
	}

	service := newService(t, mockRepo, nil)
	input := func() *models.Project {
		return &models.Project{Code: "PHX-1", Name: "Phoenix", StartDate: date(2026, 3, 1)}
	}

	_, replayed, err := service.CreateProject(context.Background(), input(), "key-A")
	if err != nil || replayed {
		t.Fatalf("first create: err=%v replayed=%v", err, replayed)
	}
	second, replayed, err := service.CreateProject(context.Background(), input(), "key-A")
	if err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}
	if !replayed {
		t.Fatal("expected replay for the repeated key")
	}
	if creates != 1 {
		t.Fatalf("expected exactly one persisted row, got %d", creates)
	}
	if second.ID != 7 {
		t.Errorf("replayed result should carry the original id, got %d", second.ID)
	}
}

func TestProjectService_UpdateProject(t *testing.T) {
	existing := models.Project{ID: 1, Code: "PHX-1", Name: "Phoenix",
		Status: models.StatusActive, StartDate: date(2026, 3, 1)}

	mockRepo := &MockRepository{
		getProject: func(context.Context, uint) (*models.Project, error) {
			current := existing
			return &current, nil
		},
		saveProject: func(context.Context, *models.Project) error { return nil },
		codeExists: func(_ context.Context, _ string, excludeID uint) (bool, error) {
			if excludeID != 1 {
				t.Error("code uniqueness must exclude the record's own id")
			}
			return false, nil
		},
	}
	service := newService(t, mockRepo, nil)

	t.Run("sparse update preserves unsupplied fields", func(t *testing.T) {
		updated, err := service.UpdateProject(context.Background(), 1,
			&models.ProjectUpdate{Code: utils.Ptr("PHX-2")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Code != "PHX-2" {
			t.Errorf("code not applied, got %q", updated.Code)
		}
		if updated.Name != "Phoenix" || updated.Status != models.StatusActive {
			t.Error("unsupplied fields must be preserved")
		}
	})

	t.Run("merged dates are validated together", func(t *testing.T) {
		// The stored start date is March 2026; an end date before it must
		// be rejected even though the update itself carries no start date.
		bad := date(2026, 1, 1)
		end := &bad
		_, err := service.UpdateProject(context.Background(), 1,
			&models.ProjectUpdate{EndDate: &end})
		if !errors.Is(err, e.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		bad := models.Status("PAUSED")
		_, err := service.UpdateProject(context.Background(), 1,
			&models.ProjectUpdate{Status: &bad})
		if !errors.Is(err, e.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func memberRepo(t *testing.T, existing []uint) *MockRepository {
	t.Helper()
	return &MockRepository{
		getProject: func(context.Context, uint) (*models.Project, error) {
			return &models.Project{ID: 1, Code: "PHX-1", Name: "Phoenix"}, nil
		},
		existingMemberIDs: func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
			return existing, nil
		},
		addMembers: func(context.Context, []models.ProjectMember) error { return nil },
	}
}

func TestProjectService_AddMembers(t *testing.T) {
	t.Run("duplicate id within the batch rejects the whole batch", func(t *testing.T) {
		service := newService(t, memberRepo(t, nil), nil)

		_, err := service.AddMembers(context.Background(), 1, []models.NewMember{
			{EmployeeID: 4}, {EmployeeID: 4},
		})
		var dup *e.DuplicateInBatchError
		if !errors.As(err, &dup) {
			t.Fatalf("expected DuplicateInBatchError, got %v", err)
		}
		if dup.EmployeeID != 4 {
			t.Errorf("expected offending id 4, got %d", dup.EmployeeID)
		}
	})

	t.Run("existing membership rejects the whole batch", func(t *testing.T) {
		persisted := false
		repo := memberRepo(t, []uint{4})
		repo.addMembers = func(context.Context, []models.ProjectMember) error {
			persisted = true
			return nil
		}
		service := newService(t, repo, nil)

		_, err := service.AddMembers(context.Background(), 1, []models.NewMember{
			{EmployeeID: 4}, {EmployeeID: 5},
		})
		var already *e.AlreadyMemberError
		if !errors.As(err, &already) {
			t.Fatalf("expected AlreadyMemberError, got %v", err)
		}
		if len(already.EmployeeIDs) != 1 || already.EmployeeIDs[0] != 4 {
			t.Errorf("expected conflicting ids [4], got %v", already.EmployeeIDs)
		}
		if persisted {
			t.Error("nothing may be persisted when any entry conflicts")
		}
	})

	t.Run("unknown employee rejects the whole batch", func(t *testing.T) {
		persisted := false
		repo := memberRepo(t, nil)
		repo.addMembers = func(context.Context, []models.ProjectMember) error {
			persisted = true
			return nil
		}
		dir := &MockDirectory{
			validateIDs: func(_ context.Context, ids []uint) ([]uint, error) {
				return []uint{5}, nil
			},
		}
		service := newService(t, repo, dir)

		_, err := service.AddMembers(context.Background(), 1, []models.NewMember{
			{EmployeeID: 4}, {EmployeeID: 5},
		})
		var unknown *e.UnknownEmployeesError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownEmployeesError, got %v", err)
		}
		if len(unknown.EmployeeIDs) != 1 || unknown.EmployeeIDs[0] != 5 {
			t.Errorf("expected unknown ids [5], got %v", unknown.EmployeeIDs)
		}
		if persisted {
			t.Error("nothing may be persisted when any id is unknown")
		}
	})

	t.Run("employee service failure fails the batch closed", func(t *testing.T) {
		dir := &MockDirectory{
			validateIDs: func(context.Context, []uint) ([]uint, error) {
				return nil, remote.ErrUnavailable
			},
		}
		service := newService(t, memberRepo(t, nil), dir)

		_, err := service.AddMembers(context.Background(), 1, []models.NewMember{{EmployeeID: 4}})
		if !errors.Is(err, e.ErrEmployeeSvcFailure) {
			t.Fatalf("expected ErrEmployeeSvcFailure, got %v", err)
		}
	})

	t.Run("valid batch persists every entry", func(t *testing.T) {
		var persisted []models.ProjectMember
		repo := memberRepo(t, nil)
		repo.addMembers = func(_ context.Context, members []models.ProjectMember) error {
			persisted = members
			return nil
		}
		service := newService(t, repo, nil)

		members, err := service.AddMembers(context.Background(), 1, []models.NewMember{
			{EmployeeID: 4, Role: "lead", AllocationPercent: 50},
			{EmployeeID: 5, AllocationPercent: 100},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(members) != 2 || len(persisted) != 2 {
			t.Fatalf("expected 2 memberships, got %d returned / %d persisted", len(members), len(persisted))
		}
		if persisted[0].ProjectID != 1 || persisted[0].Role != "lead" {
			t.Error("membership fields must be carried into storage")
		}
		if persisted[0].AssignedAt.IsZero() {
			t.Error("assignment time must be stamped")
		}
	})
}

func TestProjectService_RemoveMember(t *testing.T) {
	repo := &MockRepository{
		getProject: func(context.Context, uint) (*models.Project, error) {
			return &models.Project{ID: 1}, nil
		},
		removeMember: func(_ context.Context, _, employeeID uint) error {
			if employeeID == 4 {
				return nil
			}
			return e.ErrMemberNotFound
		},
	}
	service := newService(t, repo, nil)

	if err := service.RemoveMember(context.Background(), 1, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.RemoveMember(context.Background(), 1, 9); !errors.Is(err, e.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestProjectService_ListMembers_PerElementEnrichment(t *testing.T) {
	repo := &MockRepository{
		getProject: func(context.Context, uint) (*models.Project, error) {
			return &models.Project{ID: 1}, nil
		},
		listMembers: func(context.Context, uint) ([]models.ProjectMember, error) {
			return []models.ProjectMember{
				{ProjectID: 1, EmployeeID: 4},
				{ProjectID: 1, EmployeeID: 5},
			}, nil
		},
	}
	// Employee 5 fails to resolve; 4 succeeds.
	dir := &MockDirectory{
		employee: func(_ context.Context, id uint) (*models.EmployeeRef, error) {
			if id == 4 {
				return &models.EmployeeRef{ID: 4, FirstName: "Ada", LastName: "Lovelace"}, nil
			}
			return nil, remote.ErrUnavailable
		},
	}
	service := newService(t, repo, dir)

	members, err := service.ListMembers(context.Background(), 1)
	if err != nil {
		t.Fatalf("read must succeed despite enrichment failure: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Employee == nil || members[0].Employee.FirstName != "Ada" {
		t.Error("first member should be enriched")
	}
	if members[1].Employee != nil {
		t.Error("failed lookup must not populate enrichment")
	}
}

func TestProjectService_StatsByMonth(t *testing.T) {
	repo := &MockRepository{
		startDates: func(context.Context) ([]models.Project, error) {
			return []models.Project{
				{ID: 1, StartDate: date(2026, 3, 1)},
				{ID: 2, StartDate: date(2026, 3, 20)},
				{ID: 3, StartDate: date(2026, 1, 5)},
			}, nil
		},
	}
	service := newService(t, repo, nil)

	groups, err := service.StatsByMonth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != "2026-01" || groups[0].Count != 1 {
		t.Errorf("expected 2026-01 with count 1 first, got %q/%d", groups[0].Key, groups[0].Count)
	}
	if groups[1].Key != "2026-03" || groups[1].Count != 2 {
		t.Errorf("expected 2026-03 with count 2, got %q/%d", groups[1].Key, groups[1].Count)
	}
}

func TestProjectService_StatsByStatus(t *testing.T) {
	repo := &MockRepository{
		countByStatus: func(context.Context) ([]models.StatusCount, error) {
			return []models.StatusCount{
				{Status: models.StatusActive, Count: 3},
				{Status: models.StatusPlanned, Count: 1},
			}, nil
		},
	}
	service := newService(t, repo, nil)

	groups, err := service.StatsByStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != "ACTIVE" || groups[0].Count != 3 {
		t.Errorf("unexpected first group %+v", groups[0])
	}
}
