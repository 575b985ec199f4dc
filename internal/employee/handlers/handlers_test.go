package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	e "github.com/gartstein/staffhub/internal/employee/errors"
	"github.com/gartstein/staffhub/internal/employee/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockController implements EmployeeController for handler tests.
type MockController struct {
	createEmployee    func(context.Context, *models.Employee, string) (*models.Employee, bool, error)
	getEmployee       func(context.Context, uint) (*models.EnrichedEmployee, error)
	listEmployees     func(context.Context, models.Filter) ([]models.EnrichedEmployee, int64, error)
	updateEmployee    func(context.Context, uint, *models.EmployeeUpdate) (*models.Employee, error)
	deleteEmployee    func(context.Context, uint) error
	countByDepartment func(context.Context, uint) (int64, error)
	statsByDepartment func(context.Context) ([]models.StatGroup, error)
}

func (m *MockController) CreateEmployee(ctx context.Context, emp *models.Employee, key string) (*models.Employee, bool, error) {
	return m.createEmployee(ctx, emp, key)
}

func (m *MockController) GetEmployee(ctx context.Context, id uint) (*models.EnrichedEmployee, error) {
	return m.getEmployee(ctx, id)
}

func (m *MockController) ListEmployees(ctx context.Context, f models.Filter) ([]models.EnrichedEmployee, int64, error) {
	return m.listEmployees(ctx, f)
}

func (m *MockController) UpdateEmployee(ctx context.Context, id uint, u *models.EmployeeUpdate) (*models.Employee, error) {
	return m.updateEmployee(ctx, id, u)
}

func (m *MockController) DeleteEmployee(ctx context.Context, id uint) error {
	return m.deleteEmployee(ctx, id)
}

func (m *MockController) CountByDepartment(ctx context.Context, id uint) (int64, error) {
	return m.countByDepartment(ctx, id)
}

func (m *MockController) StatsByDepartment(ctx context.Context) ([]models.StatGroup, error) {
	return m.statsByDepartment(ctx)
}

func setupRouter(t *testing.T, ctrl *MockController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewEmployeeHandler(ctrl, zaptest.NewLogger(t))
	h.Register(router.Group("/v1"))
	return router
}

func TestCountByDepartmentHandler(t *testing.T) {
	ctrl := &MockController{
		countByDepartment: func(_ context.Context, id uint) (int64, error) {
			assert.EqualValues(t, 7, id)
			return 5, nil
		},
	}
	router := setupRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/count?department_id=7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DepartmentID uint  `json:"department_id"`
		Count        int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 7, resp.DepartmentID)
	assert.EqualValues(t, 5, resp.Count)
}

func TestCountByDepartmentHandlerRequiresParam(t *testing.T) {
	router := setupRouter(t, &MockController{})

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHandlerRejectsUnknownGroupBy(t *testing.T) {
	ctrl := &MockController{
		statsByDepartment: func(context.Context) ([]models.StatGroup, error) {
			return []models.StatGroup{{Key: "1", Label: "Marketing", Count: 5}}, nil
		},
	}
	router := setupRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/stats?group_by=department", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/employees/stats?group_by=title", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown discriminator must be rejected")
}

func TestGetEmployeeHandlerNotFound(t *testing.T) {
	ctrl := &MockController{
		getEmployee: func(context.Context, uint) (*models.EnrichedEmployee, error) {
			return nil, e.ErrNotFound
		},
	}
	router := setupRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEmployeeHandlerEmbedsDepartment(t *testing.T) {
	ctrl := &MockController{
		getEmployee: func(context.Context, uint) (*models.EnrichedEmployee, error) {
			dept := uint(3)
			return &models.EnrichedEmployee{
				Employee: models.Employee{ID: 1, FirstName: "Ada", LastName: "Lovelace",
					Email: "ada@example.com", DepartmentID: &dept},
				Department: &models.DepartmentRef{ID: 3, Name: "Marketing", Code: "MKT"},
			}, nil
		},
	}
	router := setupRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp employeeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Department)
	assert.Equal(t, "Marketing", resp.Department.Name)
}
