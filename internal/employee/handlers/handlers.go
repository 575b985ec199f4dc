// Package handlers exposes the employee service over HTTP.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	e "github.com/gartstein/staffhub/internal/employee/errors"
	"github.com/gartstein/staffhub/internal/employee/models"
	"github.com/gartstein/staffhub/internal/pkg/httpapi"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-supplied deduplication token.
const IdempotencyKeyHeader = "Idempotency-Key"

// EmployeeController defines the business logic the handlers invoke.
type EmployeeController interface {
	CreateEmployee(ctx context.Context, emp *models.Employee, idempotencyKey string) (*models.Employee, bool, error)
	GetEmployee(ctx context.Context, id uint) (*models.EnrichedEmployee, error)
	ListEmployees(ctx context.Context, filter models.Filter) ([]models.EnrichedEmployee, int64, error)
	UpdateEmployee(ctx context.Context, id uint, update *models.EmployeeUpdate) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id uint) error
	CountByDepartment(ctx context.Context, departmentID uint) (int64, error)
	StatsByDepartment(ctx context.Context) ([]models.StatGroup, error)
}

// EmployeeHandler provides HTTP methods for employee operations.
type EmployeeHandler struct {
	service EmployeeController
	logger  *zap.Logger
}

// NewEmployeeHandler constructs an EmployeeHandler.
func NewEmployeeHandler(service EmployeeController, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		logger:  logger.Named("employee_handler"),
	}
}

// Register wires the employee routes onto the router group.
func (h *EmployeeHandler) Register(r *gin.RouterGroup) {
	r.POST("/employees", h.CreateEmployee)
	r.GET("/employees", h.ListEmployees)
	r.GET("/employees/count", h.CountByDepartment)
	r.GET("/employees/stats", h.Stats)
	r.GET("/employees/:id", h.GetEmployee)
	r.PUT("/employees/:id", h.UpdateEmployee)
	r.PATCH("/employees/:id", h.PatchEmployee)
	r.DELETE("/employees/:id", h.DeleteEmployee)
}

// CreateEmployee handles POST /employees.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	emp, replayed, err := h.service.CreateEmployee(
		c.Request.Context(), req.toModel(), c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	c.JSON(http.StatusCreated, toEmployeeResponse(emp, nil))
}

// GetEmployee handles GET /employees/:id.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	enriched, err := h.service.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(&enriched.Employee, enriched.Department))
}

// ListEmployees handles GET /employees.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var params listEmployeesRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}
	params.Normalize("id", "last_name", "email")

	emps, total, err := h.service.ListEmployees(c.Request.Context(), params.toFilter())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	items := make([]employeeResponse, 0, len(emps))
	for i := range emps {
		items = append(items, toEmployeeResponse(&emps[i].Employee, emps[i].Department))
	}
	c.JSON(http.StatusOK, httpapi.NewPage(items, params.PageParams, total))
}

// UpdateEmployee handles PUT /employees/:id, a full replace.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	emp, err := h.service.UpdateEmployee(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(emp, nil))
}

// PatchEmployee handles PATCH /employees/:id, a sparse update.
func (h *EmployeeHandler) PatchEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req patchEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	emp, err := h.service.UpdateEmployee(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(emp, nil))
}

// DeleteEmployee handles DELETE /employees/:id.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteEmployee(c.Request.Context(), id); err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CountByDepartment handles GET /employees/count. It backs the department
// service's delete guard.
func (h *EmployeeHandler) CountByDepartment(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 64)
	if err != nil || departmentID == 0 {
		httpapi.Validation(c, "department_id query parameter required")
		return
	}

	count, err := h.service.CountByDepartment(c.Request.Context(), uint(departmentID))
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"department_id": departmentID,
		"count":         count,
	})
}

// Stats handles GET /employees/stats?group_by=department.
func (h *EmployeeHandler) Stats(c *gin.Context) {
	if c.Query("group_by") != "department" {
		httpapi.Validation(c, "group_by must be \"department\"")
		return
	}

	groups, err := h.service.StatsByDepartment(c.Request.Context())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_by": "department", "groups": groups})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httpapi.Validation(c, "invalid employee id")
		return 0, false
	}
	return uint(id), true
}

// mapServiceError maps domain errors to HTTP responses.
func (h *EmployeeHandler) mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		httpapi.NotFound(c, "employee not found")
	case errors.Is(err, e.ErrDuplicateEmail):
		httpapi.Conflict(c, "an employee with this email already exists", "email", nil)
	case errors.Is(err, e.ErrInvalidInput):
		httpapi.Validation(c, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		httpapi.Internal(c)
	}
}
