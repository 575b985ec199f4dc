// Package handlers exposes the department service over HTTP, translating
// between the wire DTOs and the domain models and mapping service errors
// to response statuses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	e "github.com/gartstein/staffhub/internal/department/errors"
	"github.com/gartstein/staffhub/internal/department/models"
	"github.com/gartstein/staffhub/internal/pkg/httpapi"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-supplied deduplication token.
const IdempotencyKeyHeader = "Idempotency-Key"

// DepartmentController defines the business logic the handlers invoke.
type DepartmentController interface {
	CreateDepartment(ctx context.Context, dept *models.Department, idempotencyKey string) (*models.Department, bool, error)
	GetDepartment(ctx context.Context, id uint) (*models.Department, error)
	ListDepartments(ctx context.Context, filter models.Filter) ([]models.Department, int64, error)
	UpdateDepartment(ctx context.Context, id uint, update *models.DepartmentUpdate) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id uint) error
}

// DepartmentHandler provides HTTP methods for department operations.
type DepartmentHandler struct {
	service DepartmentController
	logger  *zap.Logger
}

// NewDepartmentHandler constructs a DepartmentHandler.
func NewDepartmentHandler(service DepartmentController, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		service: service,
		logger:  logger.Named("department_handler"),
	}
}

// Register wires the department routes onto the router group.
func (h *DepartmentHandler) Register(r *gin.RouterGroup) {
	r.POST("/departments", h.CreateDepartment)
	r.GET("/departments", h.ListDepartments)
	r.GET("/departments/:id", h.GetDepartment)
	r.PUT("/departments/:id", h.UpdateDepartment)
	r.PATCH("/departments/:id", h.PatchDepartment)
	r.DELETE("/departments/:id", h.DeleteDepartment)
}

// CreateDepartment handles POST /departments.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req createDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	dept, replayed, err := h.service.CreateDepartment(
		c.Request.Context(), req.toModel(), c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	c.JSON(http.StatusCreated, toDepartmentResponse(dept))
}

// GetDepartment handles GET /departments/:id.
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dept, err := h.service.GetDepartment(c.Request.Context(), id)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDepartmentResponse(dept))
}

// ListDepartments handles GET /departments.
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	var params listDepartmentsRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}
	params.Normalize("id", "name", "code")

	depts, total, err := h.service.ListDepartments(c.Request.Context(), params.toFilter())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	items := make([]departmentResponse, 0, len(depts))
	for i := range depts {
		items = append(items, toDepartmentResponse(&depts[i]))
	}
	c.JSON(http.StatusOK, httpapi.NewPage(items, params.PageParams, total))
}

// UpdateDepartment handles PUT /departments/:id, a full replace.
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	dept, err := h.service.UpdateDepartment(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDepartmentResponse(dept))
}

// PatchDepartment handles PATCH /departments/:id, a sparse update.
func (h *DepartmentHandler) PatchDepartment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req patchDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	dept, err := h.service.UpdateDepartment(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDepartmentResponse(dept))
}

// DeleteDepartment handles DELETE /departments/:id.
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDepartment(c.Request.Context(), id); err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httpapi.Validation(c, "invalid department id")
		return 0, false
	}
	return uint(id), true
}

// mapServiceError maps domain errors to HTTP responses.
func (h *DepartmentHandler) mapServiceError(c *gin.Context, err error) {
	var inUse *e.InUseError
	switch {
	case errors.As(err, &inUse):
		httpapi.Conflict(c, inUse.Error(), "", map[string]any{
			"department_id":   inUse.DepartmentID,
			"department_name": inUse.DepartmentName,
			"employee_count":  inUse.EmployeeCount,
			"remediation":     "reassign or remove the employees, then retry",
		})
	case errors.Is(err, e.ErrNotFound):
		httpapi.NotFound(c, "department not found")
	case errors.Is(err, e.ErrDuplicateName):
		httpapi.Conflict(c, "a department with this name already exists", "name", nil)
	case errors.Is(err, e.ErrDuplicateCode):
		httpapi.Conflict(c, "a department with this code already exists", "code", nil)
	case errors.Is(err, e.ErrInvalidInput):
		httpapi.Validation(c, err.Error())
	case errors.Is(err, e.ErrEmployeeSvcFailure):
		httpapi.Unavailable(c, "could not verify assigned employees", "employee-service")
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		httpapi.Internal(c)
	}
}
