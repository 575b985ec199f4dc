// Package handlers exposes the project service over HTTP.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gartstein/staffhub/internal/pkg/httpapi"
	e "github.com/gartstein/staffhub/internal/project/errors"
	"github.com/gartstein/staffhub/internal/project/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-supplied deduplication token.
const IdempotencyKeyHeader = "Idempotency-Key"

// ProjectController defines the business logic the handlers invoke.
type ProjectController interface {
	CreateProject(ctx context.Context, project *models.Project, idempotencyKey string) (*models.Project, bool, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	ListProjects(ctx context.Context, filter models.Filter) ([]models.Project, int64, error)
	UpdateProject(ctx context.Context, id uint, update *models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id uint) error
	AddMembers(ctx context.Context, projectID uint, batch []models.NewMember) ([]models.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, employeeID uint) error
	ListMembers(ctx context.Context, projectID uint) ([]models.EnrichedMember, error)
	StatsByStatus(ctx context.Context) ([]models.StatGroup, error)
	StatsByMonth(ctx context.Context) ([]models.StatGroup, error)
}

// ProjectHandler provides HTTP methods for project operations.
type ProjectHandler struct {
	service ProjectController
	logger  *zap.Logger
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(service ProjectController, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger.Named("project_handler"),
	}
}

// Register wires the project routes onto the router group.
func (h *ProjectHandler) Register(r *gin.RouterGroup) {
	r.POST("/projects", h.CreateProject)
	r.GET("/projects", h.ListProjects)
	r.GET("/projects/stats", h.Stats)
	r.GET("/projects/:id", h.GetProject)
	r.PUT("/projects/:id", h.UpdateProject)
	r.PATCH("/projects/:id", h.PatchProject)
	r.DELETE("/projects/:id", h.DeleteProject)
	r.POST("/projects/:id/members", h.AddMembers)
	r.GET("/projects/:id/members", h.ListMembers)
	r.DELETE("/projects/:id/members/:employee_id", h.RemoveMember)
}

// CreateProject handles POST /projects.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	project, replayed, err := h.service.CreateProject(
		c.Request.Context(), req.toModel(), c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

// GetProject handles GET /projects/:id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

// ListProjects handles GET /projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var params listProjectsRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}
	params.Normalize("id", "code", "name", "status", "start_date")

	projects, total, err := h.service.ListProjects(c.Request.Context(), params.toFilter())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, toProjectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, httpapi.NewPage(items, params.PageParams, total))
}

// UpdateProject handles PUT /projects/:id, a full replace.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	project, err := h.service.UpdateProject(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

// PatchProject handles PATCH /projects/:id, a sparse update.
func (h *ProjectHandler) PatchProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req patchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	project, err := h.service.UpdateProject(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

// DeleteProject handles DELETE /projects/:id.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProject(c.Request.Context(), id); err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMembers handles POST /projects/:id/members, a batch assignment.
func (h *ProjectHandler) AddMembers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req addMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Validation(c, err.Error())
		return
	}

	members, err := h.service.AddMembers(c.Request.Context(), id, req.toBatch())
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for i := range members {
		items = append(items, toMemberResponse(&members[i], nil))
	}
	c.JSON(http.StatusCreated, gin.H{"members": items})
}

// ListMembers handles GET /projects/:id/members.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), id)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for i := range members {
		items = append(items, toMemberResponse(&members[i].ProjectMember, members[i].Employee))
	}
	c.JSON(http.StatusOK, gin.H{"members": items})
}

// RemoveMember handles DELETE /projects/:id/members/:employee_id.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	employeeID, ok := parseID(c, "employee_id")
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), id, employeeID); err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats handles GET /projects/stats?group_by=status|month.
func (h *ProjectHandler) Stats(c *gin.Context) {
	groupBy := c.Query("group_by")

	var (
		groups []models.StatGroup
		err    error
	)
	switch groupBy {
	case "status":
		groups, err = h.service.StatsByStatus(c.Request.Context())
	case "month":
		groups, err = h.service.StatsByMonth(c.Request.Context())
	default:
		httpapi.Validation(c, "group_by must be \"status\" or \"month\"")
		return
	}
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_by": groupBy, "groups": groups})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		httpapi.Validation(c, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// mapServiceError maps domain errors to HTTP responses.
func (h *ProjectHandler) mapServiceError(c *gin.Context, err error) {
	var (
		dup     *e.DuplicateInBatchError
		already *e.AlreadyMemberError
		unknown *e.UnknownEmployeesError
	)
	switch {
	case errors.As(err, &dup):
		httpapi.Conflict(c, dup.Error(), "", map[string]any{
			"employee_id": dup.EmployeeID,
		})
	case errors.As(err, &already):
		httpapi.Conflict(c, already.Error(), "", map[string]any{
			"project_id":   already.ProjectID,
			"employee_ids": already.EmployeeIDs,
		})
	case errors.As(err, &unknown):
		httpapi.Conflict(c, unknown.Error(), "", map[string]any{
			"employee_ids": unknown.EmployeeIDs,
			"service":      "employee-service",
		})
	case errors.Is(err, e.ErrNotFound):
		httpapi.NotFound(c, "project not found")
	case errors.Is(err, e.ErrMemberNotFound):
		httpapi.NotFound(c, "membership not found")
	case errors.Is(err, e.ErrDuplicateCode):
		httpapi.Conflict(c, "a project with this code already exists", "code", nil)
	case errors.Is(err, e.ErrInvalidInput):
		httpapi.Validation(c, err.Error())
	case errors.Is(err, e.ErrEmployeeSvcFailure):
		httpapi.Unavailable(c, "could not verify requested employees", "employee-service")
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		httpapi.Internal(c)
	}
}
