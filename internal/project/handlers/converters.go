package handlers

import (
	"time"

	"github.com/gartstein/staffhub/internal/pkg/httpapi"
	"github.com/gartstein/staffhub/internal/project/models"
)

type createProjectRequest struct {
	Code        string        `json:"code" binding:"required,max=20"`
	Name        string        `json:"name" binding:"required,max=200"`
	Description string        `json:"description" binding:"max=1000"`
	Status      models.Status `json:"status"`
	StartDate   time.Time     `json:"start_date" binding:"required"`
	EndDate     *time.Time    `json:"end_date"`
}

func (r *createProjectRequest) toModel() *models.Project {
	return &models.Project{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

// updateProjectRequest is a full replace.
type updateProjectRequest struct {
	Code        string        `json:"code" binding:"required,max=20"`
	Name        string        `json:"name" binding:"required,max=200"`
	Description string        `json:"description" binding:"max=1000"`
	Status      models.Status `json:"status" binding:"required"`
	StartDate   time.Time     `json:"start_date" binding:"required"`
	EndDate     *time.Time    `json:"end_date"`
}

func (r *updateProjectRequest) toUpdate() *models.ProjectUpdate {
	return &models.ProjectUpdate{
		Code:        &r.Code,
		Name:        &r.Name,
		Description: &r.Description,
		Status:      &r.Status,
		StartDate:   &r.StartDate,
		EndDate:     &r.EndDate,
	}
}

// patchProjectRequest is sparse. A JSON null is indistinguishable from an
// absent field here, so clearing the end date requires a full PUT; PATCH
// can only move it.
type patchProjectRequest struct {
	Code        *string        `json:"code" binding:"omitempty,max=20"`
	Name        *string        `json:"name" binding:"omitempty,max=200"`
	Description *string        `json:"description" binding:"omitempty,max=1000"`
	Status      *models.Status `json:"status"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     **time.Time    `json:"end_date"`
}

func (r *patchProjectRequest) toUpdate() *models.ProjectUpdate {
	return &models.ProjectUpdate{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

type listProjectsRequest struct {
	httpapi.PageParams
	Name   string        `form:"name"`
	Code   string        `form:"code"`
	Status models.Status `form:"status"`
}

func (r *listProjectsRequest) toFilter() models.Filter {
	return models.Filter{
		Name:   r.Name,
		Code:   r.Code,
		Status: r.Status,
		Page:   r.Page,
		Size:   r.Size,
		Sort:   r.Sort,
		Order:  r.Order,
	}
}

type newMemberRequest struct {
	EmployeeID        uint   `json:"employee_id" binding:"required"`
	Role              string `json:"role" binding:"max=100"`
	AllocationPercent int    `json:"allocation_percent" binding:"min=0,max=100"`
}

type addMembersRequest struct {
	Members []newMemberRequest `json:"members" binding:"required,min=1,dive"`
}

func (r *addMembersRequest) toBatch() []models.NewMember {
	batch := make([]models.NewMember, 0, len(r.Members))
	for _, m := range r.Members {
		batch = append(batch, models.NewMember{
			EmployeeID:        m.EmployeeID,
			Role:              m.Role,
			AllocationPercent: m.AllocationPercent,
		})
	}
	return batch
}

type projectResponse struct {
	ID          uint          `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      models.Status `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func toProjectResponse(p *models.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type memberResponse struct {
	EmployeeID        uint                `json:"employee_id"`
	Role              string              `json:"role,omitempty"`
	AllocationPercent int                 `json:"allocation_percent"`
	AssignedAt        time.Time           `json:"assigned_at"`
	Employee          *models.EmployeeRef `json:"employee,omitempty"`
}

func toMemberResponse(m *models.ProjectMember, emp *models.EmployeeRef) memberResponse {
	return memberResponse{
		EmployeeID:        m.EmployeeID,
		Role:              m.Role,
		AllocationPercent: m.AllocationPercent,
		AssignedAt:        m.AssignedAt,
		Employee:          emp,
	}
}
