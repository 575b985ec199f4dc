package handlers

import (
	"time"

	"github.com/gartstein/staffhub/internal/department/models"
	"github.com/gartstein/staffhub/internal/pkg/httpapi"
)

type createDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

func (r *createDepartmentRequest) toModel() *models.Department {
	return &models.Department{
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
	}
}

// updateDepartmentRequest is a full replace: every field is required and
// all of them are applied.
type updateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

func (r *updateDepartmentRequest) toUpdate() *models.DepartmentUpdate {
	return &models.DepartmentUpdate{
		Name:        &r.Name,
		Code:        &r.Code,
		Description: &r.Description,
	}
}

// patchDepartmentRequest is sparse: absent fields leave the record as is.
type patchDepartmentRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Code        *string `json:"code"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

func (r *patchDepartmentRequest) toUpdate() *models.DepartmentUpdate {
	return &models.DepartmentUpdate{
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
	}
}

type listDepartmentsRequest struct {
	httpapi.PageParams
	Name string `form:"name"`
	Code string `form:"code"`
}

func (r *listDepartmentsRequest) toFilter() models.Filter {
	return models.Filter{
		Name:  r.Name,
		Code:  r.Code,
		Page:  r.Page,
		Size:  r.Size,
		Sort:  r.Sort,
		Order: r.Order,
	}
}

type departmentResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDepartmentResponse(d *models.Department) departmentResponse {
	return departmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
