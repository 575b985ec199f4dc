package handlers

import (
	"time"

	"github.com/gartstein/staffhub/internal/employee/models"
	"github.com/gartstein/staffhub/internal/pkg/httpapi"
)

type createEmployeeRequest struct {
	FirstName    string `json:"first_name" binding:"required,max=100"`
	LastName     string `json:"last_name" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,email"`
	DepartmentID *uint  `json:"department_id"`
}

func (r *createEmployeeRequest) toModel() *models.Employee {
	return &models.Employee{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		DepartmentID: r.DepartmentID,
	}
}

// updateEmployeeRequest is a full replace.
type updateEmployeeRequest struct {
	FirstName    string `json:"first_name" binding:"required,max=100"`
	LastName     string `json:"last_name" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,email"`
	DepartmentID *uint  `json:"department_id"`
}

func (r *updateEmployeeRequest) toUpdate() *models.EmployeeUpdate {
	return &models.EmployeeUpdate{
		FirstName:    &r.FirstName,
		LastName:     &r.LastName,
		Email:        &r.Email,
		DepartmentID: &r.DepartmentID,
	}
}

// patchEmployeeRequest is sparse. A JSON null is indistinguishable from an
// absent field here, so clearing the department assignment requires a full
// PUT; PATCH can only change it to another department.
type patchEmployeeRequest struct {
	FirstName    *string `json:"first_name" binding:"omitempty,max=100"`
	LastName     *string `json:"last_name" binding:"omitempty,max=100"`
	Email        *string `json:"email" binding:"omitempty,email"`
	DepartmentID **uint  `json:"department_id"`
}

func (r *patchEmployeeRequest) toUpdate() *models.EmployeeUpdate {
	return &models.EmployeeUpdate{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		DepartmentID: r.DepartmentID,
	}
}

type listEmployeesRequest struct {
	httpapi.PageParams
	LastName     string `form:"last_name"`
	Email        string `form:"email"`
	DepartmentID *uint  `form:"department_id"`
}

func (r *listEmployeesRequest) toFilter() models.Filter {
	return models.Filter{
		LastName:     r.LastName,
		Email:        r.Email,
		DepartmentID: r.DepartmentID,
		Page:         r.Page,
		Size:         r.Size,
		Sort:         r.Sort,
		Order:        r.Order,
	}
}

type employeeResponse struct {
	ID           uint                  `json:"id"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	Email        string                `json:"email"`
	DepartmentID *uint                 `json:"department_id,omitempty"`
	Department   *models.DepartmentRef `json:"department,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func toEmployeeResponse(emp *models.Employee, dept *models.DepartmentRef) employeeResponse {
	return employeeResponse{
		ID:           emp.ID,
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
		Email:        emp.Email,
		DepartmentID: emp.DepartmentID,
		Department:   dept,
		CreatedAt:    emp.CreatedAt,
		UpdatedAt:    emp.UpdatedAt,
	}
}
