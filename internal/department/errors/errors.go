// Package errors defines the error conditions of the department service.
package errors

import (
	"fmt"
)

var (
	ErrNotFound           = fmt.Errorf("department not found")
	ErrDuplicateName      = fmt.Errorf("duplicate name")
	ErrDuplicateCode      = fmt.Errorf("duplicate code")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrEmployeeSvcFailure = fmt.Errorf("employee service unavailable")
)

// InUseError blocks deletion of a department that still has employees
// assigned, as reported by the employee service.
type InUseError struct {
	DepartmentID   uint
	DepartmentName string
	EmployeeCount  int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("department %q cannot be deleted: %d employees are still assigned",
		e.DepartmentName, e.EmployeeCount)
}
