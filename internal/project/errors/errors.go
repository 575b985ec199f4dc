// Package errors defines the error conditions of the project service.
package errors

import "fmt"

var (
	ErrNotFound           = fmt.Errorf("project not found")
	ErrMemberNotFound     = fmt.Errorf("membership not found")
	ErrDuplicateCode      = fmt.Errorf("duplicate code")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrEmployeeSvcFailure = fmt.Errorf("employee service unavailable")
)

// DuplicateInBatchError rejects a membership batch that names the same
// employee more than once. Detected locally, before any remote call.
type DuplicateInBatchError struct {
	EmployeeID uint
}

func (e *DuplicateInBatchError) Error() string {
	return fmt.Sprintf("employee %d appears more than once in the batch", e.EmployeeID)
}

// AlreadyMemberError rejects the whole batch when any requested employee
// already has a membership row for the project.
type AlreadyMemberError struct {
	ProjectID   uint
	EmployeeIDs []uint
}

func (e *AlreadyMemberError) Error() string {
	return fmt.Sprintf("employees %v are already members of project %d", e.EmployeeIDs, e.ProjectID)
}

// UnknownEmployeesError rejects the whole batch when the employee service
// does not know one or more of the requested ids.
type UnknownEmployeesError struct {
	EmployeeIDs []uint
}

func (e *UnknownEmployeesError) Error() string {
	return fmt.Sprintf("employees %v are unknown to the employee service", e.EmployeeIDs)
}
