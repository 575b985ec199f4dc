// Package models defines the domain model for the Employee entity.
package models

import "time"

// Employee is a person record. DepartmentID is a weak reference into the
// department service: it may point at a department that no longer exists,
// and it is resolved over the network, never joined locally.
type Employee struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"size:100"`
	LastName     string `gorm:"size:100"`
	Email        string `gorm:"size:254;uniqueIndex"`
	DepartmentID *uint  `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployeeUpdate is a sparse update: nil fields mean "leave unchanged".
// DepartmentID uses a double pointer so "clear the department" (explicit
// null) is distinguishable from "leave unchanged" (absent).
type EmployeeUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	DepartmentID **uint
}

// Apply merges the set fields of u onto a copy of emp and returns the result.
func (u *EmployeeUpdate) Apply(emp Employee) Employee {
	if u.FirstName != nil {
		emp.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		emp.LastName = *u.LastName
	}
	if u.Email != nil {
		emp.Email = *u.Email
	}
	if u.DepartmentID != nil {
		emp.DepartmentID = *u.DepartmentID
	}
	return emp
}

// DepartmentRef is the slice of a department the employee service attaches
// to responses. It mirrors the department service's representation.
type DepartmentRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// EnrichedEmployee pairs an employee with its best-effort department data.
// Department is nil whenever the department service could not answer.
type EnrichedEmployee struct {
	Employee
	Department *DepartmentRef
}

// Filter narrows employee listings. LastName and Email match as
// substrings; DepartmentID matches exactly.
type Filter struct {
	LastName     string
	Email        string
	DepartmentID *uint
	Page         int
	Size         int
	Sort         string
	Order        string
}

// DepartmentCount is one row of the by-department statistics. A nil
// DepartmentID groups employees with no department assigned.
type DepartmentCount struct {
	DepartmentID *uint
	Count        int64
}

// StatGroup is one labelled group of a statistics response.
type StatGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}
