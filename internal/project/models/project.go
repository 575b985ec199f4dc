// Package models defines the domain models for the Project entity family:
// projects and their memberships.
package models

import (
	"regexp"
	"time"
)

// CodePattern is the accepted shape of a project code.
var CodePattern = regexp.MustCompile(`^[A-Z0-9-]{3,20}$`)

// Status enumerates the project lifecycle states.
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusActive    Status = "ACTIVE"
	StatusOnHold    Status = "ON_HOLD"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Project is a unit of work employees are assigned to through memberships.
type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:20;uniqueIndex"`
	Name        string `gorm:"size:200"`
	Description string `gorm:"size:1000"`
	Status      Status `gorm:"size:20;index"`
	StartDate   time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectUpdate is a sparse update: nil fields mean "leave unchanged".
// EndDate uses a double pointer so an explicit clear stays expressible
// through the full-update path.
type ProjectUpdate struct {
	Code        *string
	Name        *string
	Description *string
	Status      *Status
	StartDate   *time.Time
	EndDate     **time.Time
}

// Apply merges the set fields of u onto a copy of p and returns the result.
func (u *ProjectUpdate) Apply(p Project) Project {
	if u.Code != nil {
		p.Code = *u.Code
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.StartDate != nil {
		p.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		p.EndDate = *u.EndDate
	}
	return p
}

// ProjectMember assigns an employee to a project. EmployeeID is a weak
// reference validated against the employee service at assignment time
// only. At most one membership row exists per (project, employee) pair.
type ProjectMember struct {
	ID                uint   `gorm:"primaryKey"`
	ProjectID         uint   `gorm:"not null;uniqueIndex:idx_project_employee"`
	EmployeeID        uint   `gorm:"not null;uniqueIndex:idx_project_employee"`
	Role              string `gorm:"size:100"`
	AllocationPercent int
	AssignedAt        time.Time
}

// NewMember is one entry of a batch membership request.
type NewMember struct {
	EmployeeID        uint
	Role              string
	AllocationPercent int
}

// EmployeeRef is the slice of an employee attached to membership
// responses, mirroring the employee service's representation.
type EmployeeRef struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// EnrichedMember pairs a membership with its best-effort employee data.
type EnrichedMember struct {
	ProjectMember
	Employee *EmployeeRef
}

// Filter narrows project listings. Name and Code match as substrings;
// Status matches exactly.
type Filter struct {
	Name   string
	Code   string
	Status Status
	Page   int
	Size   int
	Sort   string
	Order  string
}

// StatusCount is one row of the by-status statistics.
type StatusCount struct {
	Status Status
	Count  int64
}

// StatGroup is one labelled group of a statistics response.
type StatGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}
