// Package models defines the domain model for the Department entity.
package models

import (
	"regexp"
	"time"
)

// CodePattern is the accepted shape of a department code.
var CodePattern = regexp.MustCompile(`^[A-Z]{2,10}$`)

// Department is an organizational unit. Employees reference departments by
// id from the employee service; there is no local foreign key.
type Department struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;uniqueIndex"`
	Code        string `gorm:"size:10;uniqueIndex"`
	Description string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentUpdate is a sparse update: nil fields mean "leave unchanged".
type DepartmentUpdate struct {
	Name        *string
	Code        *string
	Description *string
}

// Apply merges the set fields of u onto a copy of d and returns the result.
func (u *DepartmentUpdate) Apply(d Department) Department {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Code != nil {
		d.Code = *u.Code
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	return d
}

// Empty reports whether the update carries no fields.
func (u *DepartmentUpdate) Empty() bool {
	return u.Name == nil && u.Code == nil && u.Description == nil
}

// Filter narrows department listings. Name and Code match as substrings.
type Filter struct {
	Name  string
	Code  string
	Page  int
	Size  int
	Sort  string
	Order string
}
