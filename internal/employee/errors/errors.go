// Package errors defines the error conditions of the employee service.
package errors

import "fmt"

var (
	ErrNotFound       = fmt.Errorf("employee not found")
	ErrDuplicateEmail = fmt.Errorf("duplicate email")
	ErrInvalidInput   = fmt.Errorf("invalid input")
)
