// Package utils holds small generic helpers shared across services.
package utils

// Ptr returns a pointer to v. Useful for building sparse update structs.
func Ptr[T any](v T) *T {
	return &v
}
