// Package httpapi contains the pieces shared by the three service HTTP
// layers: the error body format, pagination parameters, and the server
// lifecycle wrapper.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds carried in the machine-readable error body.
const (
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindConflict    = "conflict"
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
)

// ErrorDetail is the wire format for a single error condition. Context
// carries structured remediation data (dependent counts, offending field,
// remote service name) so clients can self-remediate.
type ErrorDetail struct {
	Kind    string         `json:"kind"`
	Title   string         `json:"title"`
	Detail  string         `json:"detail"`
	Field   string         `json:"field,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorBody wraps ErrorDetail under a stable top-level key.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// Validation writes a 400 response for malformed or out-of-range input.
func Validation(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: ErrorDetail{
		Kind:   KindValidation,
		Title:  "Invalid request",
		Detail: detail,
	}})
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorBody{Error: ErrorDetail{
		Kind:   KindNotFound,
		Title:  "Resource not found",
		Detail: detail,
	}})
}

// Conflict writes a 409 response. field names the offending unique field
// when the conflict is a uniqueness collision; ctx carries extra context.
func Conflict(c *gin.Context, detail, field string, ctx map[string]any) {
	c.AbortWithStatusJSON(http.StatusConflict, ErrorBody{Error: ErrorDetail{
		Kind:    KindConflict,
		Title:   "Conflict",
		Detail:  detail,
		Field:   field,
		Context: ctx,
	}})
}

// Unavailable writes a 503 response for a failed remote dependency.
func Unavailable(c *gin.Context, detail, service string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorBody{Error: ErrorDetail{
		Kind:    KindUnavailable,
		Title:   "Dependent service unavailable",
		Detail:  detail,
		Context: map[string]any{"service": service},
	}})
}

// Internal writes a 500 response without leaking the underlying error.
func Internal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
		Kind:   KindInternal,
		Title:  "Internal server error",
		Detail: "an unexpected error occurred",
	}})
}
