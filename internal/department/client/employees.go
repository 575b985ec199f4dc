// Package client talks to the employee service, which is the authority on
// which employees are assigned to a department.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/staffhub/internal/pkg/remote"
	"go.uber.org/zap"
)

// EmployeeCounter answers "how many employees reference this department".
// The department service consults it before every delete.
type EmployeeCounter struct {
	api *remote.Client
}

// NewEmployeeCounter constructs a counter against the employee service at
// baseURL.
func NewEmployeeCounter(baseURL string, timeout time.Duration, logger *zap.Logger) *EmployeeCounter {
	return &EmployeeCounter{
		api: remote.NewClient(baseURL, timeout, logger.Named("employee_counter")),
	}
}

type countResponse struct {
	DepartmentID uint  `json:"department_id"`
	Count        int64 `json:"count"`
}

// CountByDepartment returns the number of employees assigned to the
// department. Failures propagate: the caller must not guess on ambiguous
// information when deciding whether a delete is safe.
func (c *EmployeeCounter) CountByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	var resp countResponse
	path := fmt.Sprintf("/v1/employees/count?department_id=%d", departmentID)
	if err := c.api.GetJSON(ctx, path, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
