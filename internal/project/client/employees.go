// Package client talks to the employee service: best-effort enrichment of
// membership responses and hard validation of employee ids before a batch
// assignment commits.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gartstein/staffhub/internal/pkg/remote"
	"github.com/gartstein/staffhub/internal/project/models"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// EmployeeDirectory resolves employee records by id with a read-through
// TTL cache.
type EmployeeDirectory struct {
	api   *remote.Client
	cache *cache.Cache
}

// NewEmployeeDirectory constructs a directory against the employee
// service at baseURL.
func NewEmployeeDirectory(baseURL string, timeout time.Duration, logger *zap.Logger) *EmployeeDirectory {
	return &EmployeeDirectory{
		api:   remote.NewClient(baseURL, timeout, logger.Named("employee_directory")),
		cache: cache.New(cacheTTL, cacheCleanup),
	}
}

// Employee resolves a single employee by id. Errors carry the remote
// package sentinels; enrichment call sites swallow them, validation call
// sites do not.
func (c *EmployeeDirectory) Employee(ctx context.Context, id uint) (*models.EmployeeRef, error) {
	key := fmt.Sprintf("%d", id)
	if cached, ok := c.cache.Get(key); ok {
		ref := cached.(models.EmployeeRef)
		return &ref, nil
	}

	var ref models.EmployeeRef
	if err := c.api.GetJSON(ctx, fmt.Sprintf("/v1/employees/%d", id), &ref); err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, ref)
	return &ref, nil
}

// ValidateIDs resolves every id and aggregates the outcomes: the missing
// ids are returned when the authority answers, and any transport or
// server failure fails the whole validation.
func (c *EmployeeDirectory) ValidateIDs(ctx context.Context, ids []uint) (missing []uint, err error) {
	for _, id := range ids {
		_, err := c.Employee(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, remote.ErrNotFound):
			missing = append(missing, id)
		default:
			return nil, err
		}
	}
	return missing, nil
}
