// Package client talks to the department service for best-effort
// enrichment of employee responses.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/staffhub/internal/employee/models"
	"github.com/gartstein/staffhub/internal/pkg/remote"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// DepartmentLookup fetches department records by id with a read-through
// TTL cache. Concurrent misses may fetch the same id twice; that is
// tolerated, the cache only bounds steady-state traffic.
type DepartmentLookup struct {
	api   *remote.Client
	cache *cache.Cache
}

// NewDepartmentLookup constructs a lookup against the department service
// at baseURL.
func NewDepartmentLookup(baseURL string, timeout time.Duration, logger *zap.Logger) *DepartmentLookup {
	return &DepartmentLookup{
		api:   remote.NewClient(baseURL, timeout, logger.Named("department_lookup")),
		cache: cache.New(cacheTTL, cacheCleanup),
	}
}

// Department resolves a department by id. Errors carry the remote package
// sentinels; the caller decides whether to swallow them.
func (c *DepartmentLookup) Department(ctx context.Context, id uint) (*models.DepartmentRef, error) {
	key := fmt.Sprintf("%d", id)
	if cached, ok := c.cache.Get(key); ok {
		ref := cached.(models.DepartmentRef)
		return &ref, nil
	}

	var ref models.DepartmentRef
	if err := c.api.GetJSON(ctx, fmt.Sprintf("/v1/departments/%d", id), &ref); err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, ref)
	return &ref, nil
}
