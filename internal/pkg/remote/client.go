// Package remote wraps the HTTP calls the services make to each other,
// classifying every outcome as ok, not-found, unavailable, or unexpected
// so callers switch on sentinels instead of inspecting raw responses.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound reports that the remote authority has no record for
	// the requested identifier.
	ErrNotFound = errors.New("remote: not found")
	// ErrUnavailable reports that the remote authority could not be
	// reached or answered with a server error.
	ErrUnavailable = errors.New("remote: service unavailable")
)

const defaultTimeout = 5 * time.Second

// Client issues JSON GET requests against a single remote service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs a Client for baseURL. A non-positive timeout falls
// back to the default.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("remote_client"),
	}
}

// GetJSON performs a GET against path and decodes the response body into
// out. A 404 maps to ErrNotFound, transport failures and 5xx answers map
// to ErrUnavailable, and any other non-2xx status is returned as an
// unexpected error.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		c.logger.Warn("remote call returned server error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected remote status %d for %s", resp.StatusCode, path)
	}
}
