package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gartstein/staffhub/internal/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDepartmentLookupCachesByID(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/departments/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"name":"Marketing","code":"MKT"}`))
	}))
	defer srv.Close()

	lookup := NewDepartmentLookup(srv.URL, 0, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		ref, err := lookup.Department(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Marketing", ref.Name)
	}
	assert.EqualValues(t, 1, hits.Load(), "repeated lookups should be served from cache")
}

func TestDepartmentLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	lookup := NewDepartmentLookup(srv.URL, 0, zaptest.NewLogger(t))
	_, err := lookup.Department(context.Background(), 99)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestDepartmentLookupDoesNotCacheFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"name":"Marketing","code":"MKT"}`))
	}))
	defer srv.Close()

	lookup := NewDepartmentLookup(srv.URL, 0, zaptest.NewLogger(t))

	_, err := lookup.Department(context.Background(), 3)
	assert.ErrorIs(t, err, remote.ErrUnavailable)

	ref, err := lookup.Department(context.Background(), 3)
	require.NoError(t, err, "second attempt should reach the recovered service")
	assert.Equal(t, "Marketing", ref.Name)
}
