// Package idempotency provides the key-value store used to deduplicate
// repeated create requests. A process-local map and a Redis-backed store
// are interchangeable behind the Store interface.
package idempotency

import "context"

// Store records the rendered result of a create request under a
// client-supplied opaque key. Implementations must be safe for concurrent
// use. Last-writer-wins on coincident stores for the same key is acceptable:
// the creation itself is protected against duplicate effects by the unique
// constraints at the storage layer.
type Store interface {
	// Processed reports whether key has a stored result and returns it.
	Processed(ctx context.Context, key string) ([]byte, bool, error)
	// Store saves the result produced for key.
	Store(ctx context.Context, key string, result []byte) error
	// Remove discards the entry for key.
	Remove(ctx context.Context, key string) error
}
