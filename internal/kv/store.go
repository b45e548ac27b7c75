// Package kv provides the key-value persistence medium behind learner progress.
// Values are opaque strings (JSON documents in practice); keys are namespaced by callers.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a write would exceed the medium's capacity.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
	// ErrUnavailable wraps failures of a remote medium: connection errors,
	// timeouts and rejected commands. Errors returned by an UpdateFunc are
	// passed through unwrapped.
	ErrUnavailable = errors.New("kv: storage unavailable")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// UpdateFunc computes the next value for a key from its current value.
// ok reports whether the key existed. Returning write=false leaves the key untouched.
// Backends with optimistic concurrency may call fn more than once.
type UpdateFunc func(current string, ok bool) (next string, write bool, err error)

// Store is a string key-value medium.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Update performs an atomic read-modify-write on a single key.
	Update(key string, fn UpdateFunc) error
}

// HealthChecker is implemented by media backed by a remote service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
