// Package shared holds domain contracts used across bounded contexts.
package shared

import (
	"context"
	"errors"
)

// ErrLockNotAcquired is returned when a lock stays held by someone else past the wait budget.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker provides mutual exclusion keyed by name, across processes where the
// implementation allows it.
type Locker interface {
	// Acquire blocks until key is held or the implementation's wait budget runs out.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
