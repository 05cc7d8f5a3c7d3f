// Package session describes the per-visitor key/value store that survives the
// round trip through the bank's pages.
package session

import "context"

// Session holds JSON-encodable values for one visitor.
type Session interface {
	ID() string
	// Get decodes the value stored under key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Store resolves a session identifier to its Session.
type Store interface {
	Load(id string) Session
}
