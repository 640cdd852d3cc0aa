// Package storage defines the durable key-value persistence consumed by the
// Stitch client to hold auth state, along with in-memory and SQLite-backed
// implementations. Implementations must be safe for concurrent use.
package storage

import "errors"

// ErrNotFound reports that no value exists for the requested key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is durable key-value persistence for client auth state. The client
// stores a single small document per app client, so implementations are free
// to optimise for tiny payloads.
type Storage interface {
	// Get returns the value stored for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(key string, value []byte) error

	// Remove deletes the value stored for key. Removing an absent key is not
	// an error.
	Remove(key string) error
}
