// internal/store/store.go

// Package store persists the ticket number → remote record ID mapping. Every
// backend loads the full mapping into memory at startup and treats writes as
// append-only: the first record ID stored for a ticket number wins.
package store

import "context"

// Store is the durable ticket→record mapping owned by the process.
type Store interface {
	// Get returns the record ID for a ticket number, if one is stored.
	Get(n int) (string, bool)
	// Put stores the record ID for a ticket number. Putting a number that is
	// already mapped is a no-op and not an error.
	Put(ctx context.Context, n int, recordID string) error
	// Len reports how many tickets are mapped.
	Len() int
}
