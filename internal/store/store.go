// Package store persists client records keyed by card code.
//
// The Store interface isolates the reconciliation and edit logic from the
// persistence technology: the production backend is a PostgreSQL session
// (postgres.go), and an in-memory map backend (memory.go) serves tests and
// embedded use. A Store instance is a unit of work (open, mutate, Commit,
// Close), mirroring how each user action gets its own persistence scope.
package store

import (
	"context"
	"errors"

	"github.com/clientdesk/clientdesk/internal/client"
)

// ErrNotFound is returned by update and rename operations when no record
// exists under the given card code. Callers treat it as a recoverable
// condition (a reported skip), never a crash.
var ErrNotFound = errors.New("client not found")

// ErrDuplicate is returned by Insert when a record with the same card code
// already exists. Upsert callers are expected to check with FindByCode
// first; the error exists so a race or a caller bug surfaces loudly.
var ErrDuplicate = errors.New("card code already in use")

// Store is a card-code-keyed client store.
type Store interface {
	// FindByCode returns the record under code, or nil if none exists.
	// Absence is not an error.
	FindByCode(ctx context.Context, code string) (*client.Client, error)

	// Insert adds a new record. Returns ErrDuplicate if the key is taken.
	Insert(ctx context.Context, c *client.Client) error

	// UpdateFields copies every field except the card code from c onto the
	// record stored under code. Returns ErrNotFound if no such record.
	UpdateFields(ctx context.Context, code string, c *client.Client) error

	// RenameKey reassigns the record under oldCode to newCode.
	// Returns ErrNotFound if no record exists under oldCode. The caller
	// must verify that newCode is free before calling.
	RenameKey(ctx context.Context, oldCode, newCode string) error

	// Delete removes the record under code. Returns ErrNotFound if absent.
	Delete(ctx context.Context, code string) error

	// ListAllOrderedByLastName returns every record sorted ascending by
	// last name. The result is never nil; an empty store yields an empty
	// slice.
	ListAllOrderedByLastName(ctx context.Context) ([]client.Client, error)

	// Commit flushes all mutations made through this store as one unit.
	Commit(ctx context.Context) error

	// Close releases the store. Uncommitted mutations are discarded.
	Close(ctx context.Context) error
}
