package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by store operations that require an existing
// identity when no record matches.
var ErrNotFound = errors.New("store: record not found")

// Identity is the storage-owned handle for one persisted object. Empty means
// the object has never been saved.
type Identity string

// Record pairs a persisted object with its identity.
type Record struct {
	Identity Identity
	Object   any
}

// Criteria narrows FindBy/CountBy results. Fields matches exported fields by
// normalized name and deep equality; Predicate, when set, is ANDed on top and
// receives the stored object. A zero Criteria matches everything.
type Criteria struct {
	Fields    map[string]any
	Predicate func(object any) (bool, error)
}

// Store is the persistence collaborator consumed by the fixtures core. It
// carries no transaction or migration semantics; kind scopes every operation
// to one entity type.
type Store interface {
	// Save persists object under kind. An empty id creates a new record and
	// returns its generated identity; a non-empty id updates in place.
	Save(ctx context.Context, kind string, id Identity, object any) (Identity, error)
	// Delete removes a record. Deleting an unknown identity returns ErrNotFound.
	Delete(ctx context.Context, kind string, id Identity) error
	// Find fetches one record by identity; ok is false when absent.
	Find(ctx context.Context, kind string, id Identity) (object any, ok bool, err error)
	// FindBy returns all matching records in insertion order.
	FindBy(ctx context.Context, kind string, c Criteria) ([]Record, error)
	// CountBy counts matching records.
	CountBy(ctx context.Context, kind string, c Criteria) (int, error)
	// Truncate removes every record of kind.
	Truncate(ctx context.Context, kind string) error
}

// NotFoundError wraps ErrNotFound with the kind and identity that missed.
type NotFoundError struct {
	Kind     string
	Identity Identity
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("store: %s %q not found", e.Kind, string(e.Identity))
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }
