// Package store provides the record store: per-scope collections of schemaless
// records with live full-snapshot subscriptions and create/update/delete
// operations.
package store

import (
	"time"

	"gudang/internal/session"
)

// Kind names a collection within a scope.
type Kind string

const (
	KindProducts     Kind = "products"
	KindTransactions Kind = "transactions"
)

// Fields holds the mutable payload of a record.
type Fields map[string]any

// Clone returns an independent shallow copy of the fields.
func (f Fields) Clone() Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// Merge returns a copy of f with the entries of patch applied on top.
func (f Fields) Merge(patch Fields) Fields {
	c := f.Clone()
	for k, v := range patch {
		c[k] = v
	}
	return c
}

// Record is one stored document. ID and the timestamps are assigned by the
// store; CreatedAt is set once, UpdatedAt is refreshed on every mutation.
type Record struct {
	ID        string
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SnapshotFunc receives the full current set of records in the subscribed
// collection, not a delta, every time any record in it changes.
type SnapshotFunc func(records []Record)

// ErrorFunc receives listener failures. The subscription stays registered.
type ErrorFunc func(err error)

// CancelFunc tears a subscription down. It returns only once no further
// snapshot can be delivered to the listener, and is safe to call twice.
type CancelFunc func()

// Store is the record store contract. Every operation is scoped: records are
// exclusively owned by the (tenant, user) pair under which they were created.
type Store interface {
	// Subscribe registers a live listener on a scoped collection. The
	// current set is delivered immediately, then again after every change.
	// Snapshots for one subscription arrive in order; nothing is guaranteed
	// across two independent subscriptions.
	Subscribe(kind Kind, scope session.Scope, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error)

	// Create stores a new record and returns its assigned id.
	Create(kind Kind, scope session.Scope, fields Fields) (string, error)

	// Update applies a partial update: only the provided fields change.
	// Updating a record that no longer exists is a WriteError.
	Update(kind Kind, scope session.Scope, id string, fields Fields) error

	// Delete removes a record. Deleting an already absent record succeeds.
	Delete(kind Kind, scope session.Scope, id string) error
}
