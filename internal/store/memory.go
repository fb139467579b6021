package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gudang/internal/apperr"
	"gudang/internal/session"
)

// MemoryStore is an in-memory implementation of Store with the same
// subscription semantics as the durable one.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[collectionKey]map[string]Record
	hub         *hub
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[collectionKey]map[string]Record),
		hub:         newHub(),
		now:         time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

// Subscribe registers a listener and immediately delivers the current set.
func (m *MemoryStore) Subscribe(kind Kind, scope session.Scope, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	key := collectionKey{kind: kind, scope: scope}
	m.mu.RLock()
	sub, cancel := m.hub.subscribe(key, onSnapshot, onError)
	sub.enqueue(m.snapshotLocked(key))
	m.mu.RUnlock()
	return cancel, nil
}

func (m *MemoryStore) Create(kind Kind, scope session.Scope, fields Fields) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", &apperr.WriteError{Op: "create", Kind: string(kind), Err: err}
	}
	key := collectionKey{kind: kind, scope: scope}
	now := m.now()
	rec := Record{
		ID:        uuid.New().String(),
		Fields:    fields.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	if m.collections[key] == nil {
		m.collections[key] = make(map[string]Record)
	}
	m.collections[key][rec.ID] = rec
	m.hub.broadcast(key, m.snapshotLocked(key))
	m.mu.Unlock()
	return rec.ID, nil
}

func (m *MemoryStore) Update(kind Kind, scope session.Scope, id string, fields Fields) error {
	if err := scope.Validate(); err != nil {
		return &apperr.WriteError{Op: "update", Kind: string(kind), ID: id, Err: err}
	}
	key := collectionKey{kind: kind, scope: scope}

	m.mu.Lock()
	rec, ok := m.collections[key][id]
	if !ok {
		m.mu.Unlock()
		return &apperr.WriteError{Op: "update", Kind: string(kind), ID: id, Err: fmt.Errorf("record not found")}
	}
	rec.Fields = rec.Fields.Merge(fields)
	rec.UpdatedAt = m.now()
	m.collections[key][id] = rec
	m.hub.broadcast(key, m.snapshotLocked(key))
	m.mu.Unlock()
	return nil
}

// Delete removes a record. Deleting an id that is already absent succeeds
// without a broadcast.
func (m *MemoryStore) Delete(kind Kind, scope session.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return &apperr.WriteError{Op: "delete", Kind: string(kind), ID: id, Err: err}
	}
	key := collectionKey{kind: kind, scope: scope}

	m.mu.Lock()
	_, ok := m.collections[key][id]
	if ok {
		delete(m.collections[key], id)
		m.hub.broadcast(key, m.snapshotLocked(key))
	}
	m.mu.Unlock()
	return nil
}

// snapshotLocked copies the full current set of a collection. Callers hold
// m.mu so the copy is enqueued in the same critical section as its mutation;
// two concurrent writes can never queue their snapshots out of order.
func (m *MemoryStore) snapshotLocked(key collectionKey) []Record {
	records := make([]Record, 0, len(m.collections[key]))
	for _, rec := range m.collections[key] {
		rec.Fields = rec.Fields.Clone()
		records = append(records, rec)
	}
	return records
}
