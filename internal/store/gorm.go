package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gudang/internal/apperr"
	"gudang/internal/session"
)

// recordRow is the database shape of a record. The payload stays schemaless
// (a JSON document) so products and transactions share one table, partitioned
// by (tenant_id, user_id, kind).
type recordRow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	TenantID  string `gorm:"index:idx_records_scope;type:varchar(100)"`
	UserID    string `gorm:"index:idx_records_scope;type:varchar(100)"`
	Kind      string `gorm:"index:idx_records_scope;type:varchar(32)"`
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (recordRow) TableName() string { return "records" }

// Feed receives a change event after every successful mutation, so peer
// instances sharing the database can refresh their subscribers.
type Feed interface {
	PublishRecordEvent(op string, kind Kind, scope session.Scope, id string) error
}

// GormStore is the durable Store implementation.
type GormStore struct {
	db   *gorm.DB
	hub  *hub
	feed Feed // nil skips publication

	// mu serializes every load-and-broadcast pair, and subscriber
	// registration with it. Without it two mutations could enqueue their
	// snapshots in the opposite order of their commits, leaving subscribers
	// on a stale final set.
	mu sync.Mutex
}

// NewGormStore migrates the records table and returns a ready store.
func NewGormStore(db *gorm.DB, feed Feed) (*GormStore, error) {
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records table: %w", err)
	}
	return &GormStore{db: db, hub: newHub(), feed: feed}, nil
}

var _ Store = (*GormStore)(nil)

// Subscribe registers a listener and delivers the current set. A failed
// initial load is a subscribe error; later reload failures reach onError.
func (g *GormStore) Subscribe(kind Kind, scope session.Scope, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	key := collectionKey{kind: kind, scope: scope}

	// Holding mu across load, registration and the initial enqueue means no
	// reload can slip between them: a mutation committing now either waits
	// and broadcasts to the registered subscriber, or is already in the
	// initial set.
	g.mu.Lock()
	defer g.mu.Unlock()
	records, err := g.load(key)
	if err != nil {
		return nil, &apperr.SubscriptionError{Kind: string(kind), Err: err}
	}
	sub, cancel := g.hub.subscribe(key, onSnapshot, onError)
	sub.enqueue(records)
	return cancel, nil
}

func (g *GormStore) Create(kind Kind, scope session.Scope, fields Fields) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", &apperr.WriteError{Op: "create", Kind: string(kind), Err: err}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", &apperr.WriteError{Op: "create", Kind: string(kind), Err: err}
	}
	row := recordRow{
		ID:       uuid.New().String(),
		TenantID: scope.TenantID,
		UserID:   scope.UserID,
		Kind:     string(kind),
		Data:     data,
	}
	if err := g.db.Create(&row).Error; err != nil {
		return "", &apperr.WriteError{Op: "create", Kind: string(kind), Err: err}
	}
	g.afterMutation("create", kind, scope, row.ID)
	return row.ID, nil
}

func (g *GormStore) Update(kind Kind, scope session.Scope, id string, fields Fields) error {
	if err := scope.Validate(); err != nil {
		return &apperr.WriteError{Op: "update", Kind: string(kind), ID: id, Err: err}
	}
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var row recordRow
		err := tx.First(&row, "id = ? AND tenant_id = ? AND user_id = ? AND kind = ?",
			id, scope.TenantID, scope.UserID, string(kind)).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("record not found")
		}
		if err != nil {
			return err
		}

		var current Fields
		if len(row.Data) > 0 {
			if err := json.Unmarshal(row.Data, &current); err != nil {
				return fmt.Errorf("failed to decode stored record: %w", err)
			}
		}
		data, err := json.Marshal(current.Merge(fields))
		if err != nil {
			return err
		}
		// Updates bumps updated_at through gorm's timestamp tracking.
		return tx.Model(&row).Updates(map[string]any{"data": data}).Error
	})
	if err != nil {
		return &apperr.WriteError{Op: "update", Kind: string(kind), ID: id, Err: err}
	}
	g.afterMutation("update", kind, scope, id)
	return nil
}

// Delete removes a record. Zero rows affected is still a success: the caller
// asked for the record to be gone and it is.
func (g *GormStore) Delete(kind Kind, scope session.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return &apperr.WriteError{Op: "delete", Kind: string(kind), ID: id, Err: err}
	}
	res := g.db.Delete(&recordRow{}, "id = ? AND tenant_id = ? AND user_id = ? AND kind = ?",
		id, scope.TenantID, scope.UserID, string(kind))
	if res.Error != nil {
		return &apperr.WriteError{Op: "delete", Kind: string(kind), ID: id, Err: res.Error}
	}
	if res.RowsAffected > 0 {
		g.afterMutation("delete", kind, scope, id)
	}
	return nil
}

// Refresh rebroadcasts the current set to local subscribers. The change feed
// consumer calls this when a peer instance mutates a shared collection.
func (g *GormStore) Refresh(kind Kind, scope session.Scope) {
	g.reload(collectionKey{kind: kind, scope: scope})
}

func (g *GormStore) afterMutation(op string, kind Kind, scope session.Scope, id string) {
	g.reload(collectionKey{kind: kind, scope: scope})
	if g.feed != nil {
		if err := g.feed.PublishRecordEvent(op, kind, scope, id); err != nil {
			log.Printf("Warning: failed to publish %s event for %s %s: %v", op, kind, id, err)
		}
	}
}

func (g *GormStore) reload(key collectionKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	records, err := g.load(key)
	if err != nil {
		g.hub.broadcastError(key, &apperr.SubscriptionError{Kind: string(key.kind), Err: err})
		return
	}
	g.hub.broadcast(key, records)
}

func (g *GormStore) load(key collectionKey) ([]Record, error) {
	var rows []recordRow
	err := g.db.Find(&rows, "tenant_id = ? AND user_id = ? AND kind = ?",
		key.scope.TenantID, key.scope.UserID, string(key.kind)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key.kind, err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var fields Fields
		if len(row.Data) > 0 {
			if err := json.Unmarshal(row.Data, &fields); err != nil {
				return nil, fmt.Errorf("failed to decode record %s: %w", row.ID, err)
			}
		}
		records = append(records, Record{
			ID:        row.ID,
			Fields:    fields,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return records, nil
}
