package store_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gudang/internal/apperr"
	"gudang/internal/session"
	"gudang/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScope = session.Scope{TenantID: "tenant-1", UserID: "user-1"}

// collectSnapshots subscribes and funnels every delivered snapshot into a
// channel the test can wait on.
func collectSnapshots(t *testing.T, m *store.MemoryStore, kind store.Kind, scope session.Scope) (<-chan []store.Record, store.CancelFunc) {
	t.Helper()
	snapshots := make(chan []store.Record, 16)
	cancel, err := m.Subscribe(kind, scope, func(records []store.Record) {
		snapshots <- records
	}, nil)
	require.NoError(t, err)
	return snapshots, cancel
}

func waitSnapshot(t *testing.T, snapshots <-chan []store.Record) []store.Record {
	t.Helper()
	select {
	case records := <-snapshots:
		return records
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestMemoryStore_SubscribeDeliversInitialSnapshot(t *testing.T) {
	m := store.NewMemoryStore()

	snapshots, cancel := collectSnapshots(t, m, store.KindProducts, testScope)
	defer cancel()

	assert.Empty(t, waitSnapshot(t, snapshots))
}

func TestMemoryStore_EveryChangeDeliversFullSnapshot(t *testing.T) {
	m := store.NewMemoryStore()

	snapshots, cancel := collectSnapshots(t, m, store.KindProducts, testScope)
	defer cancel()
	waitSnapshot(t, snapshots) // initial empty set

	id1, err := m.Create(store.KindProducts, testScope, store.Fields{"name": "Kopi", "stock": 3})
	require.NoError(t, err)
	assert.Len(t, waitSnapshot(t, snapshots), 1)

	id2, err := m.Create(store.KindProducts, testScope, store.Fields{"name": "Gula", "stock": 1})
	require.NoError(t, err)
	got := waitSnapshot(t, snapshots)
	assert.Len(t, got, 2)

	// Snapshots carry the whole collection, not deltas.
	ids := map[string]bool{}
	for _, r := range got {
		ids[r.ID] = true
	}
	assert.True(t, ids[id1])
	assert.True(t, ids[id2])

	require.NoError(t, m.Delete(store.KindProducts, testScope, id1))
	assert.Len(t, waitSnapshot(t, snapshots), 1)
}

func TestMemoryStore_SnapshotsArriveInOrder(t *testing.T) {
	m := store.NewMemoryStore()

	snapshots, cancel := collectSnapshots(t, m, store.KindTransactions, testScope)
	defer cancel()

	for i := 0; i < 20; i++ {
		_, err := m.Create(store.KindTransactions, testScope, store.Fields{"description": "entry"})
		require.NoError(t, err)
	}

	// One subscription sees a monotonically growing collection: snapshots are
	// queued per subscriber and delivered strictly in order.
	prev := -1
	for i := 0; i <= 20; i++ {
		got := waitSnapshot(t, snapshots)
		assert.Greater(t, len(got), prev)
		prev = len(got)
	}
	assert.Equal(t, 20, prev)
}

func TestMemoryStore_ConcurrentWritesKeepSnapshotsOrdered(t *testing.T) {
	m := store.NewMemoryStore()

	var mu sync.Mutex
	var lengths []int
	cancel, err := m.Subscribe(store.KindProducts, testScope, func(records []store.Record) {
		mu.Lock()
		lengths = append(lengths, len(records))
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	defer cancel()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Create(store.KindProducts, testScope, store.Fields{"name": fmt.Sprintf("p%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(lengths) == writers+1
	}, 2*time.Second, 10*time.Millisecond)

	// Each write's snapshot is taken and queued inside the same critical
	// section as the write itself, so the subscriber sees the collection grow
	// one record at a time and the final snapshot is never stale.
	mu.Lock()
	defer mu.Unlock()
	for i, n := range lengths {
		assert.Equal(t, i, n, "snapshot %d", i)
	}
}

func TestMemoryStore_SubscribeDuringWritesNeverRegresses(t *testing.T) {
	m := store.NewMemoryStore()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Create(store.KindProducts, testScope, store.Fields{"name": fmt.Sprintf("p%d", i)})
			assert.NoError(t, err)
		}(i)
	}

	// Subscribing mid-write must slot the initial snapshot into the same
	// order: later broadcasts may only grow it.
	var mu sync.Mutex
	var lengths []int
	cancel, err := m.Subscribe(store.KindProducts, testScope, func(records []store.Record) {
		mu.Lock()
		lengths = append(lengths, len(records))
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	defer cancel()
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(lengths) > 0 && lengths[len(lengths)-1] == writers
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(lengths); i++ {
		assert.GreaterOrEqual(t, lengths[i], lengths[i-1], "snapshot %d shrank", i)
	}
}

func TestMemoryStore_UpdateMergesFields(t *testing.T) {
	m := store.NewMemoryStore()

	id, err := m.Create(store.KindProducts, testScope, store.Fields{"name": "Kopi", "stock": 3, "imageUrl": "u"})
	require.NoError(t, err)

	require.NoError(t, m.Update(store.KindProducts, testScope, id, store.Fields{"stock": 2}))

	snapshots, cancel := collectSnapshots(t, m, store.KindProducts, testScope)
	defer cancel()
	got := waitSnapshot(t, snapshots)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Fields["stock"])
	// Untouched fields survive a partial update.
	assert.Equal(t, "Kopi", got[0].Fields["name"])
	assert.Equal(t, "u", got[0].Fields["imageUrl"])
}

func TestMemoryStore_UpdateMissingRecord(t *testing.T) {
	m := store.NewMemoryStore()

	err := m.Update(store.KindProducts, testScope, "no-such-id", store.Fields{"stock": 1})

	var writeErr *apperr.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "update", writeErr.Op)
	assert.Equal(t, "no-such-id", writeErr.ID)
}

func TestMemoryStore_DeleteAbsentIsSilent(t *testing.T) {
	m := store.NewMemoryStore()

	snapshots, cancel := collectSnapshots(t, m, store.KindProducts, testScope)
	defer cancel()
	waitSnapshot(t, snapshots)

	// Deleting something that does not exist succeeds and broadcasts nothing.
	assert.NoError(t, m.Delete(store.KindProducts, testScope, "ghost"))

	select {
	case got := <-snapshots:
		t.Fatalf("unexpected snapshot: %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryStore_ScopesAreIsolated(t *testing.T) {
	m := store.NewMemoryStore()
	otherScope := session.Scope{TenantID: "tenant-1", UserID: "user-2"}

	_, err := m.Create(store.KindProducts, testScope, store.Fields{"name": "Kopi"})
	require.NoError(t, err)

	snapshots, cancel := collectSnapshots(t, m, store.KindProducts, otherScope)
	defer cancel()

	assert.Empty(t, waitSnapshot(t, snapshots))
}

func TestMemoryStore_KindsAreIsolated(t *testing.T) {
	m := store.NewMemoryStore()

	_, err := m.Create(store.KindProducts, testScope, store.Fields{"name": "Kopi"})
	require.NoError(t, err)

	snapshots, cancel := collectSnapshots(t, m, store.KindTransactions, testScope)
	defer cancel()

	assert.Empty(t, waitSnapshot(t, snapshots))
}

func TestMemoryStore_UnsubscribeStopsDelivery(t *testing.T) {
	m := store.NewMemoryStore()

	var delivered atomic.Int32
	cancel, err := m.Subscribe(store.KindProducts, testScope, func([]store.Record) {
		delivered.Add(1)
	}, nil)
	require.NoError(t, err)

	cancel()
	seen := delivered.Load()

	// Once cancel returns, no callback may fire again, even for writes that
	// race with the teardown.
	_, err = m.Create(store.KindProducts, testScope, store.Fields{"name": "Kopi"})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, seen, delivered.Load())

	// Cancel is idempotent.
	cancel()
}

func TestMemoryStore_InvalidScope(t *testing.T) {
	m := store.NewMemoryStore()
	empty := session.Scope{}

	_, err := m.Subscribe(store.KindProducts, empty, func([]store.Record) {}, nil)
	var authErr *apperr.AuthError
	assert.ErrorAs(t, err, &authErr)

	_, err = m.Create(store.KindProducts, empty, store.Fields{})
	var writeErr *apperr.WriteError
	assert.ErrorAs(t, err, &writeErr)
	assert.ErrorAs(t, err, &authErr)
}

func TestMemoryStore_SnapshotsAreCopies(t *testing.T) {
	m := store.NewMemoryStore()

	id, err := m.Create(store.KindProducts, testScope, store.Fields{"name": "Kopi"})
	require.NoError(t, err)

	snapshots, cancel := collectSnapshots(t, m, store.KindProducts, testScope)
	defer cancel()
	got := waitSnapshot(t, snapshots)
	require.Len(t, got, 1)

	// Mutating a delivered snapshot must not leak into the store.
	got[0].Fields["name"] = "tampered"

	require.NoError(t, m.Update(store.KindProducts, testScope, id, store.Fields{"stock": 1}))
	fresh := waitSnapshot(t, snapshots)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Kopi", fresh[0].Fields["name"])
}
