package store

import (
	"sync"

	"gudang/internal/session"
)

// collectionKey identifies one scoped collection inside the hub.
type collectionKey struct {
	kind  Kind
	scope session.Scope
}

// subscriber owns a dispatch goroutine so snapshots for one subscription are
// always delivered in order, independently of every other subscription.
type subscriber struct {
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	mu         sync.Mutex
	cond       *sync.Cond
	queue      [][]Record
	errs       []error
	closed     bool
	delivering bool
}

func newSubscriber(onSnapshot SnapshotFunc, onError ErrorFunc) *subscriber {
	s := &subscriber{onSnapshot: onSnapshot, onError: onError}
	s.cond = sync.NewCond(&s.mu)
	go s.dispatch()
	return s
}

func (s *subscriber) enqueue(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, records)
	s.cond.Signal()
}

func (s *subscriber) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.errs = append(s.errs, err)
	s.cond.Signal()
}

// dispatch delivers queued snapshots and errors one at a time. The lock is
// released around each callback so a listener may call back into the store,
// but close() still waits for an in-flight delivery before returning.
func (s *subscriber) dispatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		for !s.closed && len(s.queue) == 0 && len(s.errs) == 0 {
			s.cond.Wait()
		}
		if s.closed {
			return
		}

		var deliver func()
		if len(s.errs) > 0 {
			err := s.errs[0]
			s.errs = s.errs[1:]
			if s.onError != nil {
				deliver = func() { s.onError(err) }
			}
		} else {
			records := s.queue[0]
			s.queue = s.queue[1:]
			deliver = func() { s.onSnapshot(records) }
		}
		if deliver == nil {
			continue
		}

		s.delivering = true
		s.mu.Unlock()
		deliver()
		s.mu.Lock()
		s.delivering = false
		s.cond.Broadcast()
	}
}

// close blocks until any in-flight callback has finished, then prevents all
// further delivery.
func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.queue = nil
	s.errs = nil
	s.cond.Broadcast()
	for s.delivering {
		s.cond.Wait()
	}
}

// hub fans full-collection snapshots out to the subscribers of each scoped
// collection.
type hub struct {
	mu   sync.Mutex
	subs map[collectionKey]map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[collectionKey]map[*subscriber]struct{})}
}

// subscribe registers a listener and returns its cancel function. The cancel
// function is idempotent; after it returns, the listener never fires again.
func (h *hub) subscribe(key collectionKey, onSnapshot SnapshotFunc, onError ErrorFunc) (*subscriber, CancelFunc) {
	sub := newSubscriber(onSnapshot, onError)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[*subscriber]struct{})
	}
	h.subs[key][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[key], sub)
			h.mu.Unlock()
			sub.close()
		})
	}
	return sub, cancel
}

// broadcast queues a snapshot for every subscriber of the collection.
func (h *hub) broadcast(key collectionKey, records []Record) {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs[key]))
	for sub := range h.subs[key] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.enqueue(records)
	}
}

// broadcastError queues a listener failure for every subscriber of the
// collection without dropping any subscription.
func (h *hub) broadcastError(key collectionKey, err error) {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs[key]))
	for sub := range h.subs[key] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.fail(err)
	}
}
