package notify

import (
	"sync"

	"gudang/internal/session"
)

// Surface hands out the notification surface of each session scope, lazily.
// Every scope owns its own notice center and confirmation slot: one user's
// toasts and pending delete are invisible to every other user, and a pending
// request only blocks further requests from the same scope.
type Surface struct {
	mu       sync.Mutex
	centers  map[session.Scope]*Center
	confirms map[session.Scope]*Confirmer
}

func NewSurface() *Surface {
	return &Surface{
		centers:  make(map[session.Scope]*Center),
		confirms: make(map[session.Scope]*Confirmer),
	}
}

// Notices returns the scope's notice center, creating it on first use.
func (s *Surface) Notices(scope session.Scope) *Center {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.centers[scope]
	if !ok {
		c = NewCenter()
		s.centers[scope] = c
	}
	return c
}

// Confirmer returns the scope's confirmation slot, creating it on first use.
func (s *Surface) Confirmer(scope session.Scope) *Confirmer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confirms[scope]
	if !ok {
		c = NewConfirmer()
		s.confirms[scope] = c
	}
	return c
}
