package notify

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Action is the side effect executed when a confirmation is accepted.
type Action func() error

// Confirmation describes a pending confirmation request.
type Confirmation struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

var (
	// ErrConfirmPending means a second confirmation was requested before the
	// first resolved. The slot holds at most one request at a time.
	ErrConfirmPending = errors.New("another confirmation is already pending")

	// ErrNoSuchConfirmation means the token did not match the pending
	// request, usually because it was already confirmed or cancelled.
	ErrNoSuchConfirmation = errors.New("no matching pending confirmation")
)

// Confirmer holds a single pending-action slot. The action runs at most once
// per confirmed request: the slot is emptied before the action executes, so a
// duplicate confirm and a confirm racing a cancel both fail cleanly.
type Confirmer struct {
	mu      sync.Mutex
	pending *pendingAction
}

type pendingAction struct {
	confirmation Confirmation
	action       Action
}

func NewConfirmer() *Confirmer {
	return &Confirmer{}
}

// Request stores an action awaiting confirmation and returns the request
// details for presentation. Fails when a request is already pending.
func (c *Confirmer) Request(title, message string, action Action) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return Confirmation{}, ErrConfirmPending
	}
	p := &pendingAction{
		confirmation: Confirmation{Token: uuid.New().String(), Title: title, Message: message},
		action:       action,
	}
	c.pending = p
	return p.confirmation, nil
}

// Confirm executes the pending action identified by token.
func (c *Confirmer) Confirm(token string) error {
	c.mu.Lock()
	p := c.pending
	if p == nil || p.confirmation.Token != token {
		c.mu.Unlock()
		return ErrNoSuchConfirmation
	}
	c.pending = nil
	c.mu.Unlock()

	return p.action()
}

// Cancel drops the pending request without side effects.
func (c *Confirmer) Cancel(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil || c.pending.confirmation.Token != token {
		return ErrNoSuchConfirmation
	}
	c.pending = nil
	return nil
}

// Pending returns the current request, if any.
func (c *Confirmer) Pending() (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Confirmation{}, false
	}
	return c.pending.confirmation, true
}
