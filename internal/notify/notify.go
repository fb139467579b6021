// Package notify is the notification surface: dismissible toast notices and
// a single blocking confirmation slot, one of each per session scope.
package notify

import (
	"sync"
	"time"
)

// NoticeKind classifies a toast notice.
type NoticeKind string

const (
	Success NoticeKind = "success"
	Error   NoticeKind = "error"
	Info    NoticeKind = "info"
)

// Notice is one transient, dismissible message.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Center collects notices until a client drains them.
type Center struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCenter() *Center {
	return &Center{}
}

// Post records a notice.
func (c *Center) Post(kind NoticeKind, title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Kind: kind, Title: title, Message: message, At: time.Now()})
}

// Drain returns all pending notices and clears them.
func (c *Center) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	drained := c.notices
	c.notices = nil
	return drained
}
