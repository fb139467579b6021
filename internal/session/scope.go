// Package session carries the authenticated identity under which every
// record store call is made.
package session

import "gudang/internal/apperr"

// Scope is the (tenant, user) pair that partitions all records. It is
// constructed once per request from the configured tenant and the token's
// user id, and is read-only from then on.
type Scope struct {
	TenantID string
	UserID   string
}

// Validate reports an AuthError when either identifier is missing. A scope
// with an empty user id means the session never resolved.
func (s Scope) Validate() error {
	if s.TenantID == "" {
		return &apperr.AuthError{Reason: "no tenant configured for session"}
	}
	if s.UserID == "" {
		return &apperr.AuthError{Reason: "no user id resolved for session"}
	}
	return nil
}
