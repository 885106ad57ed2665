package domain

import "time"

// Subscription grants a user access to a magazine until ValidUntil.
//
// Cancellation and expiry are independent signals: a row can be expired but
// not cancelled, cancelled before expiry, or both. Rows are never hard-deleted
// and never updated after creation except for the cancellation mark.
type Subscription struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	MagazineID  string     `json:"magazine_id"`
	ValidUntil  time.Time  `json:"valid_until"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Populated only by queries that join the referenced records.
	User     *User     `json:"user,omitempty"`
	Magazine *Magazine `json:"magazine,omitempty"`
}

// IsCancelled returns true if the subscription carries a cancellation mark.
func (s *Subscription) IsCancelled() bool {
	return s.CancelledAt != nil
}

// IsActive reports whether the subscription grants access at the given time.
// ValidUntil is an exclusive bound: a subscription valid until exactly now is
// no longer active.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.CancelledAt == nil && s.ValidUntil.After(now)
}
