package model

import "time"

// Lease is a time-bounded seat reservation for one user. It lives only
// in the lease store; the order id is assigned at lock time and shared
// with the durable order for the lease's lifetime.
type Lease struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	EventID   uint      `json:"eventId"`
	Seats     []Seat    `json:"seats"`
	TierHint  *uint     `json:"tierHint,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the lease is past its expiry at the given
// instant.
func (l *Lease) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// RemainingSeconds is the whole number of seconds until expiry, never
// negative.
func (l *Lease) RemainingSeconds(now time.Time) int {
	remaining := int(l.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SeatLock is the per-seat lease-store entry used for conflict checks.
type SeatLock struct {
	UserID    string    `json:"userId"`
	OrderID   string    `json:"orderId"`
	Seat      Seat      `json:"seat"`
	LockedAt  time.Time `json:"lockedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LockedSeatInfo names a seat held by someone else in availability
// responses.
type LockedSeatInfo struct {
	Seat      Seat      `json:"seat"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SeatAvailability classifies each requested seat into exactly one
// bucket; sold wins over locked.
type SeatAvailability struct {
	EventID   uint             `json:"eventId"`
	Available []Seat           `json:"availableSeats"`
	Locked    []LockedSeatInfo `json:"lockedSeats"`
	Sold      []Seat           `json:"soldSeats"`
}
