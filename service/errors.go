package service

import (
	"errors"
	"fmt"
	"strings"

	"event_ticketing/model"
)

var (
	ErrLeaseNotFound       = errors.New("lease not found or does not belong to user")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentMismatch     = errors.New("payment reference does not match the order")
	ErrPaymentNotConfirmed = errors.New("payment is not confirmed by the gateway")
	ErrOversold            = errors.New("not enough available seats to complete the order")
	ErrAssignmentsMissing  = errors.New("order has no seat assignment records")
)

// ValidationError covers malformed input and unmatched tiers.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SeatsSoldError names the requested seats that already have a durable
// sold ticket.
type SeatsSoldError struct {
	Seats []model.Seat
}

func (e *SeatsSoldError) Error() string {
	return "seats already sold: " + strings.Join(model.SeatStrings(e.Seats), ", ")
}

// SeatsLockedError names the requested seats covered by another user's
// active lease.
type SeatsLockedError struct {
	Seats []model.Seat
}

func (e *SeatsLockedError) Error() string {
	return "seats already locked by other users: " + strings.Join(model.SeatStrings(e.Seats), ", ")
}

// InvalidStateError signals a transition attempted out of a terminal
// order status.
type InvalidStateError struct {
	OrderID string
	Status  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %s is in %s status, expected PENDING", e.OrderID, e.Status)
}

// Infrastructure failures. All are safe to retry: no partial durable
// state remains behind them.

type LeaseStoreError struct{ Err error }

func (e *LeaseStoreError) Error() string { return "lease store: " + e.Err.Error() }
func (e *LeaseStoreError) Unwrap() error { return e.Err }

type DurableStoreError struct{ Err error }

func (e *DurableStoreError) Error() string { return "durable store: " + e.Err.Error() }
func (e *DurableStoreError) Unwrap() error { return e.Err }

type GatewayError struct{ Err error }

func (e *GatewayError) Error() string { return "payment gateway: " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }
