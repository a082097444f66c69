package service

import (
	"context"
	"time"

	"event_ticketing/model"
	"event_ticketing/notify"
)

// LeaseStore is the fast shared key-value store holding seat leases.
// Implemented by leasestore.Client; tests use an in-memory fake.
type LeaseStore interface {
	PutLease(ctx context.Context, lease *model.Lease) error
	GetLease(ctx context.Context, userID string) (*model.Lease, error)
	DeleteLease(ctx context.Context, lease *model.Lease) ([]model.Seat, error)
	ReleaseSeats(ctx context.Context, lease *model.Lease, seats []model.Seat) ([]model.Seat, error)
	GetSeatLock(ctx context.Context, eventID uint, seat model.Seat) (*model.SeatLock, error)
	DeleteSeatLock(ctx context.Context, eventID uint, seat model.Seat) error
	ExtendLease(ctx context.Context, lease *model.Lease, newExpiry time.Time) error
	ClearOrder(ctx context.Context, orderID string) error
}

// Publisher delivers post-completion events to the bus.
type Publisher interface {
	PublishOrderCompleted(ctx context.Context, event notify.OrderCompletedEvent) error
}

// OrderCanceller is the slice of the order coordinator the lock manager
// needs: only the coordinator may mutate order status, so superseded or
// expired leases hand their pending orders to it.
type OrderCanceller interface {
	CancelOrderWithReason(ctx context.Context, orderID, reason string) (*model.Order, error)
}
