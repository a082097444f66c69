package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"event_ticketing/model"
)

// SeatLockManager owns the lease lifecycle: it validates requested
// seats against durable sold tickets and other users' active leases,
// then writes a time-bounded lease to the lease store. The store's TTL
// is what guarantees release even if this process dies.
//
// The check-then-write sequence is optimistic: two users validating the
// same free seat concurrently can both pass validation before either
// writes. First writer wins at the store, and the per-tier
// availability re-check at finalization is the durable backstop
// against double-selling.
type SeatLockManager struct {
	db     *gorm.DB
	store  LeaseStore
	orders OrderCanceller
	ttl    time.Duration
}

func NewSeatLockManager(db *gorm.DB, store LeaseStore, orders OrderCanceller, ttl time.Duration) *SeatLockManager {
	return &SeatLockManager{db: db, store: store, orders: orders, ttl: ttl}
}

// Lock reserves the seats for the user. Any pre-existing lease of the
// same user is released first (one lease per user) and its pending
// order cancelled.
func (m *SeatLockManager) Lock(ctx context.Context, userID string, in model.LockSeatsInput) (*model.Lease, error) {
	if len(in.Seats) == 0 {
		return nil, &ValidationError{Msg: "at least one seat is required"}
	}
	for i, seat := range in.Seats {
		if model.ContainsSeat(in.Seats[i+1:], seat) {
			return nil, &ValidationError{Msg: "duplicate seat " + seat.String() + " in request"}
		}
	}

	// Every seat must resolve to a tier before anything is written.
	if _, _, err := resolveTierAssignments(m.db.WithContext(ctx), in.EventID, in.Seats, in.TierID); err != nil {
		return nil, err
	}

	sold, err := m.soldSeats(ctx, in.EventID, in.Seats)
	if err != nil {
		return nil, err
	}
	if len(sold) > 0 {
		return nil, &SeatsSoldError{Seats: sold}
	}

	now := time.Now()
	var conflicted []model.Seat
	for _, seat := range in.Seats {
		lock, err := m.store.GetSeatLock(ctx, in.EventID, seat)
		if err != nil {
			return nil, &LeaseStoreError{Err: err}
		}
		if lock == nil || lock.UserID == userID {
			continue
		}
		if lock.ExpiresAt.After(now) {
			conflicted = append(conflicted, seat)
			continue
		}
		// Expired but not yet evicted by TTL; treat as absent.
		if err := m.store.DeleteSeatLock(ctx, in.EventID, seat); err != nil {
			log.Printf("locks: purge of expired lock %s failed: %v", seat, err)
		}
	}
	if len(conflicted) > 0 {
		return nil, &SeatsLockedError{Seats: conflicted}
	}

	if err := m.releaseExisting(ctx, userID, "superseded by a new lock request"); err != nil {
		return nil, err
	}

	lease := &model.Lease{
		OrderID:   uuid.NewString(),
		UserID:    userID,
		EventID:   in.EventID,
		Seats:     in.Seats,
		TierHint:  in.TierID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.PutLease(ctx, lease); err != nil {
		// PutLease already cleaned up any partially written keys.
		return nil, &LeaseStoreError{Err: err}
	}
	return lease, nil
}

// Unlock releases the user's lease, or only the given subset of its
// seats. Releasing everything cancels the associated pending order.
// Only entries owned by the calling user are ever deleted.
func (m *SeatLockManager) Unlock(ctx context.Context, userID string, in model.UnlockSeatsInput) ([]model.Seat, error) {
	lease, err := m.store.GetLease(ctx, userID)
	if err != nil {
		return nil, &LeaseStoreError{Err: err}
	}
	if lease == nil || (in.LeaseID != "" && lease.OrderID != in.LeaseID) {
		return nil, ErrLeaseNotFound
	}

	if len(in.Seats) == 0 {
		released, err := m.store.DeleteLease(ctx, lease)
		if err != nil {
			return released, &LeaseStoreError{Err: err}
		}
		m.cancelPending(ctx, lease.OrderID, "User unlocked all seats")
		return released, nil
	}

	subset := model.IntersectSeats(in.Seats, lease.Seats)
	released, err := m.store.ReleaseSeats(ctx, lease, subset)
	if err != nil {
		return released, &LeaseStoreError{Err: err}
	}
	if len(model.RemoveSeats(lease.Seats, released)) == 0 {
		m.cancelPending(ctx, lease.OrderID, "User unlocked all seats")
	}
	return released, nil
}

// GetActive returns the user's current lease, or nil when none exists.
// A lease past its expiry is treated as absent and opportunistically
// cleaned up, its pending order cancelled.
func (m *SeatLockManager) GetActive(ctx context.Context, userID string) (*model.Lease, error) {
	lease, err := m.store.GetLease(ctx, userID)
	if err != nil {
		return nil, &LeaseStoreError{Err: err}
	}
	if lease == nil {
		return nil, nil
	}
	if lease.Expired(time.Now()) {
		if _, err := m.store.DeleteLease(ctx, lease); err != nil {
			log.Printf("locks: cleanup of expired lease for user %s failed: %v", userID, err)
		}
		m.cancelPending(ctx, lease.OrderID, "Cleanup or expiration")
		return nil, nil
	}
	return lease, nil
}

// CheckAvailability classifies each seat as available, locked or sold.
// Sold takes priority over locked.
func (m *SeatLockManager) CheckAvailability(ctx context.Context, eventID uint, seats []model.Seat) (*model.SeatAvailability, error) {
	sold, err := m.soldSeats(ctx, eventID, seats)
	if err != nil {
		return nil, err
	}

	out := &model.SeatAvailability{
		EventID:   eventID,
		Available: []model.Seat{},
		Locked:    []model.LockedSeatInfo{},
		Sold:      sold,
	}
	now := time.Now()
	for _, seat := range seats {
		if model.ContainsSeat(sold, seat) {
			continue
		}
		lock, err := m.store.GetSeatLock(ctx, eventID, seat)
		if err != nil {
			return nil, &LeaseStoreError{Err: err}
		}
		switch {
		case lock == nil:
			out.Available = append(out.Available, seat)
		case lock.ExpiresAt.After(now):
			out.Locked = append(out.Locked, model.LockedSeatInfo{Seat: seat, ExpiresAt: lock.ExpiresAt})
		default:
			if err := m.store.DeleteSeatLock(ctx, eventID, seat); err != nil {
				log.Printf("locks: purge of expired lock %s failed: %v", seat, err)
			}
			out.Available = append(out.Available, seat)
		}
	}
	return out, nil
}

// ExtendLease pushes the expiry of the user's active lease further out,
// rewriting the TTL on the lease entry and on every per-seat entry.
func (m *SeatLockManager) ExtendLease(ctx context.Context, userID, leaseID string, extra time.Duration) (time.Time, error) {
	lease, err := m.store.GetLease(ctx, userID)
	if err != nil {
		return time.Time{}, &LeaseStoreError{Err: err}
	}
	if lease == nil || lease.OrderID != leaseID || lease.Expired(time.Now()) {
		return time.Time{}, ErrLeaseNotFound
	}
	newExpiry := lease.ExpiresAt.Add(extra)
	if err := m.store.ExtendLease(ctx, lease, newExpiry); err != nil {
		return time.Time{}, &LeaseStoreError{Err: err}
	}
	return newExpiry, nil
}

// soldSeats returns the subset of seats that already have a durable
// ticket for the event.
func (m *SeatLockManager) soldSeats(ctx context.Context, eventID uint, seats []model.Seat) ([]model.Seat, error) {
	var tickets []model.Ticket
	err := m.db.WithContext(ctx).
		Joins("JOIN ticket_tiers ON ticket_tiers.id = tickets.tier_id").
		Where("ticket_tiers.event_id = ?", eventID).
		Find(&tickets).Error
	if err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	sold := []model.Seat{}
	for _, seat := range seats {
		for _, ticket := range tickets {
			if ticket.Seat() == seat {
				sold = append(sold, seat)
				break
			}
		}
	}
	return sold, nil
}

func (m *SeatLockManager) releaseExisting(ctx context.Context, userID, reason string) error {
	lease, err := m.store.GetLease(ctx, userID)
	if err != nil {
		return &LeaseStoreError{Err: err}
	}
	if lease == nil {
		return nil
	}
	if _, err := m.store.DeleteLease(ctx, lease); err != nil {
		return &LeaseStoreError{Err: err}
	}
	m.cancelPending(ctx, lease.OrderID, reason)
	return nil
}

// cancelPending hands the lease's order to the coordinator. An order
// already past PENDING (or never persisted) is not an error here.
func (m *SeatLockManager) cancelPending(ctx context.Context, orderID, reason string) {
	if orderID == "" || m.orders == nil {
		return
	}
	if _, err := m.orders.CancelOrderWithReason(ctx, orderID, reason); err != nil {
		var invalid *InvalidStateError
		if errors.Is(err, ErrOrderNotFound) || errors.As(err, &invalid) {
			return
		}
		log.Printf("locks: cancelling order %s failed: %v", orderID, err)
	}
}
