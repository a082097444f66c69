package leasestore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"event_ticketing/model"
)

// Key layout: one hash per user ("lease:<user>") plus one hash per
// locked seat ("seatlock:<event>:<seatString>"). Every key carries the
// same TTL so a crashed process can never strand a lock. The older
// deployment wrote the user hash under "cart:<user>"; reads fall back
// to it so in-flight leases survive a rolling upgrade.
const (
	leaseKeyPrefix    = "lease:"
	legacyCartPrefix  = "cart:"
	seatLockKeyPrefix = "seatlock:"
	timeLayout        = time.RFC3339Nano
)

func leaseKey(userID string) string      { return leaseKeyPrefix + userID }
func legacyCartKey(userID string) string { return legacyCartPrefix + userID }

func seatLockKey(eventID uint, seat model.Seat) string {
	return fmt.Sprintf("%s%d:%s", seatLockKeyPrefix, eventID, seat.String())
}

// Client wraps the shared redis connection with the lease-store
// operations the lock manager and order coordinator need. It is
// constructed once at startup and injected.
type Client struct {
	rdb *redis.Client
}

func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping verifies connectivity at startup.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// PutLease writes the user hash and every per-seat hash in one
// pipeline, all carrying the lease TTL. If the pipeline fails, every
// key that may have been touched is best-effort deleted so no partial
// lease remains.
func (c *Client) PutLease(ctx context.Context, lease *model.Lease) error {
	ttl := time.Until(lease.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("lease for user %s already expired", lease.UserID)
	}

	pipe := c.rdb.TxPipeline()
	key := leaseKey(lease.UserID)
	pipe.HSet(ctx, key, encodeLease(lease))
	pipe.Expire(ctx, key, ttl)
	for _, seat := range lease.Seats {
		sk := seatLockKey(lease.EventID, seat)
		pipe.HSet(ctx, sk, encodeSeatLock(lease, seat))
		pipe.Expire(ctx, sk, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		cleanup := c.rdb.Pipeline()
		cleanup.Del(ctx, key)
		for _, seat := range lease.Seats {
			cleanup.Del(ctx, seatLockKey(lease.EventID, seat))
		}
		cleanup.Exec(ctx)
		return err
	}
	return nil
}

// GetLease loads the user's lease, falling back to the legacy cart key.
// Absent leases return (nil, nil).
func (c *Client) GetLease(ctx context.Context, userID string) (*model.Lease, error) {
	fields, err := c.rdb.HGetAll(ctx, leaseKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields, err = c.rdb.HGetAll(ctx, legacyCartKey(userID)).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, nil
		}
	}
	return decodeLease(fields)
}

// DeleteLease removes the user hash (current and legacy key) and every
// seat lock the lease covers, but only seat locks actually owned by the
// user. Returns the seats that were released.
func (c *Client) DeleteLease(ctx context.Context, lease *model.Lease) ([]model.Seat, error) {
	released := make([]model.Seat, 0, len(lease.Seats))
	for _, seat := range lease.Seats {
		ok, err := c.deleteOwnedSeatLock(ctx, lease.EventID, seat, lease.UserID)
		if err != nil {
			return released, err
		}
		if ok {
			released = append(released, seat)
		}
	}
	if err := c.rdb.Del(ctx, leaseKey(lease.UserID), legacyCartKey(lease.UserID)).Err(); err != nil {
		return released, err
	}
	return released, nil
}

// ReleaseSeats deletes the given subset of seat locks (owner checked)
// and rewrites the user hash with the remaining seats, or deletes it
// when nothing remains.
func (c *Client) ReleaseSeats(ctx context.Context, lease *model.Lease, seats []model.Seat) ([]model.Seat, error) {
	released := make([]model.Seat, 0, len(seats))
	for _, seat := range seats {
		ok, err := c.deleteOwnedSeatLock(ctx, lease.EventID, seat, lease.UserID)
		if err != nil {
			return released, err
		}
		if ok {
			released = append(released, seat)
		}
	}

	remaining := model.RemoveSeats(lease.Seats, released)
	if len(remaining) == 0 {
		err := c.rdb.Del(ctx, leaseKey(lease.UserID), legacyCartKey(lease.UserID)).Err()
		return released, err
	}

	updated := *lease
	updated.Seats = remaining
	ttl := time.Until(lease.ExpiresAt)
	if ttl <= 0 {
		return released, nil
	}
	pipe := c.rdb.TxPipeline()
	key := leaseKey(lease.UserID)
	pipe.HSet(ctx, key, encodeLease(&updated))
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return released, err
}

// GetSeatLock returns the lock entry for one seat, or (nil, nil) when
// the seat is free.
func (c *Client) GetSeatLock(ctx context.Context, eventID uint, seat model.Seat) (*model.SeatLock, error) {
	fields, err := c.rdb.HGetAll(ctx, seatLockKey(eventID, seat)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeSeatLock(fields, seat)
}

// DeleteSeatLock removes a seat lock unconditionally. Used for
// opportunistic purging of entries whose expiry has passed but whose
// TTL has not yet fired.
func (c *Client) DeleteSeatLock(ctx context.Context, eventID uint, seat model.Seat) error {
	return c.rdb.Del(ctx, seatLockKey(eventID, seat)).Err()
}

// ExtendLease rewrites the user hash and every per-seat hash with the
// new expiry and TTL. The seat hashes are written in full: a seat key
// whose TTL fired between the read and the extend would otherwise come
// back as a hash holding nothing but expires_at, an entry no owner
// matches.
func (c *Client) ExtendLease(ctx context.Context, lease *model.Lease, newExpiry time.Time) error {
	ttl := time.Until(newExpiry)
	if ttl <= 0 {
		return fmt.Errorf("new expiry is in the past")
	}
	updated := *lease
	updated.ExpiresAt = newExpiry

	pipe := c.rdb.TxPipeline()
	key := leaseKey(lease.UserID)
	pipe.HSet(ctx, key, encodeLease(&updated))
	pipe.Expire(ctx, key, ttl)
	for _, seat := range lease.Seats {
		sk := seatLockKey(lease.EventID, seat)
		pipe.HSet(ctx, sk, encodeSeatLock(&updated, seat))
		pipe.Expire(ctx, sk, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ClearOrder scans for the lease belonging to an order id and deletes
// it together with its seat locks. Called after a successful finalize,
// where only the order id is at hand.
func (c *Client) ClearOrder(ctx context.Context, orderID string) error {
	for _, prefix := range []string{leaseKeyPrefix, legacyCartPrefix} {
		iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			fields, err := c.rdb.HGetAll(ctx, iter.Val()).Result()
			if err != nil {
				return err
			}
			if fields[fieldOrderID] != orderID {
				continue
			}
			lease, err := decodeLease(fields)
			if err != nil {
				return err
			}
			pipe := c.rdb.Pipeline()
			pipe.Del(ctx, iter.Val())
			for _, seat := range lease.Seats {
				pipe.Del(ctx, seatLockKey(lease.EventID, seat))
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
			return nil
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) deleteOwnedSeatLock(ctx context.Context, eventID uint, seat model.Seat, userID string) (bool, error) {
	key := seatLockKey(eventID, seat)
	owner, err := c.rdb.HGet(ctx, key, fieldUserID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if owner != userID {
		return false, nil
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return false, err
	}
	return true, nil
}
