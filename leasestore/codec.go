package leasestore

import (
	"fmt"
	"strconv"
	"time"

	"event_ticketing/model"
)

// Hash field names shared by both key shapes.
const (
	fieldOrderID   = "order_id"
	fieldUserID    = "user_id"
	fieldEventID   = "event_id"
	fieldSeats     = "seat_ids"
	fieldTierHint  = "tier_hint"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
	fieldSeatData  = "seat_data"
	fieldLockedAt  = "locked_at"
)

func encodeLease(lease *model.Lease) map[string]any {
	fields := map[string]any{
		fieldOrderID:   lease.OrderID,
		fieldUserID:    lease.UserID,
		fieldEventID:   strconv.FormatUint(uint64(lease.EventID), 10),
		fieldSeats:     model.SeatsToJSON(lease.Seats),
		fieldCreatedAt: lease.CreatedAt.UTC().Format(timeLayout),
		fieldExpiresAt: lease.ExpiresAt.UTC().Format(timeLayout),
	}
	if lease.TierHint != nil {
		fields[fieldTierHint] = strconv.FormatUint(uint64(*lease.TierHint), 10)
	}
	return fields
}

func decodeLease(fields map[string]string) (*model.Lease, error) {
	eventID, err := strconv.ParseUint(fields[fieldEventID], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("lease hash has invalid event id %q", fields[fieldEventID])
	}
	seats, err := model.SeatsFromJSON(fields[fieldSeats])
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime(fields[fieldCreatedAt])
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseTime(fields[fieldExpiresAt])
	if err != nil {
		return nil, err
	}
	lease := &model.Lease{
		OrderID:   fields[fieldOrderID],
		UserID:    fields[fieldUserID],
		EventID:   uint(eventID),
		Seats:     seats,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	if raw, ok := fields[fieldTierHint]; ok && raw != "" {
		hint, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("lease hash has invalid tier hint %q", raw)
		}
		h := uint(hint)
		lease.TierHint = &h
	}
	return lease, nil
}

func encodeSeatLock(lease *model.Lease, seat model.Seat) map[string]any {
	return map[string]any{
		fieldUserID:    lease.UserID,
		fieldOrderID:   lease.OrderID,
		fieldSeatData:  model.SeatsToJSON([]model.Seat{seat}),
		fieldLockedAt:  lease.CreatedAt.UTC().Format(timeLayout),
		fieldExpiresAt: lease.ExpiresAt.UTC().Format(timeLayout),
	}
}

func decodeSeatLock(fields map[string]string, seat model.Seat) (*model.SeatLock, error) {
	lockedAt, err := parseTime(fields[fieldLockedAt])
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseTime(fields[fieldExpiresAt])
	if err != nil {
		return nil, err
	}
	return &model.SeatLock{
		UserID:    fields[fieldUserID],
		OrderID:   fields[fieldOrderID],
		Seat:      seat,
		LockedAt:  lockedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// parseTime accepts RFC3339Nano and, for entries written by the old
// deployment, RFC3339 without the fractional part.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q in lease store", raw)
	}
	return t, nil
}
