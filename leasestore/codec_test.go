package leasestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_ticketing/model"
)

func stringify(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v.(string)
	}
	return out
}

func TestLeaseCodecRoundTrip(t *testing.T) {
	hint := uint(3)
	lease := &model.Lease{
		OrderID:   "ord-1",
		UserID:    "user-1",
		EventID:   7,
		Seats:     []model.Seat{{Section: "General", Row: 1, Column: 2}, {Section: "VIP", Row: 0, Column: 0}},
		TierHint:  &hint,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC),
		ExpiresAt: time.Date(2026, 3, 1, 10, 10, 0, 0, time.UTC),
	}

	decoded, err := decodeLease(stringify(encodeLease(lease)))
	require.NoError(t, err)
	assert.Equal(t, lease.OrderID, decoded.OrderID)
	assert.Equal(t, lease.UserID, decoded.UserID)
	assert.Equal(t, lease.EventID, decoded.EventID)
	assert.Equal(t, lease.Seats, decoded.Seats)
	require.NotNil(t, decoded.TierHint)
	assert.Equal(t, hint, *decoded.TierHint)
	assert.True(t, lease.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, lease.ExpiresAt.Equal(decoded.ExpiresAt))
}

func TestLeaseCodecWithoutTierHint(t *testing.T) {
	lease := &model.Lease{
		OrderID:   "ord-2",
		UserID:    "user-2",
		EventID:   1,
		Seats:     []model.Seat{{Section: "General", Row: 0, Column: 0}},
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}

	decoded, err := decodeLease(stringify(encodeLease(lease)))
	require.NoError(t, err)
	assert.Nil(t, decoded.TierHint)
}

func TestDecodeLeaseAcceptsLegacySeatStrings(t *testing.T) {
	fields := map[string]string{
		fieldOrderID:   "ord-3",
		fieldUserID:    "user-3",
		fieldEventID:   "4",
		fieldSeats:     `["General:R2:C5","VIP:R0:C1"]`,
		fieldCreatedAt: "2026-01-05T08:00:00Z",
		fieldExpiresAt: "2026-01-05T08:10:00Z",
	}

	lease, err := decodeLease(fields)
	require.NoError(t, err)
	assert.Equal(t, []model.Seat{
		{Section: "General", Row: 2, Column: 5},
		{Section: "VIP", Row: 0, Column: 1},
	}, lease.Seats)
}

func TestDecodeLeaseRejectsBadEventID(t *testing.T) {
	fields := map[string]string{
		fieldOrderID:   "ord-4",
		fieldUserID:    "user-4",
		fieldEventID:   "not-a-number",
		fieldSeats:     `[]`,
		fieldCreatedAt: "2026-01-05T08:00:00Z",
		fieldExpiresAt: "2026-01-05T08:10:00Z",
	}

	_, err := decodeLease(fields)
	assert.Error(t, err)
}

func TestSeatLockCodecRoundTrip(t *testing.T) {
	lease := &model.Lease{
		OrderID:   "ord-5",
		UserID:    "user-5",
		EventID:   2,
		CreatedAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2026, 6, 1, 12, 10, 0, 0, time.UTC),
	}
	s := model.Seat{Section: "General", Row: 9, Column: 9}

	lock, err := decodeSeatLock(stringify(encodeSeatLock(lease, s)), s)
	require.NoError(t, err)
	assert.Equal(t, "user-5", lock.UserID)
	assert.Equal(t, "ord-5", lock.OrderID)
	assert.Equal(t, s, lock.Seat)
	assert.True(t, lease.CreatedAt.Equal(lock.LockedAt))
	assert.True(t, lease.ExpiresAt.Equal(lock.ExpiresAt))
}

func TestParseTimeAcceptsBothLayouts(t *testing.T) {
	nano, err := parseTime("2026-01-05T08:00:00.5Z")
	require.NoError(t, err)
	assert.Equal(t, 500000000, nano.Nanosecond())

	plain, err := parseTime("2026-01-05T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Nanosecond())

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}
