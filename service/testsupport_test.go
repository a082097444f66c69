package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/notify"
)

const testLeaseTTL = 10 * time.Minute

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Venue{},
		&model.Event{},
		&model.TicketTier{},
		&model.Order{},
		&model.SeatAssignment{},
		&model.Ticket{},
		&model.Transaction{},
	))
	return db
}

// seedCatalog loads one venue, one event and two tiers: "General" at 40
// and "VIP" at 100. Returns the event id.
func seedCatalog(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	venue := model.Venue{Name: "Test Hall", Slug: "test-hall", City: "Testville", Capacity: 500}
	require.NoError(t, db.Create(&venue).Error)
	event := model.Event{Name: "Test Night", Slug: "test-night", EventDate: time.Now().Add(30 * 24 * time.Hour), VenueID: venue.ID}
	require.NoError(t, db.Create(&event).Error)
	tiers := []model.TicketTier{
		{EventID: event.ID, VenueID: venue.ID, SeatType: constants.SeatRegular, Price: 40, TotalSeats: 100, AvailableSeats: 100, SeatPrefix: "General"},
		{EventID: event.ID, VenueID: venue.ID, SeatType: constants.SeatVIP, Price: 100, TotalSeats: 20, AvailableSeats: 20, SeatPrefix: "VIP"},
	}
	for i := range tiers {
		require.NoError(t, db.Create(&tiers[i]).Error)
	}
	return event.ID
}

// fakeLeaseStore is an in-memory LeaseStore with the same ownership and
// TTL semantics as the redis-backed client.
type fakeLeaseStore struct {
	mu     sync.Mutex
	leases map[string]*model.Lease   // by user id
	locks  map[string]model.SeatLock // by event:seat key

	failNext error
}

func newFakeLeaseStore() *fakeLeaseStore {
	return &fakeLeaseStore{
		leases: make(map[string]*model.Lease),
		locks:  make(map[string]model.SeatLock),
	}
}

func seatKey(eventID uint, seat model.Seat) string {
	return fmt.Sprintf("%d:%s", eventID, seat)
}

func (f *fakeLeaseStore) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeLeaseStore) PutLease(ctx context.Context, lease *model.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	cp := *lease
	f.leases[lease.UserID] = &cp
	for _, seat := range lease.Seats {
		f.locks[seatKey(lease.EventID, seat)] = model.SeatLock{
			UserID:    lease.UserID,
			OrderID:   lease.OrderID,
			Seat:      seat,
			LockedAt:  lease.CreatedAt,
			ExpiresAt: lease.ExpiresAt,
		}
	}
	return nil
}

func (f *fakeLeaseStore) GetLease(ctx context.Context, userID string) (*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	lease, ok := f.leases[userID]
	if !ok {
		return nil, nil
	}
	cp := *lease
	return &cp, nil
}

func (f *fakeLeaseStore) DeleteLease(ctx context.Context, lease *model.Lease) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	var released []model.Seat
	for _, seat := range lease.Seats {
		key := seatKey(lease.EventID, seat)
		if lock, ok := f.locks[key]; ok && lock.UserID == lease.UserID {
			delete(f.locks, key)
			released = append(released, seat)
		}
	}
	delete(f.leases, lease.UserID)
	return released, nil
}

func (f *fakeLeaseStore) ReleaseSeats(ctx context.Context, lease *model.Lease, seats []model.Seat) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	var released []model.Seat
	for _, seat := range seats {
		key := seatKey(lease.EventID, seat)
		if lock, ok := f.locks[key]; ok && lock.UserID == lease.UserID {
			delete(f.locks, key)
			released = append(released, seat)
		}
	}
	remainder := model.RemoveSeats(lease.Seats, released)
	if len(remainder) == 0 {
		delete(f.leases, lease.UserID)
	} else if stored, ok := f.leases[lease.UserID]; ok {
		stored.Seats = remainder
	}
	return released, nil
}

func (f *fakeLeaseStore) GetSeatLock(ctx context.Context, eventID uint, seat model.Seat) (*model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	lock, ok := f.locks[seatKey(eventID, seat)]
	if !ok {
		return nil, nil
	}
	return &lock, nil
}

func (f *fakeLeaseStore) DeleteSeatLock(ctx context.Context, eventID uint, seat model.Seat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	delete(f.locks, seatKey(eventID, seat))
	return nil
}

func (f *fakeLeaseStore) ExtendLease(ctx context.Context, lease *model.Lease, newExpiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	stored, ok := f.leases[lease.UserID]
	if !ok {
		return fmt.Errorf("lease for user %s not found", lease.UserID)
	}
	stored.ExpiresAt = newExpiry
	for _, seat := range stored.Seats {
		key := seatKey(stored.EventID, seat)
		if lock, ok := f.locks[key]; ok && lock.UserID == lease.UserID {
			lock.ExpiresAt = newExpiry
			f.locks[key] = lock
		}
	}
	return nil
}

func (f *fakeLeaseStore) ClearOrder(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	for userID, lease := range f.leases {
		if lease.OrderID != orderID {
			continue
		}
		for _, seat := range lease.Seats {
			key := seatKey(lease.EventID, seat)
			if lock, ok := f.locks[key]; ok && lock.UserID == userID {
				delete(f.locks, key)
			}
		}
		delete(f.leases, userID)
	}
	return nil
}

// expireLease backdates the stored lease and its locks for TTL tests.
func (f *fakeLeaseStore) expireLease(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lease, ok := f.leases[userID]
	if !ok {
		return
	}
	past := time.Now().Add(-time.Minute)
	lease.ExpiresAt = past
	for _, seat := range lease.Seats {
		key := seatKey(lease.EventID, seat)
		if lock, ok := f.locks[key]; ok && lock.UserID == userID {
			lock.ExpiresAt = past
			f.locks[key] = lock
		}
	}
}

// fakeBus records published completion events.
type fakeBus struct {
	mu     sync.Mutex
	events []notify.OrderCompletedEvent
	err    error
}

func (b *fakeBus) PublishOrderCompleted(ctx context.Context, event notify.OrderCompletedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, event)
	return nil
}

var (
	_ LeaseStore = (*fakeLeaseStore)(nil)
	_ Publisher  = (*fakeBus)(nil)
)

func seat(section string, row, col int) model.Seat {
	return model.Seat{Section: section, Row: row, Column: col}
}
