package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_ticketing/constants"
	"event_ticketing/model"
)

func newWebhookFixture(t *testing.T) (*WebhookGuard, *orderFixture) {
	t.Helper()
	f := newOrderFixture(t)
	return NewWebhookGuard(f.coordinator), f
}

func TestWebhookSuccessFinalizesOrder(t *testing.T) {
	guard, f := newWebhookFixture(t)
	ctx := context.Background()
	order, intentID := f.pendingOrder(t, "user-a", seat("General", 0, 0))
	f.gw.MarkSucceeded(intentID)

	completed, err := guard.HandlePaymentSucceeded(ctx, order.ID, intentID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderCompleted, completed.Status)
}

func TestWebhookSuccessForUnknownOrderIsRetryable(t *testing.T) {
	guard, _ := newWebhookFixture(t)

	_, err := guard.HandlePaymentSucceeded(context.Background(), "9c0ffee0-0000-0000-0000-000000000000", "pi_x")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestWebhookDuplicateSuccessIsHarmless(t *testing.T) {
	guard, f := newWebhookFixture(t)
	ctx := context.Background()
	order, intentID := f.pendingOrder(t, "user-a", seat("General", 1, 0))
	f.gw.MarkSucceeded(intentID)

	_, err := guard.HandlePaymentSucceeded(ctx, order.ID, intentID)
	require.NoError(t, err)
	again, err := guard.HandlePaymentSucceeded(ctx, order.ID, intentID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderCompleted, again.Status)

	tickets, err := f.coordinator.GetOrderTickets(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestWebhookFailureCancelsPendingOrder(t *testing.T) {
	guard, f := newWebhookFixture(t)
	ctx := context.Background()
	order, _ := f.pendingOrder(t, "user-a", seat("General", 2, 0))

	require.NoError(t, guard.HandlePaymentFailed(ctx, order.ID, "Card declined"))

	got, err := f.coordinator.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderCancelled, got.Status)
	assert.Equal(t, "Card declined", got.Notes)
}

func TestWebhookFailureOnTerminalOrderIsIgnored(t *testing.T) {
	guard, f := newWebhookFixture(t)
	ctx := context.Background()
	order, intentID := f.pendingOrder(t, "user-a", seat("General", 3, 0))
	f.gw.MarkSucceeded(intentID)
	_, err := f.coordinator.FinalizeOrder(ctx, order.ID, intentID)
	require.NoError(t, err)

	require.NoError(t, guard.HandlePaymentFailed(ctx, order.ID, "late failure"))

	got, err := f.coordinator.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderCompleted, got.Status)
}

func TestReaperSweepExpiresStaleOrders(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.pendingOrder(t, "user-a", seat("General", 4, 0))
	require.NoError(t, f.coordinator.db.Model(&model.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	reaper := NewReaper(f.coordinator, testLeaseTTL, 0)
	reaper.Sweep()

	got, err := f.coordinator.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderExpired, got.Status)
}
