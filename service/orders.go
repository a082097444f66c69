package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"

	"event_ticketing/constants"
	"event_ticketing/gateway"
	"event_ticketing/model"
	"event_ticketing/notify"
	"event_ticketing/utils"
)

// errNotPending signals that the conditional status update inside a
// transaction matched no row: another writer moved the order out of
// PENDING after this call's pre-check. Callers re-read and decide.
var errNotPending = errors.New("order is no longer PENDING")

// OrderCoordinator is the only component that mutates order status. It
// turns leases into PENDING orders, finalizes them into tickets once
// the gateway confirms payment, and cancels or expires the rest.
type OrderCoordinator struct {
	db       *gorm.DB
	store    LeaseStore
	gateway  gateway.PaymentGateway
	bus      Publisher
	qrSecret string
}

func NewOrderCoordinator(db *gorm.DB, store LeaseStore, gw gateway.PaymentGateway, bus Publisher, qrSecret string) *OrderCoordinator {
	return &OrderCoordinator{db: db, store: store, gateway: gw, bus: bus, qrSecret: qrSecret}
}

// CreatePendingOrder converts a valid lease into a durable PENDING
// order with its per-tier seat assignments and initial transaction,
// then requests a payment intent for the total. A durable or gateway
// failure compensating-deletes the lease so the seats are not left
// locked behind an orderless reservation.
func (c *OrderCoordinator) CreatePendingOrder(ctx context.Context, lease *model.Lease) (*model.Order, *gateway.Intent, error) {
	if lease == nil || lease.Expired(time.Now()) {
		return nil, nil, ErrLeaseNotFound
	}

	var existing model.Order
	err := c.db.WithContext(ctx).Where("id = ?", lease.OrderID).First(&existing).Error
	if err == nil {
		return nil, nil, &ValidationError{Msg: "an order already exists for this lease"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, &DurableStoreError{Err: err}
	}

	assignments, total, err := resolveTierAssignments(c.db.WithContext(ctx), lease.EventID, lease.Seats, lease.TierHint)
	if err != nil {
		return nil, nil, err
	}

	amountMinor := int64(math.Round(total * 100))
	if amountMinor < gateway.MinimumChargeMinorUnits {
		return nil, nil, &ValidationError{
			Msg: fmt.Sprintf("order total %.2f is below the gateway minimum charge", total),
		}
	}

	order := model.Order{
		ID:          lease.OrderID,
		PublicCode:  utils.NewPublicCode(),
		UserID:      lease.UserID,
		TotalAmount: total,
		Status:      constants.OrderPending,
	}
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, a := range assignments {
			assignment := model.SeatAssignment{
				OrderID: order.ID,
				EventID: a.Tier.EventID,
				VenueID: a.Tier.VenueID,
				TierID:  a.Tier.ID,
				Seats:   model.SeatsToJSON(a.Seats),
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return upsertOrderTransaction(tx, order.ID, total, constants.MethodReservation, constants.TxPending, "")
	})
	if err != nil {
		c.compensateLease(ctx, lease)
		return nil, nil, &DurableStoreError{Err: err}
	}

	intent, err := c.gateway.CreateIntent(ctx, amountMinor, order.ID, lease.UserID)
	if err != nil {
		if _, cErr := c.CancelOrderWithReason(ctx, order.ID, "Payment intent creation failed"); cErr != nil {
			log.Printf("orders: cancelling order %s after gateway failure failed: %v", order.ID, cErr)
		}
		c.compensateLease(ctx, lease)
		return nil, nil, &GatewayError{Err: err}
	}

	err = c.db.WithContext(ctx).Model(&order).Update("payment_intent_id", intent.IntentID).Error
	if err != nil {
		return nil, nil, &DurableStoreError{Err: err}
	}
	order.PaymentIntentID = &intent.IntentID
	return &order, intent, nil
}

// FinalizeOrder is the all-or-nothing completion of a paid order. The
// overselling re-check, ticket creation, status flip and transaction
// update commit together; any failure leaves the order PENDING and the
// call safe to retry. Lease cleanup and the completion event happen
// only after commit and never undo it.
func (c *OrderCoordinator) FinalizeOrder(ctx context.Context, orderID, paymentRef string) (*model.Order, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Duplicate delivery of the same confirmation returns the
	// completed order unchanged.
	if order.Status == constants.OrderCompleted &&
		order.PaymentIntentID != nil && *order.PaymentIntentID == paymentRef {
		return order, nil
	}
	if order.Status != constants.OrderPending {
		return nil, &InvalidStateError{OrderID: order.ID, Status: order.Status}
	}
	if order.PaymentIntentID != nil && *order.PaymentIntentID != paymentRef {
		return nil, ErrPaymentMismatch
	}

	succeeded, err := c.gateway.IsSucceeded(ctx, paymentRef)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}
	if !succeeded {
		return nil, ErrPaymentNotConfirmed
	}

	var qrCodes []string
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional flip is the serialization point: a rival
		// finalization (webhook redelivery racing a user-initiated
		// completion) that committed first leaves no PENDING row to
		// match, so this transaction rolls back without issuing a
		// second ticket set.
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, constants.OrderPending).
			Updates(map[string]any{
				"status":                  constants.OrderCompleted,
				"completed_at":            time.Now(),
				"payment_intent_id":       paymentRef,
				"payment_confirmation_id": paymentRef,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotPending
		}

		var assignments []model.SeatAssignment
		if err := tx.Where("order_id = ?", order.ID).Find(&assignments).Error; err != nil {
			return err
		}
		if len(assignments) == 0 {
			return ErrAssignmentsMissing
		}

		for _, a := range assignments {
			seats, err := a.SeatList()
			if err != nil {
				return err
			}

			// Final overselling guard: conditional decrement, so two
			// finalizations racing for the last seats cannot both win.
			res := tx.Model(&model.TicketTier{}).
				Where("id = ? AND available_seats >= ?", a.TierID, len(seats)).
				UpdateColumn("available_seats", gorm.Expr("available_seats - ?", len(seats)))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOversold
			}

			var tier model.TicketTier
			if err := tx.First(&tier, a.TierID).Error; err != nil {
				return err
			}

			for _, seat := range seats {
				ticket := model.Ticket{
					OrderID:   order.ID,
					TierID:    a.TierID,
					UserID:    order.UserID,
					PricePaid: tier.Price,
					Status:    constants.TicketSold,
				}
				ticket.SetSeat(seat)
				if err := tx.Create(&ticket).Error; err != nil {
					return err
				}
				payload, err := c.signedTicketPayload(&ticket, a.EventID, a.VenueID, order.PublicCode)
				if err != nil {
					return err
				}
				if err := tx.Model(&ticket).UpdateColumn("qr_data", payload).Error; err != nil {
					return err
				}
				qrCodes = append(qrCodes, payload)
			}
		}

		return upsertOrderTransaction(tx, order.ID, order.TotalAmount, constants.MethodStripe, constants.TxSuccess, paymentRef)
	})
	if err != nil {
		switch {
		case errors.Is(err, errNotPending):
			current, gerr := c.GetOrder(ctx, order.ID)
			if gerr != nil {
				return nil, gerr
			}
			if current.Status == constants.OrderCompleted &&
				current.PaymentIntentID != nil && *current.PaymentIntentID == paymentRef {
				return current, nil
			}
			return nil, &InvalidStateError{OrderID: current.ID, Status: current.Status}
		case errors.Is(err, ErrOversold), errors.Is(err, ErrAssignmentsMissing):
			return nil, err
		default:
			return nil, &DurableStoreError{Err: err}
		}
	}

	// The purchase is final. Anything that fails past this point is an
	// operational problem, never the customer's.
	if err := c.store.ClearOrder(ctx, order.ID); err != nil {
		log.Printf("ALERT orders: lease cleanup for completed order %s failed: %v", order.ID, err)
	}
	if c.bus != nil {
		event := notify.OrderCompletedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			QRCodes:     qrCodes,
		}
		if err := c.bus.PublishOrderCompleted(ctx, event); err != nil {
			log.Printf("ALERT orders: completion event for order %s failed: %v", order.ID, err)
		}
	}

	return c.GetOrder(ctx, order.ID)
}

// CancelOrder cancels a PENDING order on the user's behalf.
func (c *OrderCoordinator) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return c.CancelOrderWithReason(ctx, orderID, "Cancelled by user")
}

// CancelOrderWithReason flips a PENDING order to CANCELLED and records
// the reason on both the order and its transaction. Seat assignments
// stay untouched as an audit trail.
func (c *OrderCoordinator) CancelOrderWithReason(ctx context.Context, orderID, reason string) (*model.Order, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderPending {
		return nil, &InvalidStateError{OrderID: order.ID, Status: order.Status}
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional on PENDING so a finalize committing between the
		// read above and this write cannot be undone.
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, constants.OrderPending).
			Updates(map[string]any{
				"status": constants.OrderCancelled,
				"notes":  reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotPending
		}
		return upsertOrderTransaction(tx, order.ID, 0, constants.MethodSystem, constants.TxFailed, reason)
	})
	if errors.Is(err, errNotPending) {
		current, gerr := c.GetOrder(ctx, order.ID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, &InvalidStateError{OrderID: current.ID, Status: current.Status}
	}
	if err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	return c.GetOrder(ctx, order.ID)
}

// ExpireStaleOrders flips every PENDING order older than the cutoff to
// EXPIRED. Each order is handled independently so one failure cannot
// stall the batch; re-running over already-EXPIRED orders is a no-op
// because the status filter excludes them.
func (c *OrderCoordinator) ExpireStaleOrders(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	var stale []model.Order
	err := c.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", constants.OrderPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, &DurableStoreError{Err: err}
	}

	expired := 0
	for i := range stale {
		flipped, err := c.expireOrder(ctx, &stale[i])
		if err != nil {
			log.Printf("orders: expiring order %s failed: %v", stale[i].ID, err)
			continue
		}
		if flipped {
			expired++
		}
	}
	return expired, nil
}

// expireOrder flips one order from the sweep's snapshot. The update is
// conditional on the row still being PENDING: an order that was paid or
// cancelled after the snapshot was taken is left exactly as the other
// writer committed it.
func (c *OrderCoordinator) expireOrder(ctx context.Context, order *model.Order) (bool, error) {
	flipped := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, constants.OrderPending).
			Updates(map[string]any{
				"status": constants.OrderExpired,
				"notes":  "Reservation window lapsed",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		flipped = true
		return upsertOrderTransaction(tx, order.ID, 0, constants.MethodSystem, constants.TxFailed, "automatically expired")
	})
	return flipped, err
}

// GetOrder loads one order by id.
func (c *OrderCoordinator) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := c.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	return &order, nil
}

// GetUserOrders lists a user's orders, newest first.
func (c *OrderCoordinator) GetUserOrders(ctx context.Context, userID string, pagination *model.Pagination) ([]model.Order, error) {
	var orders []model.Order
	query := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc")
	if pagination != nil {
		query = utils.ApplyPagination(query, pagination.Limit, pagination.Page)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	return orders, nil
}

func (c *OrderCoordinator) GetOrderTickets(ctx context.Context, orderID string) ([]model.Ticket, error) {
	if _, err := c.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	var tickets []model.Ticket
	err := c.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&tickets).Error
	if err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	return tickets, nil
}

func (c *OrderCoordinator) GetOrderTransactions(ctx context.Context, orderID string) ([]model.Transaction, error) {
	if _, err := c.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	var transactions []model.Transaction
	err := c.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&transactions).Error
	if err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	return transactions, nil
}

func (c *OrderCoordinator) GetOrderSeatAssignments(ctx context.Context, orderID string) ([]model.SeatAssignment, error) {
	if _, err := c.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	var assignments []model.SeatAssignment
	err := c.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&assignments).Error
	if err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	return assignments, nil
}

// GetOrderSummary prices the user's active lease per tier. It reads
// only the lease and tier tables, nothing durable is written.
func (c *OrderCoordinator) GetOrderSummary(ctx context.Context, lease *model.Lease) (*model.OrderSummary, error) {
	if lease == nil || lease.Expired(time.Now()) {
		return nil, ErrLeaseNotFound
	}
	assignments, total, err := resolveTierAssignments(c.db.WithContext(ctx), lease.EventID, lease.Seats, lease.TierHint)
	if err != nil {
		return nil, err
	}

	summary := &model.OrderSummary{
		OrderID:          lease.OrderID,
		UserID:           lease.UserID,
		EventID:          lease.EventID,
		TotalSeats:       len(lease.Seats),
		TotalAmount:      total,
		Items:            make([]model.OrderSummaryItem, 0, len(assignments)),
		ExpiresAt:        lease.ExpiresAt,
		RemainingSeconds: lease.RemainingSeconds(time.Now()),
	}
	for _, a := range assignments {
		summary.Items = append(summary.Items, model.OrderSummaryItem{
			TierID:       a.Tier.ID,
			Seats:        a.Seats,
			Quantity:     len(a.Seats),
			PricePerSeat: a.Tier.Price,
		})
	}
	return summary, nil
}

// GetOrderDetail aggregates the order with its tickets, transactions
// and assignments. Completed orders additionally get each ticket's QR
// payload rendered as a base64 PNG.
func (c *OrderCoordinator) GetOrderDetail(ctx context.Context, orderID string) (*model.OrderDetail, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detail := &model.OrderDetail{}
	if err := copier.Copy(&detail.Order, order); err != nil {
		return nil, err
	}

	db := c.db.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).Find(&detail.Tickets).Error; err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	if err := db.Where("order_id = ?", orderID).Find(&detail.Transactions).Error; err != nil {
		return nil, &DurableStoreError{Err: err}
	}
	if err := db.Where("order_id = ?", orderID).Find(&detail.SeatAssignments).Error; err != nil {
		return nil, &DurableStoreError{Err: err}
	}

	if order.Status == constants.OrderCompleted {
		for _, ticket := range detail.Tickets {
			if ticket.QRData == "" {
				continue
			}
			img, err := utils.GenerateQRCode(ticket.QRData, 256)
			if err != nil {
				log.Printf("orders: rendering QR for ticket %d failed: %v", ticket.ID, err)
				continue
			}
			detail.QRCodes = append(detail.QRCodes, base64.StdEncoding.EncodeToString(img))
		}
	}
	return detail, nil
}

// signedTicketPayload builds the verification payload bound to ticket,
// seat, order and user, signed so the gate can reject tampered codes.
func (c *OrderCoordinator) signedTicketPayload(ticket *model.Ticket, eventID, venueID uint, publicCode string) (string, error) {
	payload := model.TicketVerification{
		TicketID: strconv.FormatUint(uint64(ticket.ID), 10),
		EventID:  eventID,
		VenueID:  venueID,
		Seat:     ticket.Seat(),
		UserID:   ticket.UserID,
		OrderRef: publicCode,
	}
	unsigned, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	payload.Sig = utils.SignPayload(c.qrSecret, string(unsigned))
	signed, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

func (c *OrderCoordinator) compensateLease(ctx context.Context, lease *model.Lease) {
	if _, err := c.store.DeleteLease(ctx, lease); err != nil {
		log.Printf("orders: compensating lease delete for order %s failed: %v", lease.OrderID, err)
	}
}
