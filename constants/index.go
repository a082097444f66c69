package constants

// Order status values. PENDING is the only non-terminal state.
const (
	OrderPending   = "PENDING"
	OrderCompleted = "COMPLETED"
	OrderCancelled = "CANCELLED"
	OrderExpired   = "EXPIRED"
)

// Transaction status values.
const (
	TxPending  = "pending"
	TxSuccess  = "success"
	TxFailed   = "failed"
	TxRefunded = "refunded"
)

// Ticket status. Tickets are only ever created at finalization.
const (
	TicketSold = "SOLD"
)

// Seat tier types.
const (
	SeatRegular = "REGULAR"
	SeatVIP     = "VIP"
)

// Payment methods recorded on transactions.
const (
	MethodReservation = "reservation"
	MethodStripe      = "stripe"
	MethodSystem      = "system"
)

// Shared user-facing messages.
const (
	MsgInvalidInput  = "Invalid request payload"
	MsgOrderNotFound = "Order not found"
	MsgUnauthorized  = "Missing or invalid token"
)
