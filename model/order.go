package model

import "time"

// Order is the durable record of a reservation turning into a purchase.
// Its id is shared with the lease that created it. Status moves
// PENDING -> COMPLETED | CANCELLED | EXPIRED; only the order
// coordinator ever mutates it.
type Order struct {
	ID                    string     `gorm:"primaryKey;size:36" json:"id"`
	PublicCode            string     `gorm:"unique;size:20" json:"publicCode"`
	UserID                string     `gorm:"index;not null" json:"userId"`
	TotalAmount           float64    `json:"totalAmount"`
	Status                string     `gorm:"index;not null" json:"status"`
	PaymentIntentID       *string    `gorm:"uniqueIndex" json:"paymentIntentId,omitempty"`
	PaymentConfirmationID *string    `json:"paymentConfirmationId,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	CreatedAt             time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`

	Tickets      []Ticket      `gorm:"foreignKey:OrderID" json:"tickets,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:OrderID" json:"transactions,omitempty"`
}

// SeatAssignment maps an order to the seats drawn from one tier.
// Created when a lease becomes a pending order and never mutated
// afterwards, even on cancellation (audit record).
type SeatAssignment struct {
	DTO
	OrderID string `gorm:"index;size:36;not null" json:"orderId"`
	EventID uint   `gorm:"not null" json:"eventId"`
	VenueID uint   `json:"venueId"`
	TierID  uint   `gorm:"not null" json:"tierId"`
	Seats   string `gorm:"type:text;not null" json:"-"`
}

// SeatList decodes the stored seat set.
func (a *SeatAssignment) SeatList() ([]Seat, error) {
	return SeatsFromJSON(a.Seats)
}

// OrderSummary is the live view of a user's active lease priced per
// tier, served before the order is paid.
type OrderSummary struct {
	OrderID          string             `json:"orderId"`
	UserID           string             `json:"userId"`
	EventID          uint               `json:"eventId"`
	TotalSeats       int                `json:"totalSeats"`
	TotalAmount      float64            `json:"totalAmount"`
	Items            []OrderSummaryItem `json:"items"`
	ExpiresAt        time.Time          `json:"expiresAt"`
	RemainingSeconds int                `json:"remainingSeconds"`
}

type OrderSummaryItem struct {
	TierID       uint    `json:"tierId"`
	Seats        []Seat  `json:"seats"`
	Quantity     int     `json:"quantity"`
	PricePerSeat float64 `json:"pricePerSeat"`
}

// OrderDetail aggregates everything recorded for one order.
type OrderDetail struct {
	Order           Order            `json:"order"`
	Tickets         []Ticket         `json:"tickets"`
	Transactions    []Transaction    `json:"transactions"`
	SeatAssignments []SeatAssignment `json:"seatAssignments"`
	QRCodes         []string         `json:"qrCodes,omitempty"`
}
