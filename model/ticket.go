package model

// Ticket is the durable sold-seat record, created only at order
// finalization, one per seat. Immutable once created.
type Ticket struct {
	DTO
	OrderID     string  `gorm:"index;size:36;not null" json:"orderId"`
	TierID      uint    `gorm:"index;not null" json:"tierId"`
	UserID      string  `gorm:"index;not null" json:"userId"`
	SeatSection string  `gorm:"not null" json:"-"`
	SeatRow     int     `gorm:"not null" json:"-"`
	SeatColumn  int     `gorm:"not null" json:"-"`
	PricePaid   float64 `gorm:"not null" json:"pricePaid"`
	Status      string  `gorm:"not null;default:'SOLD'" json:"status"`
	QRData      string  `gorm:"type:text" json:"qrData"`

	Tier TicketTier `gorm:"foreignKey:TierID" json:"-"`
}

// Seat returns the structured seat this ticket covers.
func (t *Ticket) Seat() Seat {
	return Seat{Section: t.SeatSection, Row: t.SeatRow, Column: t.SeatColumn}
}

// SetSeat stores the structured seat on the ticket columns.
func (t *Ticket) SetSeat(s Seat) {
	t.SeatSection = s.Section
	t.SeatRow = s.Row
	t.SeatColumn = s.Column
}

// TicketVerification is the QR payload bound to seat, order and user.
// Sig is an HMAC over the binding fields so tampering is detectable at
// the gate.
type TicketVerification struct {
	TicketID string `json:"ticketId"`
	EventID  uint   `json:"eventId"`
	VenueID  uint   `json:"venueId"`
	Seat     Seat   `json:"seat"`
	UserID   string `json:"userId"`
	OrderRef string `json:"orderRef"`
	Sig      string `json:"sig"`
}
