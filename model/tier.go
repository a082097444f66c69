package model

// TicketTier is a priced bulk allocation of seats for an event. Seats
// whose section equals SeatPrefix belong to the tier. AvailableSeats is
// decremented once per ticket issued, under the finalize transaction.
type TicketTier struct {
	DTO
	EventID        uint    `gorm:"index;not null" json:"eventId"`
	VenueID        uint    `gorm:"not null" json:"venueId"`
	SeatType       string  `gorm:"not null" json:"seatType"`
	Price          float64 `gorm:"not null" json:"price"`
	TotalSeats     int     `gorm:"not null" json:"totalSeats"`
	AvailableSeats int     `gorm:"not null" json:"availableSeats"`
	SeatPrefix     string  `gorm:"not null" json:"seatPrefix"`
}
