package model

import "time"

// Venue and Event are owned by an external CRUD service; only the read
// side is kept here for browsing and for tier lookups.
type Venue struct {
	DTO
	Name        string `gorm:"index;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`

	Events []Event `gorm:"foreignKey:VenueID" json:"events,omitempty"`
}

type Event struct {
	DTO
	Name        string    `gorm:"index;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description string    `json:"description,omitempty"`
	EventDate   time.Time `json:"eventDate"`
	VenueID     uint      `gorm:"index;not null" json:"venueId"`

	Venue Venue        `gorm:"foreignKey:VenueID" json:"-"`
	Tiers []TicketTier `gorm:"foreignKey:EventID" json:"tiers,omitempty"`
}
