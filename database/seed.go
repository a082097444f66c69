package database

import (
	"log"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"event_ticketing/constants"
	"event_ticketing/model"
)

func parseDate(dateStr string) time.Time {
	t, _ := time.Parse("2006-01-02", dateStr)
	return t
}

// SeedData loads a small browsable catalog so a fresh database is
// usable immediately. Everything is FirstOrCreate keyed on slug, so
// re-running on an existing database changes nothing.
func SeedData(db *gorm.DB) {
	venues := []model.Venue{
		{Name: "Grand Arena", Address: "1 Festival Way", City: "Austin", Capacity: 5000},
		{Name: "Riverside Hall", Address: "88 Waterfront Drive", City: "Portland", Capacity: 1200},
	}
	for i := range venues {
		venues[i].Slug = slug.Make(venues[i].Name)
		if err := db.Where(model.Venue{Slug: venues[i].Slug}).FirstOrCreate(&venues[i]).Error; err != nil {
			log.Println("failed to seed venue:", venues[i].Name, "error:", err)
		}
	}

	events := []model.Event{
		{Name: "Summer Soundwave 2026", EventDate: parseDate("2026-11-14"), VenueID: venues[0].ID},
		{Name: "Riverside Acoustic Night", EventDate: parseDate("2026-10-03"), VenueID: venues[1].ID},
	}
	for i := range events {
		events[i].Slug = slug.Make(events[i].Name)
		if err := db.Where(model.Event{Slug: events[i].Slug}).FirstOrCreate(&events[i]).Error; err != nil {
			log.Println("failed to seed event:", events[i].Name, "error:", err)
		}
	}

	tiers := []model.TicketTier{
		{EventID: events[0].ID, VenueID: venues[0].ID, SeatType: constants.SeatRegular, Price: 45, TotalSeats: 4000, AvailableSeats: 4000, SeatPrefix: "General"},
		{EventID: events[0].ID, VenueID: venues[0].ID, SeatType: constants.SeatVIP, Price: 120, TotalSeats: 1000, AvailableSeats: 1000, SeatPrefix: "VIP"},
		{EventID: events[1].ID, VenueID: venues[1].ID, SeatType: constants.SeatRegular, Price: 30, TotalSeats: 1200, AvailableSeats: 1200, SeatPrefix: "General"},
	}
	for i := range tiers {
		cond := model.TicketTier{EventID: tiers[i].EventID, SeatPrefix: tiers[i].SeatPrefix}
		if err := db.Where(cond).FirstOrCreate(&tiers[i]).Error; err != nil {
			log.Println("failed to seed ticket tier:", tiers[i].SeatPrefix, "error:", err)
		}
	}
}
