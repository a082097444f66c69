package database

import (
	"fmt"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"event_ticketing/config"
	"event_ticketing/model"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	p := config.Config("DB_PORT")
	port, err := strconv.ParseUint(p, 10, 32)
	if err != nil {
		panic("failed to parse database port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Config("DB_HOST"), port, config.Config("DB_USER"), config.Config("DB_PASSWORD"), config.Config("DB_NAME"))
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	fmt.Println("Connection Opened to Database")
	if err := Migrate(DB); err != nil {
		panic("failed to migrate database: " + err.Error())
	}
	fmt.Println("Database Migrated")

	SeedData(DB)
}

// Migrate creates or updates every table the service owns. Shared with
// the test setup so tests run against the exact production schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Venue{},
		&model.Event{},
		&model.TicketTier{},
		&model.Order{},
		&model.SeatAssignment{},
		&model.Ticket{},
		&model.Transaction{},
	)
}
