package database

import (
	"log"

	"github.com/openrota/roombooking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Room{},
		&models.BookableHours{},
		&models.NonBookablePeriod{},
		&models.Reservation{},
		&models.ReservationOccurrence{},
		&models.ReservationEditLog{},
		&models.Blocking{},
		&models.BlockedRoom{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: at most one live occurrence per reservation and
	// date. Room-level races are serialized by the room row lock; a retried
	// creation with identical inputs regenerates an identical set.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_occurrence_live_date
		ON reservation_occurrences (reservation_id, date)
		WHERE is_cancelled = false AND is_rejected = false
	`)

	return db
}
