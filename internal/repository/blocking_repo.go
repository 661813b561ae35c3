package repository

import (
	"context"
	"time"

	"github.com/openrota/roombooking-service/internal/models"
	"gorm.io/gorm"
)

type BlockingRepository interface {
	// FindCovering returns the room's blocked-room rows, in one of the given
	// states, whose blocking's date range intersects [minDate, maxDate]. The
	// caller narrows down to individual dates via Blocking.IsActiveAt.
	FindCovering(ctx context.Context, tx *gorm.DB, roomID uint, minDate, maxDate time.Time, states []models.BlockedRoomState) ([]models.BlockedRoom, error)
}

type blockingRepository struct {
	db *gorm.DB
}

func NewBlockingRepository(db *gorm.DB) BlockingRepository {
	return &blockingRepository{db: db}
}

func (r *blockingRepository) FindCovering(ctx context.Context, tx *gorm.DB, roomID uint, minDate, maxDate time.Time, states []models.BlockedRoomState) ([]models.BlockedRoom, error) {
	var blockedRooms []models.BlockedRoom
	err := tx.WithContext(ctx).
		Joins("JOIN blockings ON blockings.id = blocked_rooms.blocking_id").
		Where("blocked_rooms.room_id = ?", roomID).
		Where("blocked_rooms.state IN ?", states).
		Where("blockings.start_date <= ? AND blockings.end_date >= ?", maxDate, minDate).
		Preload("Blocking").
		Find(&blockedRooms).Error
	return blockedRooms, err
}
