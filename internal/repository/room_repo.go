package repository

import (
	"context"
	"time"

	"github.com/openrota/roombooking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error)
	NonBookablePeriods(ctx context.Context, tx *gorm.DB, roomID uint, after time.Time) ([]models.NonBookablePeriod, error)
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("BookableHours").
		Preload("NonBookablePeriods").
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDForUpdate locks the room row — serializes concurrent booking
// attempts on the same room.
func (r *roomRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("room_id = ?", id).Find(&room.BookableHours).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("room_id = ?", id).Find(&room.NonBookablePeriods).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) NonBookablePeriods(ctx context.Context, tx *gorm.DB, roomID uint, after time.Time) ([]models.NonBookablePeriod, error) {
	var periods []models.NonBookablePeriod
	err := tx.WithContext(ctx).
		Where("room_id = ? AND end_dt > ?", roomID, after).
		Order("start_dt ASC").
		Find(&periods).Error
	return periods, err
}
