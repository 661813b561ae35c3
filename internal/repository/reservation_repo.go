package repository

import (
	"context"
	"strings"

	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/internal/schedule"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	Save(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)

	CreateOccurrences(ctx context.Context, tx *gorm.DB, occurrences []models.ReservationOccurrence) error
	SaveOccurrence(ctx context.Context, tx *gorm.DB, occurrence *models.ReservationOccurrence) error
	DeleteOccurrences(ctx context.Context, tx *gorm.DB, reservationID uint) error
	FindOccurrences(ctx context.Context, tx *gorm.DB, reservationID uint) ([]models.ReservationOccurrence, error)

	// FindOverlapping is the overlap index of the engine: all live (valid)
	// occurrences in the room intersecting any of the candidate spans, with
	// half-open [start,end) semantics, optionally excluding one reservation.
	FindOverlapping(ctx context.Context, tx *gorm.DB, roomID uint, spans []schedule.Span, excludeReservationID *uint) ([]models.ReservationOccurrence, error)

	AddEditLog(ctx context.Context, tx *gorm.DB, entry *models.ReservationEditLog) error
	Delete(ctx context.Context, tx *gorm.DB, reservationID uint) error

	// Transaction runs fn atomically; every read and write of one mutating
	// engine operation goes through a single call.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Omit("Room", "Occurrences", "EditLogs").Create(reservation).Error
}

func (r *reservationRepository) Save(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Omit("Room", "Occurrences", "EditLogs").Save(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	return r.find(ctx, r.db, id)
}

func (r *reservationRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	return r.find(ctx, tx, id)
}

func (r *reservationRepository) find(ctx context.Context, db *gorm.DB, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := db.WithContext(ctx).
		Preload("Occurrences", func(db *gorm.DB) *gorm.DB { return db.Order("start_dt ASC") }).
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) CreateOccurrences(ctx context.Context, tx *gorm.DB, occurrences []models.ReservationOccurrence) error {
	if len(occurrences) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&occurrences).Error
}

func (r *reservationRepository) SaveOccurrence(ctx context.Context, tx *gorm.DB, occurrence *models.ReservationOccurrence) error {
	return tx.WithContext(ctx).Omit("Reservation").Save(occurrence).Error
}

func (r *reservationRepository) DeleteOccurrences(ctx context.Context, tx *gorm.DB, reservationID uint) error {
	return tx.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.ReservationOccurrence{}).Error
}

func (r *reservationRepository) FindOccurrences(ctx context.Context, tx *gorm.DB, reservationID uint) ([]models.ReservationOccurrence, error) {
	var occurrences []models.ReservationOccurrence
	err := tx.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("start_dt ASC").
		Find(&occurrences).Error
	return occurrences, err
}

func (r *reservationRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, roomID uint, spans []schedule.Span, excludeReservationID *uint) ([]models.ReservationOccurrence, error) {
	if len(spans) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(spans))
	args := make([]any, 0, 2*len(spans))
	for _, span := range spans {
		clauses = append(clauses, "(reservation_occurrences.start_dt < ? AND reservation_occurrences.end_dt > ?)")
		args = append(args, span.End, span.Start)
	}

	q := tx.WithContext(ctx).
		Joins("JOIN reservations ON reservations.id = reservation_occurrences.reservation_id").
		Where("reservations.room_id = ?", roomID).
		Where("reservation_occurrences.is_cancelled = ? AND reservation_occurrences.is_rejected = ?", false, false).
		Where(strings.Join(clauses, " OR "), args...)

	if excludeReservationID != nil {
		q = q.Where("reservation_occurrences.reservation_id <> ?", *excludeReservationID)
	}

	var occurrences []models.ReservationOccurrence
	err := q.Preload("Reservation").
		Order("reservation_occurrences.start_dt ASC").
		Find(&occurrences).Error
	return occurrences, err
}

func (r *reservationRepository) AddEditLog(ctx context.Context, tx *gorm.DB, entry *models.ReservationEditLog) error {
	return tx.WithContext(ctx).Create(entry).Error
}

// Delete removes the reservation; occurrences and edit logs go with it via
// the cascade constraints.
func (r *reservationRepository) Delete(ctx context.Context, tx *gorm.DB, reservationID uint) error {
	return tx.WithContext(ctx).Delete(&models.Reservation{}, reservationID).Error
}
