package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/internal/notifier"
	"github.com/openrota/roombooking-service/internal/repository"
	"github.com/openrota/roombooking-service/internal/schedule"
	"gorm.io/gorm"
)

// BookingData carries the caller-supplied booking fields for create and
// modify operations.
type BookingData struct {
	StartDT         time.Time
	EndDT           time.Time
	RepeatFrequency models.RepeatFrequency
	RepeatInterval  int
	BookedForID     string
	BookedForName   string
	ContactEmail    string
	ContactPhone    string
	BookingReason   string
}

type ReservationService interface {
	Create(ctx context.Context, roomID uint, data BookingData, actor models.Actor, prebook *bool) (*models.Reservation, error)
	Accept(ctx context.Context, reservationID uint, actor models.Actor) error
	Cancel(ctx context.Context, reservationID uint, actor models.Actor, reason string, silent bool) error
	Reject(ctx context.Context, reservationID uint, actor models.Actor, reason string, silent bool) error
	Modify(ctx context.Context, reservationID uint, data BookingData, actor models.Actor) (bool, error)
	Delete(ctx context.Context, reservationID uint, actor models.Actor) error
	Get(ctx context.Context, reservationID uint) (*models.Reservation, error)
	PreviewConflicts(ctx context.Context, roomID uint, data BookingData) (Classification, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	roomRepo        repository.RoomRepository
	blockingRepo    repository.BlockingRepository
	notifier        notifier.Notifier

	// includePendingBlockings decides whether not-yet-approved blockings
	// already count as conflicts. Callers pick the policy at construction.
	includePendingBlockings bool

	now func() time.Time
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	roomRepo repository.RoomRepository,
	blockingRepo repository.BlockingRepository,
	n notifier.Notifier,
	includePendingBlockings bool,
) ReservationService {
	return &reservationService{
		reservationRepo:         reservationRepo,
		roomRepo:                roomRepo,
		blockingRepo:            blockingRepo,
		notifier:                n,
		includePendingBlockings: includePendingBlockings,
		now:                     time.Now,
	}
}

func (s *reservationService) Get(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) Create(ctx context.Context, roomID uint, data BookingData, actor models.Actor, prebook *bool) (*models.Reservation, error) {
	var result *models.Reservation
	var rejectedCompetitors []models.ReservationOccurrence

	err := s.reservationRepo.Transaction(ctx, func(tx *gorm.DB) error {
		// Lock the room row — serializes concurrent booking attempts
		room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return ErrRoomNotFound
		}

		if err := s.validateBookingData(room, data, actor); err != nil {
			return err
		}

		// Resolve the booking mode from the room's capabilities unless the
		// caller forced one explicitly.
		pb := false
		if prebook != nil {
			pb = *prebook
		} else {
			pb = !room.CanBeBooked(actor)
			if pb && !room.CanBePrebooked(actor) {
				return &AccessError{Reason: "you cannot book this room"}
			}
		}

		reservation := &models.Reservation{
			RoomID:          roomID,
			StartDT:         data.StartDT,
			EndDT:           data.EndDT,
			RepeatFrequency: data.RepeatFrequency,
			RepeatInterval:  data.RepeatInterval,
			BookedForID:     data.BookedForID,
			BookedForName:   data.BookedForName,
			CreatedByID:     actor.ID,
			ContactEmail:    data.ContactEmail,
			ContactPhone:    data.ContactPhone,
			BookingReason:   data.BookingReason,
			IsAccepted:      !pb,
		}
		if reservation.BookedForName == "" {
			reservation.BookedForName = actor.Name
		}
		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return err
		}

		rejectedCompetitors, err = s.createOccurrences(ctx, tx, room, reservation, true, actor)
		if err != nil {
			return err
		}

		// Sanity check so we don't end up with an "empty" booking
		if len(reservation.ValidOccurrences()) == 0 {
			return ErrNoValidOccurrences
		}

		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ReservationCreated(result)
	for i := range rejectedCompetitors {
		s.notifier.OccurrenceRejected(&rejectedCompetitors[i], rejectedCompetitors[i].RejectionReason)
	}
	return result, nil
}

// validateBookingData applies the room-independent and room-specific input
// checks shared by create and modify.
func (s *reservationService) validateBookingData(room *models.Room, data BookingData, actor models.Actor) error {
	if err := schedule.ValidateRepetition(data.RepeatFrequency, data.RepeatInterval); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if data.EndDT.Before(data.StartDT) {
		return &ValidationError{Reason: "end must not precede start"}
	}
	if err := room.CheckAdvanceDays(data.EndDT, actor, s.now()); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if !room.CheckBookableHours(data.StartDT, data.EndDT, actor) {
		return &ValidationError{Reason: "room cannot be booked at this time"}
	}
	return nil
}

// createOccurrences expands the reservation's repetition into its occurrence
// set and applies the conflict resolution policy: non-bookable periods and
// blockings first, then collisions with other reservations. With
// skipConflicts the losing candidate occurrence is cancelled silently;
// without it any hard conflict aborts the whole operation. Pending
// competitors never block an accepted booking — its acceptance rejects them
// instead. The rejected competitor occurrences are returned so the caller
// can notify after commit.
func (s *reservationService) createOccurrences(ctx context.Context, tx *gorm.DB, room *models.Room, reservation *models.Reservation, skipConflicts bool, actor models.Actor) ([]models.ReservationOccurrence, error) {
	spans, err := schedule.Expand(reservation.StartDT, reservation.EndDT, reservation.RepeatFrequency, reservation.RepeatInterval)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	occurrences := make([]models.ReservationOccurrence, len(spans))
	for i, span := range spans {
		occurrences[i] = models.ReservationOccurrence{
			ReservationID: reservation.ID,
			Date:          span.Date,
			StartDT:       span.Start,
			EndDT:         span.End,
		}
	}
	if err := s.reservationRepo.CreateOccurrences(ctx, tx, occurrences); err != nil {
		return nil, err
	}
	reservation.Occurrences = occurrences

	if err := s.checkNonBookablePeriods(ctx, tx, room, reservation, skipConflicts, actor); err != nil {
		return nil, err
	}
	if err := s.checkBlockings(ctx, tx, room, reservation, skipConflicts, actor); err != nil {
		return nil, err
	}
	return s.resolveReservationConflicts(ctx, tx, room, reservation, skipConflicts, actor)
}

func (s *reservationService) checkNonBookablePeriods(ctx context.Context, tx *gorm.DB, room *models.Room, reservation *models.Reservation, skipConflicts bool, actor models.Actor) error {
	if actor.IsAdmin {
		return nil
	}
	periods, err := s.roomRepo.NonBookablePeriods(ctx, tx, room.ID, reservation.StartDT)
	if err != nil {
		return err
	}
	for i := range reservation.Occurrences {
		occ := &reservation.Occurrences[i]
		if !occ.IsValid() {
			continue
		}
		for _, period := range periods {
			if !period.Overlaps(occ.StartDT, occ.EndDT) {
				continue
			}
			if !skipConflicts {
				return &ConflictError{}
			}
			if err := s.cancelOccurrence(ctx, tx, occ, "Skipped due to nonbookable date"); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func (s *reservationService) checkBlockings(ctx context.Context, tx *gorm.DB, room *models.Room, reservation *models.Reservation, skipConflicts bool, actor models.Actor) error {
	if len(reservation.Occurrences) == 0 {
		return nil
	}
	minDate := reservation.Occurrences[0].Date
	maxDate := reservation.Occurrences[len(reservation.Occurrences)-1].Date

	blockedRooms, err := s.blockingRepo.FindCovering(ctx, tx, room.ID, minDate, maxDate, blockingStates(s.includePendingBlockings))
	if err != nil {
		return err
	}
	for _, br := range blockedRooms {
		blocking := br.Blocking
		if blocking == nil || blocking.CanBeOverridden(actor, room) {
			continue
		}
		for i := range reservation.Occurrences {
			occ := &reservation.Occurrences[i]
			if !occ.IsValid() || !blocking.IsActiveAt(occ.Date) {
				continue
			}
			if !skipConflicts {
				return &ConflictError{}
			}
			reason := fmt.Sprintf("Skipped due to collision with a blocking (%s)", blocking.Reason)
			if err := s.cancelOccurrence(ctx, tx, occ, reason); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *reservationService) resolveReservationConflicts(ctx context.Context, tx *gorm.DB, room *models.Room, reservation *models.Reservation, skipConflicts bool, actor models.Actor) ([]models.ReservationOccurrence, error) {
	excludeID := reservation.ID
	conflicts, err := s.classify(ctx, tx, room.ID, reservation.Occurrences, &excludeID)
	if err != nil {
		return nil, err
	}

	var rejectedCompetitors []models.ReservationOccurrence
	rejected := make(map[uint]bool)
	for i := range reservation.Occurrences {
		occ := &reservation.Occurrences[i]
		if !occ.IsValid() {
			continue
		}
		if confirmed := conflicts.Confirmed[occ.Date.Format(dateKey)]; len(confirmed) > 0 {
			if !skipConflicts {
				return nil, &ConflictError{}
			}
			// Cancel OUR occurrence, silently
			reason := fmt.Sprintf("Skipped due to collision with %d reservation(s)", len(confirmed))
			if err := s.cancelOccurrence(ctx, tx, occ, reason); err != nil {
				return nil, err
			}
		} else if pending := conflicts.PendingFor(occ.Date); len(pending) > 0 && reservation.IsAccepted {
			// Reject the OTHER, not-yet-accepted occurrences
			for _, competitor := range pending {
				if !competitor.IsValid() || rejected[competitor.ID] {
					continue
				}
				rejected[competitor.ID] = true
				if err := s.rejectOccurrence(ctx, tx, &competitor, actor, rejectedByConfirmedReason); err != nil {
					return nil, err
				}
				rejectedCompetitors = append(rejectedCompetitors, competitor)
			}
		}
	}
	return rejectedCompetitors, nil
}

const rejectedByConfirmedReason = "Rejected due to collision with a confirmed reservation"

func (s *reservationService) cancelOccurrence(ctx context.Context, tx *gorm.DB, occ *models.ReservationOccurrence, reason string) error {
	occ.IsCancelled = true
	occ.RejectionReason = reason
	return s.reservationRepo.SaveOccurrence(ctx, tx, occ)
}

func (s *reservationService) rejectOccurrence(ctx context.Context, tx *gorm.DB, occ *models.ReservationOccurrence, actor models.Actor, reason string) error {
	occ.IsRejected = true
	occ.RejectionReason = reason
	if err := s.reservationRepo.SaveOccurrence(ctx, tx, occ); err != nil {
		return err
	}
	line := fmt.Sprintf("Booking occurrence on %s rejected: %s", occ.Date.Format(dateKey), reason)
	return s.addEditLog(ctx, tx, occ.ReservationID, actor.Name, []string{line})
}

func (s *reservationService) addEditLog(ctx context.Context, tx *gorm.DB, reservationID uint, userName string, info []string) error {
	entry, err := models.NewEditLog(reservationID, userName, info)
	if err != nil {
		return err
	}
	return s.reservationRepo.AddEditLog(ctx, tx, &entry)
}

func (s *reservationService) Accept(ctx context.Context, reservationID uint, actor models.Actor) error {
	var accepted *models.Reservation
	var rejectedCompetitors []models.ReservationOccurrence

	err := s.reservationRepo.Transaction(ctx, func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDTx(ctx, tx, reservationID)
		if err != nil {
			return ErrReservationNotFound
		}
		room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, reservation.RoomID)
		if err != nil {
			return ErrRoomNotFound
		}
		if !CanBeAccepted(room, actor) {
			return &AccessError{Reason: "you cannot accept this reservation"}
		}
		if !reservation.IsPending() {
			return ErrReservationNotPending
		}

		reservation.IsAccepted = true
		if err := s.reservationRepo.Save(ctx, tx, reservation); err != nil {
			return err
		}
		if err := s.addEditLog(ctx, tx, reservation.ID, actor.Name, []string{"Reservation accepted"}); err != nil {
			return err
		}

		// Propagate: reject every still-valid occurrence of other pending
		// reservations that collides with one of ours.
		excludeID := reservation.ID
		conflicts, err := s.classify(ctx, tx, reservation.RoomID, reservation.Occurrences, &excludeID)
		if err != nil {
			return err
		}
		rejected := make(map[uint]bool)
		for i := range reservation.Occurrences {
			occ := &reservation.Occurrences[i]
			if !occ.IsValid() {
				continue
			}
			for _, competitor := range conflicts.PendingFor(occ.Date) {
				if !competitor.IsValid() || rejected[competitor.ID] {
					continue
				}
				rejected[competitor.ID] = true
				if err := s.rejectOccurrence(ctx, tx, &competitor, actor, rejectedByConfirmedReason); err != nil {
					return err
				}
				rejectedCompetitors = append(rejectedCompetitors, competitor)
			}
		}

		accepted = reservation
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.ReservationAccepted(accepted)
	for i := range rejectedCompetitors {
		s.notifier.OccurrenceRejected(&rejectedCompetitors[i], rejectedCompetitors[i].RejectionReason)
	}
	return nil
}

func (s *reservationService) Cancel(ctx context.Context, reservationID uint, actor models.Actor, reason string, silent bool) error {
	var cancelled *models.Reservation

	err := s.reservationRepo.Transaction(ctx, func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDTx(ctx, tx, reservationID)
		if err != nil {
			return ErrReservationNotFound
		}
		if !CanBeCancelled(reservation, actor) {
			return &AccessError{Reason: "you cannot cancel this reservation"}
		}
		if reservation.IsCancelled || reservation.IsRejected {
			return ErrReservationTerminal
		}

		reservation.IsCancelled = true
		reservation.RejectionReason = reason
		if err := s.reservationRepo.Save(ctx, tx, reservation); err != nil {
			return err
		}
		for i := range reservation.Occurrences {
			occ := &reservation.Occurrences[i]
			if !occ.IsValid() {
				continue
			}
			occ.IsCancelled = true
			if err := s.reservationRepo.SaveOccurrence(ctx, tx, occ); err != nil {
				return err
			}
		}

		if !silent {
			line := "Reservation cancelled"
			if reason != "" {
				line = fmt.Sprintf("Reservation cancelled: %s", reason)
			}
			if err := s.addEditLog(ctx, tx, reservation.ID, actor.Name, []string{line}); err != nil {
				return err
			}
		}
		cancelled = reservation
		return nil
	})
	if err != nil {
		return err
	}

	if !silent {
		s.notifier.ReservationCancelled(cancelled, reason)
	}
	return nil
}

func (s *reservationService) Reject(ctx context.Context, reservationID uint, actor models.Actor, reason string, silent bool) error {
	if reason == "" {
		return &ValidationError{Reason: "a rejection reason is required"}
	}

	var rejected *models.Reservation

	err := s.reservationRepo.Transaction(ctx, func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDTx(ctx, tx, reservationID)
		if err != nil {
			return ErrReservationNotFound
		}
		room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, reservation.RoomID)
		if err != nil {
			return ErrRoomNotFound
		}
		if !CanBeRejected(room, actor) {
			return &AccessError{Reason: "you cannot reject this reservation"}
		}
		if reservation.IsCancelled || reservation.IsRejected {
			return ErrReservationTerminal
		}

		reservation.IsRejected = true
		reservation.RejectionReason = reason
		if err := s.reservationRepo.Save(ctx, tx, reservation); err != nil {
			return err
		}
		for i := range reservation.Occurrences {
			occ := &reservation.Occurrences[i]
			if !occ.IsValid() {
				continue
			}
			occ.IsRejected = true
			occ.RejectionReason = reason
			if err := s.reservationRepo.SaveOccurrence(ctx, tx, occ); err != nil {
				return err
			}
		}

		if !silent {
			line := fmt.Sprintf("Reservation rejected: %s", reason)
			if err := s.addEditLog(ctx, tx, reservation.ID, actor.Name, []string{line}); err != nil {
				return err
			}
		}
		rejected = reservation
		return nil
	})
	if err != nil {
		return err
	}

	if !silent {
		s.notifier.ReservationRejected(rejected, reason)
	}
	return nil
}

func (s *reservationService) Delete(ctx context.Context, reservationID uint, actor models.Actor) error {
	if !CanBeDeleted(actor) {
		return &AccessError{Reason: "only an administrator can delete a reservation"}
	}
	return s.reservationRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.reservationRepo.FindByIDTx(ctx, tx, reservationID); err != nil {
			return ErrReservationNotFound
		}
		return s.reservationRepo.Delete(ctx, tx, reservationID)
	})
}
