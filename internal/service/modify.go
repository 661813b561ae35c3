package service

import (
	"context"
	"fmt"

	"github.com/openrota/roombooking-service/internal/models"
	"gorm.io/gorm"
)

type fieldChange struct {
	label string
	old   string
	new   string
}

func (c fieldChange) line() string {
	switch {
	case c.old == "":
		return fmt.Sprintf("The %s was set to '%s'", c.label, c.new)
	case c.new == "":
		return fmt.Sprintf("The %s was cleared", c.label)
	default:
		return fmt.Sprintf("The %s was changed from '%s' to '%s'", c.label, c.old, c.new)
	}
}

// Modify applies new booking data to an existing reservation. It reports
// whether anything actually changed. Date and time parts of the start/end
// timestamps are diffed independently and the repetition pair is diffed as a
// unit; a change to any of them regenerates the occurrence set, re-running
// the full conflict policy and carrying forward only ancillary per-occurrence
// state (the notification flag) onto still-valid same-date occurrences.
func (s *reservationService) Modify(ctx context.Context, reservationID uint, data BookingData, actor models.Actor) (bool, error) {
	var changed bool
	var modified *models.Reservation
	var changeLines []string
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
		if !CanBeModified(reservation, room, actor) {
			return &AccessError{Reason: "you cannot modify this reservation"}
		}
		if err := s.validateBookingData(room, data, actor); err != nil {
			return err
		}

		changes, updateOccurrences := diffBookingData(reservation, data)
		if len(changes) == 0 {
			return nil
		}
		changed = true
		applyBookingData(reservation, data)

		lines := make([]string, 0, len(changes)+1)
		lines = append(lines, "Booking modified")
		for _, change := range changes {
			lines = append(lines, change.line())
		}
		changeLines = lines[1:]

		if err := s.reservationRepo.Save(ctx, tx, reservation); err != nil {
			return err
		}

		if updateOccurrences {
			rejectedCompetitors, err = s.regenerateOccurrences(ctx, tx, room, reservation, actor)
			if err != nil {
				return err
			}
		}

		// Sanity check so we don't end up with an "empty" booking
		if len(reservation.ValidOccurrences()) == 0 {
			return ErrNoValidOccurrences
		}

		if err := s.addEditLog(ctx, tx, reservation.ID, actor.Name, lines); err != nil {
			return err
		}
		modified = reservation
		return nil
	})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	s.notifier.ReservationModified(modified, changeLines)
	for i := range rejectedCompetitors {
		s.notifier.OccurrenceRejected(&rejectedCompetitors[i], rejectedCompetitors[i].RejectionReason)
	}
	return true, nil
}

// regenerateOccurrences replaces the occurrence set wholesale and restores
// the notification flag for still-valid occurrences on unchanged dates. An
// occurrence invalidated by a fresh collision keeps nothing from its
// predecessor — stale history must never override a genuine new conflict.
func (s *reservationService) regenerateOccurrences(ctx context.Context, tx *gorm.DB, room *models.Room, reservation *models.Reservation, actor models.Actor) ([]models.ReservationOccurrence, error) {
	oldOccurrences := make(map[string]models.ReservationOccurrence, len(reservation.Occurrences))
	for _, occ := range reservation.Occurrences {
		oldOccurrences[occ.Date.Format(dateKey)] = occ
	}

	if err := s.reservationRepo.DeleteOccurrences(ctx, tx, reservation.ID); err != nil {
		return nil, err
	}
	rejectedCompetitors, err := s.createOccurrences(ctx, tx, room, reservation, true, actor)
	if err != nil {
		return nil, err
	}

	for i := range reservation.Occurrences {
		occ := &reservation.Occurrences[i]
		old, ok := oldOccurrences[occ.Date.Format(dateKey)]
		if !ok || !occ.IsValid() {
			continue
		}
		if old.NotificationSent && !occ.NotificationSent {
			occ.NotificationSent = true
			if err := s.reservationRepo.SaveOccurrence(ctx, tx, occ); err != nil {
				return nil, err
			}
		}
	}

	// A trivial edit of a daily booking whose occupants were all notified
	// already must not re-spam them.
	if reservation.RepeatFrequency == models.RepeatDay && len(oldOccurrences) > 0 && allNotified(oldOccurrences) {
		for i := range reservation.Occurrences {
			occ := &reservation.Occurrences[i]
			if occ.NotificationSent {
				continue
			}
			occ.NotificationSent = true
			if err := s.reservationRepo.SaveOccurrence(ctx, tx, occ); err != nil {
				return nil, err
			}
		}
	}
	return rejectedCompetitors, nil
}

func allNotified(occurrences map[string]models.ReservationOccurrence) bool {
	for _, occ := range occurrences {
		if !occ.NotificationSent {
			return false
		}
	}
	return true
}

func diffBookingData(reservation *models.Reservation, data BookingData) ([]fieldChange, bool) {
	var changes []fieldChange
	updateOccurrences := false

	// The date/time fields create separate entries for the date and time parts
	if !reservation.StartDT.Equal(data.StartDT) {
		updateOccurrences = true
		if reservation.StartDT.Format(dateKey) != data.StartDT.Format(dateKey) {
			changes = append(changes, fieldChange{"start date", reservation.StartDT.Format(dateKey), data.StartDT.Format(dateKey)})
		}
		if reservation.StartDT.Format("15:04") != data.StartDT.Format("15:04") {
			changes = append(changes, fieldChange{"start time", reservation.StartDT.Format("15:04"), data.StartDT.Format("15:04")})
		}
	}
	if !reservation.EndDT.Equal(data.EndDT) {
		updateOccurrences = true
		if reservation.EndDT.Format(dateKey) != data.EndDT.Format(dateKey) {
			changes = append(changes, fieldChange{"end date", reservation.EndDT.Format(dateKey), data.EndDT.Format(dateKey)})
		}
		if reservation.EndDT.Format("15:04") != data.EndDT.Format("15:04") {
			changes = append(changes, fieldChange{"end time", reservation.EndDT.Format("15:04"), data.EndDT.Format("15:04")})
		}
	}

	// The repetition consists of two fields but they are tied together
	if reservation.RepeatFrequency != data.RepeatFrequency || reservation.RepeatInterval != data.RepeatInterval {
		updateOccurrences = true
		oldRep := reservation.Repetition()
		newRep := models.Repetition{Frequency: data.RepeatFrequency, Interval: data.RepeatInterval}
		changes = append(changes, fieldChange{"booking type", oldRep.Label(), newRep.Label()})
	}

	if reservation.BookedForID != data.BookedForID {
		changes = append(changes, fieldChange{"'Booked for' user", reservation.BookedForName, data.BookedForName})
	}
	if reservation.ContactEmail != data.ContactEmail {
		changes = append(changes, fieldChange{"contact email", reservation.ContactEmail, data.ContactEmail})
	}
	if reservation.ContactPhone != data.ContactPhone {
		changes = append(changes, fieldChange{"contact phone number", reservation.ContactPhone, data.ContactPhone})
	}
	if reservation.BookingReason != data.BookingReason {
		changes = append(changes, fieldChange{"booking reason", reservation.BookingReason, data.BookingReason})
	}

	return changes, updateOccurrences
}

func applyBookingData(reservation *models.Reservation, data BookingData) {
	reservation.StartDT = data.StartDT
	reservation.EndDT = data.EndDT
	reservation.RepeatFrequency = data.RepeatFrequency
	reservation.RepeatInterval = data.RepeatInterval
	if reservation.BookedForID != data.BookedForID {
		reservation.BookedForName = data.BookedForName
	}
	reservation.BookedForID = data.BookedForID
	reservation.ContactEmail = data.ContactEmail
	reservation.ContactPhone = data.ContactPhone
	reservation.BookingReason = data.BookingReason
}
