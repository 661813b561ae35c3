package service

import (
	"context"
	"time"

	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/internal/schedule"
	"gorm.io/gorm"
)

const dateKey = "2006-01-02"

// Classification partitions the collisions of a candidate occurrence set.
// Maps are keyed by the candidate's calendar date; values are the colliding
// live occurrences, filed under confirmed or pending depending on whether
// their parent reservation has been accepted.
type Classification struct {
	Confirmed map[string][]models.ReservationOccurrence `json:"confirmed"`
	Pending   map[string][]models.ReservationOccurrence `json:"pending"`
}

func newClassification() Classification {
	return Classification{
		Confirmed: make(map[string][]models.ReservationOccurrence),
		Pending:   make(map[string][]models.ReservationOccurrence),
	}
}

// HasConfirmed reports whether the candidate on the given date collides with
// an accepted reservation.
func (c Classification) HasConfirmed(date time.Time) bool {
	return len(c.Confirmed[date.Format(dateKey)]) > 0
}

func (c Classification) PendingFor(date time.Time) []models.ReservationOccurrence {
	return c.Pending[date.Format(dateKey)]
}

// classify runs the overlap index over the candidates and splits the results
// by the colliding reservation's acceptance state. A single fetch per call
// keeps the lookup memoized for the duration of one operation.
func (s *reservationService) classify(ctx context.Context, tx *gorm.DB, roomID uint, candidates []models.ReservationOccurrence, excludeReservationID *uint) (Classification, error) {
	result := newClassification()

	spans := make([]schedule.Span, 0, len(candidates))
	for _, cand := range candidates {
		if !cand.IsValid() {
			continue
		}
		spans = append(spans, schedule.Span{Date: cand.Date, Start: cand.StartDT, End: cand.EndDT})
	}
	if len(spans) == 0 {
		return result, nil
	}

	colliding, err := s.reservationRepo.FindOverlapping(ctx, tx, roomID, spans, excludeReservationID)
	if err != nil {
		return result, err
	}

	for _, cand := range candidates {
		if !cand.IsValid() {
			continue
		}
		key := cand.Date.Format(dateKey)
		for _, other := range colliding {
			if !cand.Overlaps(&other) {
				continue
			}
			if other.Reservation != nil && other.Reservation.IsAccepted {
				result.Confirmed[key] = append(result.Confirmed[key], other)
			} else {
				result.Pending[key] = append(result.Pending[key], other)
			}
		}
	}
	return result, nil
}

// blockingStates resolves the caller-supplied pending-blockings policy into
// the states the blocking lookup should include.
func blockingStates(includePending bool) []models.BlockedRoomState {
	if includePending {
		return []models.BlockedRoomState{models.BlockingAccepted, models.BlockingPending}
	}
	return []models.BlockedRoomState{models.BlockingAccepted}
}

// PreviewConflicts classifies a prospective booking without persisting
// anything; it backs the UI conflict preview before submission.
func (s *reservationService) PreviewConflicts(ctx context.Context, roomID uint, data BookingData) (Classification, error) {
	spans, err := schedule.Expand(data.StartDT, data.EndDT, data.RepeatFrequency, data.RepeatInterval)
	if err != nil {
		return Classification{}, &ValidationError{Reason: err.Error()}
	}

	candidates := make([]models.ReservationOccurrence, len(spans))
	for i, span := range spans {
		candidates[i] = models.ReservationOccurrence{Date: span.Date, StartDT: span.Start, EndDT: span.End}
	}
	return s.classify(ctx, s.reservationRepo.GetDB(), roomID, candidates, nil)
}
