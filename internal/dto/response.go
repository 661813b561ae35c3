package dto

import (
	"time"

	"github.com/openrota/roombooking-service/internal/models"
)

type OccurrenceResponse struct {
	ID               uint      `json:"id"`
	Date             string    `json:"date"`
	StartDT          time.Time `json:"start_dt"`
	EndDT            time.Time `json:"end_dt"`
	IsValid          bool      `json:"is_valid"`
	IsCancelled      bool      `json:"is_cancelled"`
	IsRejected       bool      `json:"is_rejected"`
	RejectionReason  string    `json:"rejection_reason,omitempty"`
	NotificationSent bool      `json:"notification_sent"`
}

type ReservationResponse struct {
	ID              uint                 `json:"id"`
	RoomID          uint                 `json:"room_id"`
	StartDT         time.Time            `json:"start_dt"`
	EndDT           time.Time            `json:"end_dt"`
	RepeatFrequency int16                `json:"repeat_frequency"`
	RepeatInterval  int                  `json:"repeat_interval"`
	BookedForName   string               `json:"booked_for_name"`
	BookingReason   string               `json:"booking_reason"`
	IsAccepted      bool                 `json:"is_accepted"`
	IsCancelled     bool                 `json:"is_cancelled"`
	IsRejected      bool                 `json:"is_rejected"`
	IsPending       bool                 `json:"is_pending"`
	IsValid         bool                 `json:"is_valid"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Occurrences     []OccurrenceResponse `json:"occurrences,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToOccurrenceResponse(o *models.ReservationOccurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ID:               o.ID,
		Date:             o.Date.Format("2006-01-02"),
		StartDT:          o.StartDT,
		EndDT:            o.EndDT,
		IsValid:          o.IsValid(),
		IsCancelled:      o.IsCancelled,
		IsRejected:       o.IsRejected,
		RejectionReason:  o.RejectionReason,
		NotificationSent: o.NotificationSent,
	}
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:              r.ID,
		RoomID:          r.RoomID,
		StartDT:         r.StartDT,
		EndDT:           r.EndDT,
		RepeatFrequency: int16(r.RepeatFrequency),
		RepeatInterval:  r.RepeatInterval,
		BookedForName:   r.BookedForName,
		BookingReason:   r.BookingReason,
		IsAccepted:      r.IsAccepted,
		IsCancelled:     r.IsCancelled,
		IsRejected:      r.IsRejected,
		IsPending:       r.IsPending(),
		IsValid:         r.IsValid(),
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
	}
	for i := range r.Occurrences {
		resp.Occurrences = append(resp.Occurrences, ToOccurrenceResponse(&r.Occurrences[i]))
	}
	return resp
}
