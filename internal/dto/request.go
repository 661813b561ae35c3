package dto

import (
	"time"

	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/internal/service"
)

// ActingUser identifies the user performing the request. Authentication is
// handled upstream; the engine only needs the capability set.
type ActingUser struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	IsAdmin   bool   `json:"is_admin"`
}

func (u ActingUser) Actor() models.Actor {
	return models.Actor{ID: u.UserID, Name: u.UserName, Email: u.UserEmail, IsAdmin: u.IsAdmin}
}

type BookingPayload struct {
	StartDT         time.Time `json:"start_dt"`
	EndDT           time.Time `json:"end_dt"`
	RepeatFrequency int16     `json:"repeat_frequency"`
	RepeatInterval  int       `json:"repeat_interval"`
	BookedForID     string    `json:"booked_for_id"`
	BookedForName   string    `json:"booked_for_name"`
	ContactEmail    string    `json:"contact_email"`
	ContactPhone    string    `json:"contact_phone"`
	BookingReason   string    `json:"booking_reason"`
}

func (p BookingPayload) Data() service.BookingData {
	return service.BookingData{
		StartDT:         p.StartDT,
		EndDT:           p.EndDT,
		RepeatFrequency: models.RepeatFrequency(p.RepeatFrequency),
		RepeatInterval:  p.RepeatInterval,
		BookedForID:     p.BookedForID,
		BookedForName:   p.BookedForName,
		ContactEmail:    p.ContactEmail,
		ContactPhone:    p.ContactPhone,
		BookingReason:   p.BookingReason,
	}
}

type CreateReservationRequest struct {
	ActingUser
	BookingPayload
	Prebook *bool `json:"prebook,omitempty"`
}

type ModifyReservationRequest struct {
	ActingUser
	BookingPayload
}

type TransitionRequest struct {
	ActingUser
	Reason string `json:"reason,omitempty"`
}

type PreviewConflictsRequest struct {
	StartDT         time.Time `json:"start_dt"`
	EndDT           time.Time `json:"end_dt"`
	RepeatFrequency int16     `json:"repeat_frequency"`
	RepeatInterval  int       `json:"repeat_interval"`
}
