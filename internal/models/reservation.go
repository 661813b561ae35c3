package models

import (
	"fmt"
	"strings"
	"time"
)

type RepeatFrequency int16

const (
	RepeatNever RepeatFrequency = iota
	RepeatDay
	RepeatWeek
	RepeatMonth
	RepeatYear
)

// Repetition is the (frequency, interval) pair describing how a reservation
// repeats across dates.
type Repetition struct {
	Frequency RepeatFrequency
	Interval  int
}

var repetitionLabels = map[Repetition]string{
	{RepeatNever, 0}: "Single reservation",
	{RepeatDay, 1}:   "Repeat daily",
	{RepeatWeek, 1}:  "Repeat once a week",
	{RepeatWeek, 2}:  "Repeat once every two weeks",
	{RepeatWeek, 3}:  "Repeat once every three weeks",
	{RepeatMonth, 1}: "Repeat every month",
}

func (f RepeatFrequency) unit() string {
	switch f {
	case RepeatDay:
		return "day"
	case RepeatWeek:
		return "week"
	case RepeatMonth:
		return "month"
	case RepeatYear:
		return "year"
	default:
		return "never"
	}
}

// Label returns the human-readable description used in edit logs.
func (rep Repetition) Label() string {
	if label, ok := repetitionLabels[rep]; ok {
		return label
	}
	return fmt.Sprintf("Repeat every %d %ss", rep.Interval, rep.Frequency.unit())
}

type Reservation struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	RoomID          uint            `gorm:"not null;index" json:"room_id"`
	CreatedAt       time.Time       `json:"created_at"`
	StartDT         time.Time       `gorm:"not null;index" json:"start_dt"`
	EndDT           time.Time       `gorm:"not null;index" json:"end_dt"`
	RepeatFrequency RepeatFrequency `gorm:"type:smallint;not null;default:0" json:"repeat_frequency"`
	RepeatInterval  int             `gorm:"type:smallint;not null;default:0" json:"repeat_interval"`
	BookedForID     string          `json:"booked_for_id"`
	BookedForName   string          `gorm:"not null" json:"booked_for_name"`
	CreatedByID     string          `json:"created_by_id"`
	ContactEmail    string          `gorm:"not null" json:"contact_email"`
	ContactPhone    string          `json:"contact_phone"`
	BookingReason   string          `gorm:"type:text;not null" json:"booking_reason"`
	IsAccepted      bool            `gorm:"not null" json:"is_accepted"`
	IsCancelled     bool            `gorm:"not null;default:false" json:"is_cancelled"`
	IsRejected      bool            `gorm:"not null;default:false" json:"is_rejected"`
	RejectionReason string          `json:"rejection_reason,omitempty"`

	Room        *Room                   `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Occurrences []ReservationOccurrence `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"occurrences,omitempty"`
	EditLogs    []ReservationEditLog    `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"edit_logs,omitempty"`
}

// IsValid means accepted and neither rejected nor cancelled.
func (r *Reservation) IsValid() bool {
	return r.IsAccepted && !r.IsRejected && !r.IsCancelled
}

// IsPending means no state flag has been set yet.
func (r *Reservation) IsPending() bool {
	return !r.IsAccepted && !r.IsRejected && !r.IsCancelled
}

func (r *Reservation) IsRepeating() bool {
	return r.RepeatFrequency != RepeatNever
}

func (r *Reservation) IsArchived(now time.Time) bool {
	return r.EndDT.Before(now)
}

func (r *Reservation) Repetition() Repetition {
	return Repetition{Frequency: r.RepeatFrequency, Interval: r.RepeatInterval}
}

// ValidOccurrences filters the loaded occurrence set.
func (r *Reservation) ValidOccurrences() []ReservationOccurrence {
	var valid []ReservationOccurrence
	for _, occ := range r.Occurrences {
		if occ.IsValid() {
			valid = append(valid, occ)
		}
	}
	return valid
}

func (r *Reservation) StatusString(now time.Time) string {
	var parts []string
	if r.IsValid() {
		parts = append(parts, "Valid")
	} else {
		if r.IsCancelled {
			parts = append(parts, "Cancelled")
		}
		if r.IsRejected {
			parts = append(parts, "Rejected")
		}
		if !r.IsAccepted {
			parts = append(parts, "Not confirmed")
		}
	}
	if r.IsArchived(now) {
		parts = append(parts, "Archived")
	} else {
		parts = append(parts, "Live")
	}
	return strings.Join(parts, ", ")
}

func (r *Reservation) IsOwnedBy(actor Actor) bool {
	return r.CreatedByID != "" && r.CreatedByID == actor.ID
}

func (r *Reservation) IsBookedFor(actor Actor) bool {
	if r.BookedForID != "" && r.BookedForID == actor.ID {
		return true
	}
	return actor.Email != "" && strings.Contains(r.ContactEmail, actor.Email)
}
