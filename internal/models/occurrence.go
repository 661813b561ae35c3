package models

import "time"

// ReservationOccurrence is one concrete calendar instance (a single day) of a
// reservation. Its validity flags are independent from the parent's: a
// pending reservation's occurrences are provisionally valid until the
// reservation is accepted or rejected.
type ReservationOccurrence struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ReservationID    uint      `gorm:"not null;index" json:"reservation_id"`
	Date             time.Time `gorm:"type:date;not null;index" json:"date"`
	StartDT          time.Time `gorm:"not null;index" json:"start_dt"`
	EndDT            time.Time `gorm:"not null;index" json:"end_dt"`
	IsCancelled      bool      `gorm:"not null;default:false" json:"is_cancelled"`
	IsRejected       bool      `gorm:"not null;default:false" json:"is_rejected"`
	RejectionReason  string    `json:"rejection_reason,omitempty"`
	NotificationSent bool      `gorm:"not null;default:false" json:"notification_sent"`

	Reservation *Reservation `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
}

func (o *ReservationOccurrence) IsValid() bool {
	return !o.IsCancelled && !o.IsRejected
}

// Overlaps uses half-open [start,end) semantics: an occurrence ending at T
// and one starting at T do not overlap.
func (o *ReservationOccurrence) Overlaps(other *ReservationOccurrence) bool {
	return o.StartDT.Before(other.EndDT) && other.StartDT.Before(o.EndDT)
}

// OverlapsSpan checks the occurrence against a raw [start,end) interval.
func (o *ReservationOccurrence) OverlapsSpan(start, end time.Time) bool {
	return o.StartDT.Before(end) && start.Before(o.EndDT)
}
