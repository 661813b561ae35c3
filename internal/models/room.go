package models

import (
	"fmt"
	"time"
)

type Room struct {
	ID                           uint   `gorm:"primaryKey" json:"id"`
	Name                         string `gorm:"not null" json:"name"`
	IsActive                     bool   `gorm:"not null;default:true" json:"is_active"`
	IsReservable                 bool   `gorm:"not null;default:true" json:"is_reservable"`
	ReservationsNeedConfirmation bool   `gorm:"not null;default:false" json:"reservations_need_confirmation"`
	MaxAdvanceDays               int    `gorm:"not null;default:0" json:"max_advance_days"` // 0 = unlimited
	OwnerID                      string `gorm:"not null" json:"owner_id"`

	BookableHours      []BookableHours      `gorm:"foreignKey:RoomID" json:"bookable_hours,omitempty"`
	NonBookablePeriods []NonBookablePeriod  `gorm:"foreignKey:RoomID" json:"non_bookable_periods,omitempty"`
}

// BookableHours is one time-of-day window during which the room accepts
// bookings. Times are "HH:MM", windows are ordered and non-overlapping.
type BookableHours struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RoomID    uint   `gorm:"not null;index" json:"room_id"`
	StartTime string `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string `gorm:"type:varchar(5);not null" json:"end_time"`
}

// FitsPeriod reports whether [start,end] falls entirely inside this window.
func (bh BookableHours) FitsPeriod(start, end time.Time) bool {
	s := start.Format("15:04")
	e := end.Format("15:04")
	return bh.StartTime <= s && e <= bh.EndTime
}

type NonBookablePeriod struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	RoomID  uint      `gorm:"not null;index" json:"room_id"`
	StartDT time.Time `gorm:"not null" json:"start_dt"`
	EndDT   time.Time `gorm:"not null" json:"end_dt"`
}

// Overlaps uses half-open [start,end) semantics.
func (p NonBookablePeriod) Overlaps(start, end time.Time) bool {
	return p.StartDT.Before(end) && start.Before(p.EndDT)
}

func (r *Room) IsOwnedBy(actor Actor) bool {
	return r.OwnerID != "" && r.OwnerID == actor.ID
}

func (r *Room) canBeBooked(actor Actor, prebook bool) bool {
	if actor.IsAdmin || (r.IsOwnedBy(actor) && r.IsActive) {
		return true
	}
	return r.IsActive && r.IsReservable && (prebook || !r.ReservationsNeedConfirmation)
}

// CanBeBooked reports whether the actor may create a directly-confirmed
// booking. Rooms requiring confirmation only auto-accept for their owner or
// an admin.
func (r *Room) CanBeBooked(actor Actor) bool {
	return r.canBeBooked(actor, false)
}

// CanBePrebooked reports whether the actor may at least create a pending
// booking.
func (r *Room) CanBePrebooked(actor Actor) bool {
	return r.canBeBooked(actor, true)
}

// CheckAdvanceDays validates the booking horizon: the end date must lie
// within MaxAdvanceDays of today. Owners and admins are exempt.
func (r *Room) CheckAdvanceDays(endDate time.Time, actor Actor, now time.Time) error {
	if r.MaxAdvanceDays <= 0 {
		return nil
	}
	if actor.IsAdmin || r.IsOwnedBy(actor) {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, now.Location())
	advance := int(end.Sub(today).Hours() / 24)
	if advance >= r.MaxAdvanceDays {
		return fmt.Errorf("room cannot be booked more than %d days in advance", r.MaxAdvanceDays)
	}
	return nil
}

// CheckBookableHours validates that the booking's time-of-day span fits one
// of the room's bookable windows. A room without windows accepts any time.
// Owners and admins are exempt.
func (r *Room) CheckBookableHours(start, end time.Time, actor Actor) bool {
	if actor.IsAdmin || r.IsOwnedBy(actor) {
		return true
	}
	if len(r.BookableHours) == 0 {
		return true
	}
	for _, bh := range r.BookableHours {
		if bh.FitsPeriod(start, end) {
			return true
		}
	}
	return false
}
