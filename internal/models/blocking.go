package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type BlockedRoomState int16

const (
	BlockingPending BlockedRoomState = iota
	BlockingAccepted
	BlockingRejected
)

// Blocking is an administrative hold covering a date range. It is attached to
// rooms through BlockedRoom rows, each carrying a per-room approval state.
type Blocking struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	StartDate   time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time      `gorm:"type:date;not null" json:"end_date"`
	Reason      string         `gorm:"type:text;not null" json:"reason"`
	CreatedByID string         `gorm:"not null" json:"created_by_id"`
	AllowedIDs  datatypes.JSON `json:"allowed_ids,omitempty"` // principal IDs that may book through the blocking

	BlockedRooms []BlockedRoom `gorm:"foreignKey:BlockingID;constraint:OnDelete:CASCADE" json:"blocked_rooms,omitempty"`
}

type BlockedRoom struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	BlockingID uint             `gorm:"not null;index" json:"blocking_id"`
	RoomID     uint             `gorm:"not null;index" json:"room_id"`
	State      BlockedRoomState `gorm:"type:smallint;not null;default:0" json:"state"`
	RejectedBy string           `json:"rejected_by,omitempty"`

	Blocking *Blocking `gorm:"foreignKey:BlockingID" json:"blocking,omitempty"`
}

// IsActiveAt reports whether the blocking covers the given calendar date.
func (b *Blocking) IsActiveAt(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(b.StartDate.Year(), b.StartDate.Month(), b.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(b.EndDate.Year(), b.EndDate.Month(), b.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}

// CanBeOverridden reports whether the actor may book the room despite the
// blocking: its creator, an admin, the room owner, or an allowed principal.
func (b *Blocking) CanBeOverridden(actor Actor, room *Room) bool {
	if actor.IsAdmin || b.CreatedByID == actor.ID {
		return true
	}
	if room != nil && room.IsOwnedBy(actor) {
		return true
	}
	var allowed []string
	if len(b.AllowedIDs) > 0 {
		if err := json.Unmarshal(b.AllowedIDs, &allowed); err != nil {
			return false
		}
	}
	for _, id := range allowed {
		if id == actor.ID {
			return true
		}
	}
	return false
}
