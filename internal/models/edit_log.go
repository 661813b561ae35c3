package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ReservationEditLog records one lifecycle action or modification on a
// reservation. Info holds the human-readable lines describing the change.
type ReservationEditLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ReservationID uint           `gorm:"not null;index" json:"reservation_id"`
	UserName      string         `gorm:"not null" json:"user_name"`
	Info          datatypes.JSON `gorm:"not null" json:"info"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewEditLog builds a log entry from plain text lines.
func NewEditLog(reservationID uint, userName string, info []string) (ReservationEditLog, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return ReservationEditLog{}, err
	}
	return ReservationEditLog{
		ReservationID: reservationID,
		UserName:      userName,
		Info:          raw,
	}, nil
}

// InfoLines decodes the stored log lines.
func (l *ReservationEditLog) InfoLines() []string {
	var lines []string
	if err := json.Unmarshal(l.Info, &lines); err != nil {
		return nil
	}
	return lines
}
