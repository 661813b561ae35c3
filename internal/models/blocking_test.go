package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestBlockingIsActiveAt(t *testing.T) {
	blocking := Blocking{StartDate: day(2026, 3, 10), EndDate: day(2026, 3, 20)}

	assert.False(t, blocking.IsActiveAt(day(2026, 3, 9)))
	assert.True(t, blocking.IsActiveAt(day(2026, 3, 10)))
	assert.True(t, blocking.IsActiveAt(day(2026, 3, 15)))
	assert.True(t, blocking.IsActiveAt(day(2026, 3, 20)))
	assert.False(t, blocking.IsActiveAt(day(2026, 3, 21)))
}

func TestBlockingCanBeOverridden(t *testing.T) {
	room := &Room{OwnerID: "owner"}
	blocking := Blocking{
		CreatedByID: "creator",
		AllowedIDs:  datatypes.JSON(`["vip"]`),
	}

	assert.True(t, blocking.CanBeOverridden(Actor{ID: "creator"}, room))
	assert.True(t, blocking.CanBeOverridden(Actor{ID: "owner"}, room))
	assert.True(t, blocking.CanBeOverridden(Actor{ID: "x", IsAdmin: true}, room))
	assert.True(t, blocking.CanBeOverridden(Actor{ID: "vip"}, room))
	assert.False(t, blocking.CanBeOverridden(Actor{ID: "someone"}, room))
}
