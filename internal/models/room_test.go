package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookableHoursFitsPeriod(t *testing.T) {
	window := BookableHours{StartTime: "08:00", EndTime: "18:00"}

	assert.True(t, window.FitsPeriod(ts(9, 0), ts(11, 0)))
	assert.True(t, window.FitsPeriod(ts(8, 0), ts(18, 0)))
	assert.False(t, window.FitsPeriod(ts(7, 30), ts(9, 0)))
	assert.False(t, window.FitsPeriod(ts(17, 0), ts(18, 30)))
}

func TestCheckBookableHours(t *testing.T) {
	room := Room{
		OwnerID: "owner",
		BookableHours: []BookableHours{
			{StartTime: "08:00", EndTime: "12:00"},
			{StartTime: "13:00", EndTime: "18:00"},
		},
	}

	assert.True(t, room.CheckBookableHours(ts(9, 0), ts(11, 0), Actor{ID: "u1"}))
	assert.True(t, room.CheckBookableHours(ts(14, 0), ts(17, 0), Actor{ID: "u1"}))
	assert.False(t, room.CheckBookableHours(ts(11, 0), ts(14, 0), Actor{ID: "u1"}))
	// owner and admin bypass the windows
	assert.True(t, room.CheckBookableHours(ts(6, 0), ts(7, 0), Actor{ID: "owner"}))
	assert.True(t, room.CheckBookableHours(ts(6, 0), ts(7, 0), Actor{ID: "u1", IsAdmin: true}))
}

func TestCheckBookableHours_NoWindowsMeansAnyTime(t *testing.T) {
	room := Room{}
	assert.True(t, room.CheckBookableHours(ts(3, 0), ts(4, 0), Actor{ID: "u1"}))
}

func TestCheckAdvanceDays(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	room := Room{MaxAdvanceDays: 30, OwnerID: "owner"}

	assert.NoError(t, room.CheckAdvanceDays(now.AddDate(0, 0, 10), Actor{ID: "u1"}, now))
	assert.Error(t, room.CheckAdvanceDays(now.AddDate(0, 0, 45), Actor{ID: "u1"}, now))
	// exactly at the limit is already too far
	assert.Error(t, room.CheckAdvanceDays(now.AddDate(0, 0, 30), Actor{ID: "u1"}, now))
	// owner and admin are exempt
	assert.NoError(t, room.CheckAdvanceDays(now.AddDate(0, 0, 45), Actor{ID: "owner"}, now))
	assert.NoError(t, room.CheckAdvanceDays(now.AddDate(0, 0, 45), Actor{ID: "u1", IsAdmin: true}, now))
	// unlimited
	assert.NoError(t, (&Room{}).CheckAdvanceDays(now.AddDate(1, 0, 0), Actor{ID: "u1"}, now))
}

func TestRoomBookingCapabilities(t *testing.T) {
	public := Room{IsActive: true, IsReservable: true, OwnerID: "owner"}
	assert.True(t, public.CanBeBooked(Actor{ID: "u1"}))

	confirmed := Room{IsActive: true, IsReservable: true, ReservationsNeedConfirmation: true, OwnerID: "owner"}
	assert.False(t, confirmed.CanBeBooked(Actor{ID: "u1"}))
	assert.True(t, confirmed.CanBePrebooked(Actor{ID: "u1"}))
	assert.True(t, confirmed.CanBeBooked(Actor{ID: "owner"}))
	assert.True(t, confirmed.CanBeBooked(Actor{ID: "u1", IsAdmin: true}))

	inactive := Room{IsReservable: true, OwnerID: "owner"}
	assert.False(t, inactive.CanBeBooked(Actor{ID: "u1"}))
	assert.False(t, inactive.CanBePrebooked(Actor{ID: "u1"}))
	assert.False(t, inactive.CanBeBooked(Actor{ID: "owner"}))
}

func TestNonBookablePeriodOverlaps(t *testing.T) {
	period := NonBookablePeriod{StartDT: ts(10, 0), EndDT: ts(12, 0)}
	assert.True(t, period.Overlaps(ts(11, 0), ts(13, 0)))
	assert.False(t, period.Overlaps(ts(12, 0), ts(13, 0)))
	assert.False(t, period.Overlaps(ts(8, 0), ts(10, 0)))
}
