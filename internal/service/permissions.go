package service

import "github.com/openrota/roombooking-service/internal/models"

// Pure capability predicates over (reservation, room, actor). The engine
// enforces them on every transition; callers may also use them to gate UI
// actions consistently. Authentication itself lives outside the engine.

func CanBeModified(r *models.Reservation, room *models.Room, actor models.Actor) bool {
	if r.IsRejected || r.IsCancelled {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	return r.IsOwnedBy(actor) || r.IsBookedFor(actor) || room.IsOwnedBy(actor)
}

func CanBeAccepted(room *models.Room, actor models.Actor) bool {
	return actor.IsAdmin || room.IsOwnedBy(actor)
}

func CanBeRejected(room *models.Room, actor models.Actor) bool {
	return actor.IsAdmin || room.IsOwnedBy(actor)
}

func CanBeCancelled(r *models.Reservation, actor models.Actor) bool {
	return actor.IsAdmin || r.IsOwnedBy(actor) || r.IsBookedFor(actor)
}

func CanBeDeleted(actor models.Actor) bool {
	return actor.IsAdmin
}
