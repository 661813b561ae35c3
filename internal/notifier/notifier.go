// Package notifier delivers reservation lifecycle notifications over the
// message broker. Delivery is best-effort: failures are logged and never
// propagated into the state transition that triggered them.
package notifier

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/pkg/rabbitmq"
)

type Notifier interface {
	ReservationCreated(r *models.Reservation)
	ReservationAccepted(r *models.Reservation)
	ReservationCancelled(r *models.Reservation, reason string)
	ReservationRejected(r *models.Reservation, reason string)
	ReservationModified(r *models.Reservation, changes []string)
	OccurrenceRejected(o *models.ReservationOccurrence, reason string)
}

type reservationEvent struct {
	MessageID       string    `json:"message_id"`
	ReservationID   uint      `json:"reservation_id"`
	RoomID          uint      `json:"room_id"`
	BookedForName   string    `json:"booked_for_name"`
	ContactEmail    string    `json:"contact_email"`
	StartDT         time.Time `json:"start_dt"`
	EndDT           time.Time `json:"end_dt"`
	IsAccepted      bool      `json:"is_accepted"`
	Reason          string    `json:"reason,omitempty"`
	Changes         []string  `json:"changes,omitempty"`
	OccurrenceDate  string    `json:"occurrence_date,omitempty"`
	OccurrenceStart time.Time `json:"occurrence_start,omitzero"`
}

type amqpNotifier struct {
	publisher *rabbitmq.Publisher
}

// NewAMQPNotifier wraps the RabbitMQ publisher. A nil publisher yields a
// notifier that only logs, which is what tests and local runs use.
func NewAMQPNotifier(publisher *rabbitmq.Publisher) Notifier {
	return &amqpNotifier{publisher: publisher}
}

func (n *amqpNotifier) publish(routingKey string, event reservationEvent) {
	event.MessageID = uuid.NewString()
	if n.publisher == nil {
		log.Printf("[Notifier] %s reservation=%d (no broker configured)", routingKey, event.ReservationID)
		return
	}
	if err := n.publisher.Publish(routingKey, event); err != nil {
		log.Printf("[Notifier] failed to publish %s for reservation %d: %v", routingKey, event.ReservationID, err)
	}
}

func fromReservation(r *models.Reservation) reservationEvent {
	return reservationEvent{
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		BookedForName: r.BookedForName,
		ContactEmail:  r.ContactEmail,
		StartDT:       r.StartDT,
		EndDT:         r.EndDT,
		IsAccepted:    r.IsAccepted,
	}
}

func (n *amqpNotifier) ReservationCreated(r *models.Reservation) {
	n.publish("reservation.created", fromReservation(r))
}

func (n *amqpNotifier) ReservationAccepted(r *models.Reservation) {
	n.publish("reservation.accepted", fromReservation(r))
}

func (n *amqpNotifier) ReservationCancelled(r *models.Reservation, reason string) {
	event := fromReservation(r)
	event.Reason = reason
	n.publish("reservation.cancelled", event)
}

func (n *amqpNotifier) ReservationRejected(r *models.Reservation, reason string) {
	event := fromReservation(r)
	event.Reason = reason
	n.publish("reservation.rejected", event)
}

func (n *amqpNotifier) ReservationModified(r *models.Reservation, changes []string) {
	event := fromReservation(r)
	event.Changes = changes
	n.publish("reservation.modified", event)
}

func (n *amqpNotifier) OccurrenceRejected(o *models.ReservationOccurrence, reason string) {
	event := reservationEvent{
		ReservationID:   o.ReservationID,
		Reason:          reason,
		OccurrenceDate:  o.Date.Format("2006-01-02"),
		OccurrenceStart: o.StartDT,
	}
	n.publish("reservation.occurrence_rejected", event)
}
