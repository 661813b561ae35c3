package service

import (
	"context"
	"sort"
	"time"

	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/internal/schedule"
	"gorm.io/gorm"
)

// fakeStore backs the repository fakes with plain maps. Transaction takes a
// snapshot and restores it when the closure fails, so rollback behaviour is
// observable from tests.
type fakeStore struct {
	rooms        map[uint]models.Room
	reservations map[uint]models.Reservation
	occurrences  map[uint]models.ReservationOccurrence
	editLogs     []models.ReservationEditLog
	blockings    map[uint]models.Blocking
	blockedRooms []models.BlockedRoom
	nonBookable  []models.NonBookablePeriod

	nextReservationID uint
	nextOccurrenceID  uint
	nextEditLogID     uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        make(map[uint]models.Room),
		reservations: make(map[uint]models.Reservation),
		occurrences:  make(map[uint]models.ReservationOccurrence),
		blockings:    make(map[uint]models.Blocking),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for id, room := range s.rooms {
		c.rooms[id] = room
	}
	for id, res := range s.reservations {
		c.reservations[id] = res
	}
	for id, occ := range s.occurrences {
		c.occurrences[id] = occ
	}
	for id, b := range s.blockings {
		c.blockings[id] = b
	}
	c.editLogs = append([]models.ReservationEditLog(nil), s.editLogs...)
	c.blockedRooms = append([]models.BlockedRoom(nil), s.blockedRooms...)
	c.nonBookable = append([]models.NonBookablePeriod(nil), s.nonBookable...)
	c.nextReservationID = s.nextReservationID
	c.nextOccurrenceID = s.nextOccurrenceID
	c.nextEditLogID = s.nextEditLogID
	return c
}

func (s *fakeStore) occurrencesOf(reservationID uint) []models.ReservationOccurrence {
	var out []models.ReservationOccurrence
	for _, occ := range s.occurrences {
		if occ.ReservationID == reservationID {
			out = append(out, occ)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDT.Equal(out[j].StartDT) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDT.Before(out[j].StartDT)
	})
	return out
}

func (s *fakeStore) logsFor(reservationID uint) []models.ReservationEditLog {
	var out []models.ReservationEditLog
	for _, entry := range s.editLogs {
		if entry.ReservationID == reservationID {
			out = append(out, entry)
		}
	}
	return out
}

type fakeReservationRepo struct {
	store *fakeStore
}

func (f *fakeReservationRepo) GetDB() *gorm.DB { return nil }

func (f *fakeReservationRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := f.store.clone()
	if err := fn(nil); err != nil {
		*f.store = *snapshot
		return err
	}
	return nil
}

func (f *fakeReservationRepo) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	f.store.nextReservationID++
	reservation.ID = f.store.nextReservationID
	stored := *reservation
	stored.Room = nil
	stored.Occurrences = nil
	stored.EditLogs = nil
	f.store.reservations[reservation.ID] = stored
	return nil
}

func (f *fakeReservationRepo) Save(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	stored := *reservation
	stored.Room = nil
	stored.Occurrences = nil
	stored.EditLogs = nil
	f.store.reservations[reservation.ID] = stored
	return nil
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	return f.find(id)
}

func (f *fakeReservationRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	return f.find(id)
}

func (f *fakeReservationRepo) find(id uint) (*models.Reservation, error) {
	stored, ok := f.store.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	res := stored
	res.Occurrences = f.store.occurrencesOf(id)
	return &res, nil
}

func (f *fakeReservationRepo) CreateOccurrences(ctx context.Context, tx *gorm.DB, occurrences []models.ReservationOccurrence) error {
	for i := range occurrences {
		f.store.nextOccurrenceID++
		occurrences[i].ID = f.store.nextOccurrenceID
		stored := occurrences[i]
		stored.Reservation = nil
		f.store.occurrences[stored.ID] = stored
	}
	return nil
}

func (f *fakeReservationRepo) SaveOccurrence(ctx context.Context, tx *gorm.DB, occurrence *models.ReservationOccurrence) error {
	stored := *occurrence
	stored.Reservation = nil
	f.store.occurrences[stored.ID] = stored
	return nil
}

func (f *fakeReservationRepo) DeleteOccurrences(ctx context.Context, tx *gorm.DB, reservationID uint) error {
	for id, occ := range f.store.occurrences {
		if occ.ReservationID == reservationID {
			delete(f.store.occurrences, id)
		}
	}
	return nil
}

func (f *fakeReservationRepo) FindOccurrences(ctx context.Context, tx *gorm.DB, reservationID uint) ([]models.ReservationOccurrence, error) {
	return f.store.occurrencesOf(reservationID), nil
}

func (f *fakeReservationRepo) FindOverlapping(ctx context.Context, tx *gorm.DB, roomID uint, spans []schedule.Span, excludeReservationID *uint) ([]models.ReservationOccurrence, error) {
	var out []models.ReservationOccurrence
	for _, occ := range f.store.occurrences {
		if !occ.IsValid() {
			continue
		}
		if excludeReservationID != nil && occ.ReservationID == *excludeReservationID {
			continue
		}
		parent, ok := f.store.reservations[occ.ReservationID]
		if !ok || parent.RoomID != roomID {
			continue
		}
		matched := false
		for _, span := range spans {
			if occ.StartDT.Before(span.End) && span.Start.Before(occ.EndDT) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		hit := occ
		res := parent
		hit.Reservation = &res
		out = append(out, hit)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDT.Equal(out[j].StartDT) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDT.Before(out[j].StartDT)
	})
	return out, nil
}

func (f *fakeReservationRepo) AddEditLog(ctx context.Context, tx *gorm.DB, entry *models.ReservationEditLog) error {
	f.store.nextEditLogID++
	entry.ID = f.store.nextEditLogID
	f.store.editLogs = append(f.store.editLogs, *entry)
	return nil
}

func (f *fakeReservationRepo) Delete(ctx context.Context, tx *gorm.DB, reservationID uint) error {
	delete(f.store.reservations, reservationID)
	for id, occ := range f.store.occurrences {
		if occ.ReservationID == reservationID {
			delete(f.store.occurrences, id)
		}
	}
	kept := f.store.editLogs[:0]
	for _, entry := range f.store.editLogs {
		if entry.ReservationID != reservationID {
			kept = append(kept, entry)
		}
	}
	f.store.editLogs = kept
	return nil
}

type fakeRoomRepo struct {
	store *fakeStore
}

func (f *fakeRoomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	return f.find(id)
}

func (f *fakeRoomRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	return f.find(id)
}

func (f *fakeRoomRepo) find(id uint) (*models.Room, error) {
	stored, ok := f.store.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	room := stored
	room.NonBookablePeriods = nil
	for _, p := range f.store.nonBookable {
		if p.RoomID == id {
			room.NonBookablePeriods = append(room.NonBookablePeriods, p)
		}
	}
	return &room, nil
}

func (f *fakeRoomRepo) NonBookablePeriods(ctx context.Context, tx *gorm.DB, roomID uint, after time.Time) ([]models.NonBookablePeriod, error) {
	var out []models.NonBookablePeriod
	for _, p := range f.store.nonBookable {
		if p.RoomID == roomID && p.EndDT.After(after) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeBlockingRepo struct {
	store *fakeStore
}

func (f *fakeBlockingRepo) FindCovering(ctx context.Context, tx *gorm.DB, roomID uint, minDate, maxDate time.Time, states []models.BlockedRoomState) ([]models.BlockedRoom, error) {
	var out []models.BlockedRoom
	for _, br := range f.store.blockedRooms {
		if br.RoomID != roomID {
			continue
		}
		stateOK := false
		for _, state := range states {
			if br.State == state {
				stateOK = true
				break
			}
		}
		if !stateOK {
			continue
		}
		blocking, ok := f.store.blockings[br.BlockingID]
		if !ok || blocking.StartDate.After(maxDate) || blocking.EndDate.Before(minDate) {
			continue
		}
		hit := br
		b := blocking
		hit.Blocking = &b
		out = append(out, hit)
	}
	return out, nil
}

type fakeNotifier struct {
	created   []uint
	accepted  []uint
	cancelled []string
	rejected  []string
	modified  [][]string

	occurrenceRejections []string
}

func (n *fakeNotifier) ReservationCreated(r *models.Reservation)  { n.created = append(n.created, r.ID) }
func (n *fakeNotifier) ReservationAccepted(r *models.Reservation) { n.accepted = append(n.accepted, r.ID) }

func (n *fakeNotifier) ReservationCancelled(r *models.Reservation, reason string) {
	n.cancelled = append(n.cancelled, reason)
}

func (n *fakeNotifier) ReservationRejected(r *models.Reservation, reason string) {
	n.rejected = append(n.rejected, reason)
}

func (n *fakeNotifier) ReservationModified(r *models.Reservation, changes []string) {
	n.modified = append(n.modified, changes)
}

func (n *fakeNotifier) OccurrenceRejected(o *models.ReservationOccurrence, reason string) {
	n.occurrenceRejections = append(n.occurrenceRejections, reason)
}

type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier
	svc      ReservationService
}

// newFixture wires the service against the in-memory fakes with a frozen
// clock (2026-03-01 12:00 UTC).
func newFixture(includePendingBlockings bool) *fixture {
	store := newFakeStore()
	n := &fakeNotifier{}
	svc := NewReservationService(
		&fakeReservationRepo{store: store},
		&fakeRoomRepo{store: store},
		&fakeBlockingRepo{store: store},
		n,
		includePendingBlockings,
	)
	svc.(*reservationService).now = func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	return &fixture{store: store, notifier: n, svc: svc}
}

func (f *fixture) addRoom(room models.Room) models.Room {
	if room.ID == 0 {
		room.ID = uint(len(f.store.rooms) + 1)
	}
	f.store.rooms[room.ID] = room
	return room
}

// seedReservation inserts a single-occurrence reservation directly, bypassing
// the service, for use as pre-existing state in conflict scenarios.
func (f *fixture) seedReservation(roomID uint, accepted bool, start, end time.Time) *models.Reservation {
	f.store.nextReservationID++
	res := models.Reservation{
		ID:            f.store.nextReservationID,
		RoomID:        roomID,
		StartDT:       start,
		EndDT:         end,
		BookedForName: "Seed User",
		ContactEmail:  "seed@example.com",
		BookingReason: "seeded",
		IsAccepted:    accepted,
	}
	f.store.reservations[res.ID] = res

	f.store.nextOccurrenceID++
	occ := models.ReservationOccurrence{
		ID:            f.store.nextOccurrenceID,
		ReservationID: res.ID,
		Date:          time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		StartDT:       start,
		EndDT:         end,
	}
	f.store.occurrences[occ.ID] = occ
	return &res
}

func (f *fixture) addBlocking(roomID uint, state models.BlockedRoomState, startDate, endDate time.Time, reason, createdBy string) {
	id := uint(len(f.store.blockings) + 1)
	f.store.blockings[id] = models.Blocking{
		ID:          id,
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      reason,
		CreatedByID: createdBy,
	}
	f.store.blockedRooms = append(f.store.blockedRooms, models.BlockedRoom{
		ID:         uint(len(f.store.blockedRooms) + 1),
		BlockingID: id,
		RoomID:     roomID,
		State:      state,
	})
}

func dt(day, hour, min int) time.Time {
	return time.Date(2026, time.March, day, hour, min, 0, 0, time.UTC)
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}
