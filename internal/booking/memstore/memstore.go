// Package memstore is an in-memory booking.Repository. Transactions run under
// a single mutex against a copy of the state that replaces the original only
// on success. It applies the same room-overlap guard and active-enrollment
// uniqueness as the Postgres schema.
package memstore

import (
	"context"
	"sort"
	"sync"

	"fitclub/internal/apperrors"
	"fitclub/internal/availability"
	"fitclub/internal/booking"
	"fitclub/internal/calendar"
	"fitclub/internal/db"

	"github.com/pkg/errors"
)

type state struct {
	nextID      int
	rooms       map[int]booking.RoomInfo
	trainers    map[int]string
	members     map[int]booking.Contact
	classes     map[int]booking.GroupClass
	sessions    map[int]booking.PTSession
	enrollments map[int]booking.Enrollment
}

func newState() *state {
	return &state{
		rooms:       map[int]booking.RoomInfo{},
		trainers:    map[int]string{},
		members:     map[int]booking.Contact{},
		classes:     map[int]booking.GroupClass{},
		sessions:    map[int]booking.PTSession{},
		enrollments: map[int]booking.Enrollment{},
	}
}

func (st *state) clone() *state {
	c := &state{
		nextID:      st.nextID,
		rooms:       make(map[int]booking.RoomInfo, len(st.rooms)),
		trainers:    make(map[int]string, len(st.trainers)),
		members:     make(map[int]booking.Contact, len(st.members)),
		classes:     make(map[int]booking.GroupClass, len(st.classes)),
		sessions:    make(map[int]booking.PTSession, len(st.sessions)),
		enrollments: make(map[int]booking.Enrollment, len(st.enrollments)),
	}
	for k, v := range st.rooms {
		c.rooms[k] = v
	}
	for k, v := range st.trainers {
		c.trainers[k] = v
	}
	for k, v := range st.members {
		c.members[k] = v
	}
	for k, v := range st.classes {
		c.classes[k] = v
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.enrollments {
		c.enrollments[k] = v
	}
	return c
}

func (st *state) id() int {
	st.nextID++
	return st.nextID
}

type Store struct {
	mu *sync.Mutex
	st *state
	tx bool
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

func (s *Store) lock() func() {
	if s.tx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) AddRoom(name string, capacity int) int {
	defer s.lock()()
	id := s.st.id()
	s.st.rooms[id] = booking.RoomInfo{ID: id, Name: name, Capacity: capacity}
	return id
}

func (s *Store) AddTrainer(name string) int {
	defer s.lock()()
	id := s.st.id()
	s.st.trainers[id] = name
	return id
}

func (s *Store) AddMember(name, email string) int {
	defer s.lock()()
	id := s.st.id()
	s.st.members[id] = booking.Contact{MemberID: id, Name: name, Email: email}
	return id
}

// Classes returns every class ordered by id.
func (s *Store) Classes() []booking.GroupClass {
	defer s.lock()()
	out := make([]booking.GroupClass, 0, len(s.st.classes))
	for _, c := range s.st.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sessions returns every PT session ordered by id.
func (s *Store) Sessions() []booking.PTSession {
	defer s.lock()()
	out := make([]booking.PTSession, 0, len(s.st.sessions))
	for _, ps := range s.st.sessions {
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx booking.Repository) error) error {
	if s.tx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.Storage("transaction aborted", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: working, tx: true}); err != nil {
		return err
	}
	s.st = working
	return nil
}

func (s *Store) LockSchedule(context.Context, int, int, calendar.Date) error {
	return nil
}

func (s *Store) GetRoom(_ context.Context, id int) (*booking.RoomInfo, error) {
	defer s.lock()()
	room, ok := s.st.rooms[id]
	if !ok {
		return nil, errors.Wrap(db.ErrNotFound, "get room")
	}
	return &room, nil
}

func (s *Store) TrainerExists(_ context.Context, id int) (bool, error) {
	defer s.lock()()
	_, ok := s.st.trainers[id]
	return ok, nil
}

func (s *Store) MemberExists(_ context.Context, id int) (bool, error) {
	defer s.lock()()
	_, ok := s.st.members[id]
	return ok, nil
}

func matches(res availability.Resource, roomID, trainerID int) bool {
	switch res.Kind {
	case availability.ResourceRoom:
		return roomID == res.ID
	case availability.ResourceTrainer:
		return trainerID == res.ID
	default:
		return false
	}
}

func sortOccupancy(out []availability.Occupancy) {
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Interval.Start.Compare(out[j].Interval.Start); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
}

func (s *Store) ClassOccupancy(_ context.Context, res availability.Resource, date calendar.Date) ([]availability.Occupancy, error) {
	defer s.lock()()
	var out []availability.Occupancy
	for _, c := range s.st.classes {
		if c.ScheduledDate == date && matches(res, c.RoomID, c.TrainerID) {
			out = append(out, availability.Occupancy{Kind: availability.KindClass, ID: c.ID, Interval: c.Slot(), Active: true})
		}
	}
	sortOccupancy(out)
	return out, nil
}

func (s *Store) SessionOccupancy(_ context.Context, res availability.Resource, date calendar.Date) ([]availability.Occupancy, error) {
	defer s.lock()()
	var out []availability.Occupancy
	for _, ps := range s.st.sessions {
		if ps.ScheduledDate == date && matches(res, ps.RoomID, ps.TrainerID) {
			out = append(out, availability.Occupancy{Kind: availability.KindSession, ID: ps.ID, Interval: ps.Slot(), Active: ps.Status.Active()})
		}
	}
	sortOccupancy(out)
	return out, nil
}

// roomGuard rejects a write that would overlap an active booking in the same
// room, skipping the row being written.
func (st *state) roomGuard(roomID int, date calendar.Date, slot availability.Interval, selfClass, selfSession int) error {
	for _, ps := range st.sessions {
		if ps.ID == selfSession || !ps.Status.Active() {
			continue
		}
		if ps.RoomID == roomID && ps.ScheduledDate == date && availability.Overlaps(ps.Slot(), slot) {
			return apperrors.Storage("Room already booked for a PT session at this time", nil)
		}
	}
	for _, c := range st.classes {
		if c.ID == selfClass {
			continue
		}
		if c.RoomID == roomID && c.ScheduledDate == date && availability.Overlaps(c.Slot(), slot) {
			return apperrors.Storage("Room already booked for a group class at this time", nil)
		}
	}
	return nil
}

func (st *state) references(roomID, trainerID int) error {
	if _, ok := st.rooms[roomID]; !ok {
		return apperrors.Validation("referenced record does not exist")
	}
	if _, ok := st.trainers[trainerID]; !ok {
		return apperrors.Validation("referenced record does not exist")
	}
	return nil
}

func (s *Store) CreateGroupClass(_ context.Context, class *booking.GroupClass) error {
	defer s.lock()()
	if err := s.st.references(class.RoomID, class.TrainerID); err != nil {
		return err
	}
	if err := s.st.roomGuard(class.RoomID, class.ScheduledDate, class.Slot(), 0, 0); err != nil {
		return err
	}
	class.ID = s.st.id()
	s.st.classes[class.ID] = *class
	return nil
}

func (s *Store) GetGroupClass(_ context.Context, id int) (*booking.GroupClass, error) {
	defer s.lock()()
	c, ok := s.st.classes[id]
	if !ok {
		return nil, errors.Wrap(db.ErrNotFound, "get group class")
	}
	return &c, nil
}

func (s *Store) GetGroupClassForUpdate(ctx context.Context, id int) (*booking.GroupClass, error) {
	return s.GetGroupClass(ctx, id)
}

func (s *Store) UpdateGroupClassSlot(_ context.Context, id int, date calendar.Date, start, end calendar.TimeOfDay) error {
	defer s.lock()()
	c, ok := s.st.classes[id]
	if !ok {
		return errors.Wrap(db.ErrNotFound, "reschedule group class")
	}
	if err := s.st.roomGuard(c.RoomID, date, availability.NewInterval(start, end), id, 0); err != nil {
		return err
	}
	c.ScheduledDate, c.StartTime, c.EndTime = date, start, end
	s.st.classes[id] = c
	return nil
}

func (s *Store) DeleteGroupClass(_ context.Context, id int) error {
	defer s.lock()()
	if _, ok := s.st.classes[id]; !ok {
		return errors.Wrap(db.ErrNotFound, "delete group class")
	}
	for _, e := range s.st.enrollments {
		if e.ClassID == id {
			return apperrors.Validation("referenced record does not exist")
		}
	}
	delete(s.st.classes, id)
	return nil
}

func (s *Store) ListGroupClasses(_ context.Context, from *calendar.Date) ([]booking.ClassListing, error) {
	defer s.lock()()
	var out []booking.ClassListing
	for _, c := range s.st.classes {
		if from != nil && c.ScheduledDate.Before(*from) {
			continue
		}
		listing := booking.ClassListing{GroupClass: c, RoomName: "Unassigned", TrainerName: "Unknown"}
		if room, ok := s.st.rooms[c.RoomID]; ok {
			listing.RoomName = room.Name
		}
		if name, ok := s.st.trainers[c.TrainerID]; ok {
			listing.TrainerName = name
		}
		for _, e := range s.st.enrollments {
			if e.ClassID == c.ID && e.AttendanceStatus.Active() {
				listing.Enrolled++
			}
		}
		out = append(out, listing)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.ScheduledDate.Compare(b.ScheduledDate); c != 0 {
			return c < 0
		}
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) CreateSession(_ context.Context, session *booking.PTSession) error {
	defer s.lock()()
	if err := s.st.references(session.RoomID, session.TrainerID); err != nil {
		return err
	}
	if _, ok := s.st.members[session.MemberID]; !ok {
		return apperrors.Validation("referenced record does not exist")
	}
	if session.Status.Active() {
		if err := s.st.roomGuard(session.RoomID, session.ScheduledDate, session.Slot(), 0, 0); err != nil {
			return err
		}
	}
	session.ID = s.st.id()
	s.st.sessions[session.ID] = *session
	return nil
}

func (s *Store) GetSession(_ context.Context, id int) (*booking.PTSession, error) {
	defer s.lock()()
	ps, ok := s.st.sessions[id]
	if !ok {
		return nil, errors.Wrap(db.ErrNotFound, "get session")
	}
	return &ps, nil
}

func (s *Store) UpdateSessionStatus(_ context.Context, id int, status booking.SessionStatus) error {
	defer s.lock()()
	ps, ok := s.st.sessions[id]
	if !ok {
		return errors.Wrap(db.ErrNotFound, "update session status")
	}
	if status.Active() {
		if err := s.st.roomGuard(ps.RoomID, ps.ScheduledDate, ps.Slot(), 0, id); err != nil {
			return err
		}
	}
	ps.Status = status
	s.st.sessions[id] = ps
	return nil
}

func (s *Store) UpdateSessionNotes(_ context.Context, id int, notes *string) error {
	defer s.lock()()
	ps, ok := s.st.sessions[id]
	if !ok {
		return errors.Wrap(db.ErrNotFound, "update session notes")
	}
	ps.Notes = notes
	s.st.sessions[id] = ps
	return nil
}

func (s *Store) ListEnrollments(_ context.Context, classID int) ([]booking.Enrollment, error) {
	defer s.lock()()
	var out []booking.Enrollment
	for _, e := range s.st.enrollments {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateEnrollment(_ context.Context, enrollment *booking.Enrollment) error {
	defer s.lock()()
	if _, ok := s.st.classes[enrollment.ClassID]; !ok {
		return apperrors.Validation("referenced record does not exist")
	}
	if enrollment.AttendanceStatus.Active() {
		for _, e := range s.st.enrollments {
			if e.ClassID == enrollment.ClassID && e.MemberID == enrollment.MemberID && e.AttendanceStatus.Active() {
				return apperrors.Conflict("member is already registered for this class")
			}
		}
	}
	enrollment.ID = s.st.id()
	s.st.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (s *Store) DeleteEnrollmentsByClass(_ context.Context, classID int) (int64, error) {
	defer s.lock()()
	var n int64
	for id, e := range s.st.enrollments {
		if e.ClassID == classID {
			delete(s.st.enrollments, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ListEnrolledContacts(_ context.Context, classID int) ([]booking.Contact, error) {
	defer s.lock()()
	var out []booking.Contact
	for _, e := range s.st.enrollments {
		if e.ClassID != classID || !e.AttendanceStatus.Active() {
			continue
		}
		if m, ok := s.st.members[e.MemberID]; ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func (s *Store) GetMemberContact(_ context.Context, memberID int) (*booking.Contact, error) {
	defer s.lock()()
	m, ok := s.st.members[memberID]
	if !ok {
		return nil, errors.Wrap(db.ErrNotFound, "get member contact")
	}
	return &m, nil
}

var _ booking.Repository = (*Store)(nil)
