package booking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fitclub/internal/apperrors"
	"fitclub/internal/availability"
	"fitclub/internal/booking"
	"fitclub/internal/booking/memstore"
	"fitclub/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan10 = calendar.NewDate(2025, time.January, 10)

func at(h, m int) calendar.TimeOfDay { return calendar.NewTimeOfDay(h, m) }

type fixture struct {
	store       *memstore.Store
	service     booking.Service
	enrollments booking.EnrollmentManager
	status      booking.StatusMachine
}

func newFixture() *fixture {
	store := memstore.New()
	clock := booking.WithClock(func() calendar.Date { return calendar.NewDate(2025, time.January, 8) })
	return &fixture{
		store:       store,
		service:     booking.NewService(store, clock),
		enrollments: booking.NewEnrollmentManager(store, clock),
		status:      booking.NewStatusMachine(store, clock),
	}
}

func (f *fixture) class(name string, trainerID, roomID int, sh, eh, capacity int) (*booking.GroupClass, error) {
	return f.service.CreateGroupClass(context.Background(), booking.ClassInput{
		Name:      name,
		TrainerID: trainerID,
		RoomID:    roomID,
		Date:      jan10,
		Start:     at(sh, 0),
		End:       at(eh, 0),
		Capacity:  capacity,
	})
}

func TestScenario_YogaStudio(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Yoga Studio", 20)
	trainer := f.store.AddTrainer("Ana Lopez")

	class, err := f.class("Morning Yoga", trainer, room, 9, 10, 15)
	require.NoError(t, err)

	_, err = f.service.CreateGroupClass(ctx, booking.ClassInput{
		Name: "Overlap", TrainerID: trainer, RoomID: room, Date: jan10,
		Start: at(9, 30), End: at(10, 30), Capacity: 10,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	for i := 1; i <= 15; i++ {
		member := f.store.AddMember(fmt.Sprintf("Member %d", i), fmt.Sprintf("m%d@example.com", i))
		_, err := f.enrollments.RegisterForClass(ctx, member, class.ID)
		require.NoError(t, err, "registration %d", i)
	}

	extra := f.store.AddMember("Member 16", "m16@example.com")
	_, err = f.enrollments.RegisterForClass(ctx, extra, class.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "class is full")
}

func TestScenario_CancelledSessionFreesSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Studio 1", 10)
	trainer := f.store.AddTrainer("Ben Ode")
	member := f.store.AddMember("Cara Diaz", "cara@example.com")

	session, err := f.service.SchedulePTSession(ctx, booking.SessionInput{
		MemberID: member, TrainerID: trainer, RoomID: room,
		Date: jan10, Start: at(9, 0), End: at(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusScheduled, session.Status)

	_, err = f.class("Blocked", trainer, room, 9, 10, 5)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	updated, err := f.status.UpdateStatus(ctx, session.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, updated.Status)

	_, err = f.class("Now Free", trainer, room, 9, 10, 5)
	require.NoError(t, err)
}

func TestScenario_BogusStatus(t *testing.T) {
	f := newFixture()

	_, err := f.status.UpdateStatus(context.Background(), 5, "Bogus")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	for _, s := range booking.SessionStatuses {
		assert.Contains(t, err.Error(), string(s))
	}
}

func TestAdjacentBookingsDoNotConflict(t *testing.T) {
	f := newFixture()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Dee Fox")

	_, err := f.class("First", trainer, room, 9, 10, 10)
	require.NoError(t, err)
	_, err = f.class("Second", trainer, room, 10, 11, 10)
	require.NoError(t, err)
}

func TestTrainerConflictAcrossRooms(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	roomA := f.store.AddRoom("A", 10)
	roomB := f.store.AddRoom("B", 10)
	trainer := f.store.AddTrainer("Eli Grant")
	member := f.store.AddMember("Fay Hu", "fay@example.com")

	_, err := f.class("Spin", trainer, roomA, 9, 10, 10)
	require.NoError(t, err)

	_, err = f.service.SchedulePTSession(ctx, booking.SessionInput{
		MemberID: member, TrainerID: trainer, RoomID: roomB,
		Date: jan10, Start: at(9, 30), End: at(10, 30),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "trainer")
}

func TestRescheduleToOwnSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Gus Ito")

	class, err := f.class("Pilates", trainer, room, 9, 10, 10)
	require.NoError(t, err)

	moved, err := f.service.RescheduleGroupClass(ctx, class.ID, booking.RescheduleInput{
		Date: jan10, Start: at(9, 0), End: at(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, class.Capacity, moved.Capacity)

	moved, err = f.service.RescheduleGroupClass(ctx, class.ID, booking.RescheduleInput{
		Date: jan10, Start: at(9, 30), End: at(10, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, at(9, 30), moved.StartTime)
}

func TestRescheduleIntoTakenSlot(t *testing.T) {
	f := newFixture()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Hal Jin")

	_, err := f.class("Early", trainer, room, 9, 10, 10)
	require.NoError(t, err)
	late, err := f.class("Late", trainer, room, 11, 12, 10)
	require.NoError(t, err)

	_, err = f.service.RescheduleGroupClass(context.Background(), late.ID, booking.RescheduleInput{
		Date: jan10, Start: at(9, 30), End: at(10, 30),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	stored := f.store.Classes()
	require.Len(t, stored, 2)
	assert.Equal(t, at(11, 0), stored[1].StartTime, "failed reschedule must leave the class untouched")
}

func TestCancelGroupClassRemovesEnrollments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Ida Kay")
	member := f.store.AddMember("Jo Lee", "jo@example.com")

	class, err := f.class("Barre", trainer, room, 9, 10, 10)
	require.NoError(t, err)
	_, err = f.enrollments.RegisterForClass(ctx, member, class.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.CancelGroupClass(ctx, class.ID))
	assert.Empty(t, f.store.Classes())

	remaining, err := f.store.ListEnrollments(ctx, class.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = f.service.CancelGroupClass(ctx, class.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDuplicateRegistration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Kim Moe")
	member := f.store.AddMember("Lu Ng", "lu@example.com")

	class, err := f.class("Boxing", trainer, room, 9, 10, 10)
	require.NoError(t, err)

	enrollment, err := f.enrollments.RegisterForClass(ctx, member, class.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.AttendanceRegistered, enrollment.AttendanceStatus)
	assert.Equal(t, calendar.NewDate(2025, time.January, 8), enrollment.EnrollmentDate)

	_, err = f.enrollments.RegisterForClass(ctx, member, class.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "already registered")
}

func TestNotFoundReferences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Mo Oak")
	member := f.store.AddMember("Ned Pim", "ned@example.com")

	_, err := f.class("Ghost room", trainer, 999, 9, 10, 10)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.class("Ghost trainer", 999, room, 9, 10, 10)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.enrollments.RegisterForClass(ctx, member, 999)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.enrollments.RegisterForClass(ctx, 999, 1)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.service.RescheduleGroupClass(ctx, 999, booking.RescheduleInput{Date: jan10, Start: at(9, 0), End: at(10, 0)})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.status.UpdateStatus(ctx, 999, "Completed")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestValidation(t *testing.T) {
	f := newFixture()
	room := f.store.AddRoom("Small", 5)
	trainer := f.store.AddTrainer("Oli Park")

	_, err := f.class("Too big", trainer, room, 9, 10, 6)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.class("Backwards", trainer, room, 10, 9, 5)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.class("Zero length", trainer, room, 9, 9, 5)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.class("", trainer, room, 9, 10, 5)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.Empty(t, f.store.Classes())
}

func TestStatusTransitionsAnyToAny(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Studio", 5)
	trainer := f.store.AddTrainer("Pat Quinn")
	member := f.store.AddMember("Rae Sato", "rae@example.com")

	session, err := f.service.SchedulePTSession(ctx, booking.SessionInput{
		MemberID: member, TrainerID: trainer, RoomID: room,
		Date: jan10, Start: at(9, 0), End: at(10, 0),
	})
	require.NoError(t, err)

	for _, next := range []string{"Completed", "Scheduled", "No-Show", "no show", "Cancelled", "Scheduled"} {
		_, err := f.status.UpdateStatus(ctx, session.ID, next)
		require.NoError(t, err, next)
	}
	assert.Equal(t, booking.StatusScheduled, f.store.Sessions()[0].Status)
}

func TestReactivatingCancelledSessionNeedsFreeSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Studio", 5)
	trainer := f.store.AddTrainer("Sam Tate")
	member := f.store.AddMember("Uma Vo", "uma@example.com")

	session, err := f.service.SchedulePTSession(ctx, booking.SessionInput{
		MemberID: member, TrainerID: trainer, RoomID: room,
		Date: jan10, Start: at(9, 0), End: at(10, 0),
	})
	require.NoError(t, err)
	_, err = f.status.UpdateStatus(ctx, session.ID, "Cancelled")
	require.NoError(t, err)

	_, err = f.class("Takes the slot", trainer, room, 9, 10, 5)
	require.NoError(t, err)

	_, err = f.status.UpdateStatus(ctx, session.ID, "Scheduled")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, booking.StatusCancelled, f.store.Sessions()[0].Status)
}

func TestSessionNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Studio", 5)
	trainer := f.store.AddTrainer("Val Wu")
	member := f.store.AddMember("Wes Xu", "wes@example.com")

	blank := "   "
	session, err := f.service.SchedulePTSession(ctx, booking.SessionInput{
		MemberID: member, TrainerID: trainer, RoomID: room,
		Date: jan10, Start: at(9, 0), End: at(10, 0), Notes: &blank,
	})
	require.NoError(t, err)
	assert.Nil(t, session.Notes)

	updated, err := f.status.UpdateSessionNotes(ctx, session.ID, "  knee rehab ")
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "knee rehab", *updated.Notes)

	_, err = f.status.UpdateSessionNotes(ctx, 999, "x")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListGroupClassesUpcoming(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Xan Yi")

	_, err := f.service.CreateGroupClass(ctx, booking.ClassInput{
		Name: "Past", TrainerID: trainer, RoomID: room,
		Date: calendar.NewDate(2025, time.January, 1), Start: at(9, 0), End: at(10, 0), Capacity: 5,
	})
	require.NoError(t, err)
	_, err = f.class("Future", trainer, room, 9, 10, 5)
	require.NoError(t, err)

	all, err := f.service.ListGroupClasses(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	upcoming, err := f.service.ListGroupClasses(ctx, true)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Future", upcoming[0].ClassName)
	assert.Equal(t, "Hall", upcoming[0].RoomName)
}

// TestNoDoubleBooking drives a deterministic stream of bookings over a small
// grid of rooms, trainers and slots and checks that whatever got accepted
// never overlaps.
func TestNoDoubleBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rooms := []int{f.store.AddRoom("R1", 20), f.store.AddRoom("R2", 20)}
	trainers := []int{f.store.AddTrainer("T1"), f.store.AddTrainer("T2"), f.store.AddTrainer("T3")}
	member := f.store.AddMember("M", "m@example.com")

	var classIDs []int
	seed := 7
	next := func(n int) int {
		seed = (seed*1103515245 + 12345) % 2147483648
		return seed % n
	}

	for i := 0; i < 200; i++ {
		start := 6*60 + next(24)*30
		length := 30 + next(4)*30
		st := at(start/60, start%60)
		en := at((start+length)/60, (start+length)%60)
		date := jan10.AddDays(next(2))
		room := rooms[next(len(rooms))]
		trainer := trainers[next(len(trainers))]

		switch next(4) {
		case 0, 1:
			c, err := f.service.CreateGroupClass(ctx, booking.ClassInput{
				Name: "C", TrainerID: trainer, RoomID: room, Date: date, Start: st, End: en, Capacity: 5,
			})
			if err == nil {
				classIDs = append(classIDs, c.ID)
			}
		case 2:
			_, _ = f.service.SchedulePTSession(ctx, booking.SessionInput{
				MemberID: member, TrainerID: trainer, RoomID: room, Date: date, Start: st, End: en,
			})
		case 3:
			if len(classIDs) > 0 {
				_, _ = f.service.RescheduleGroupClass(ctx, classIDs[next(len(classIDs))], booking.RescheduleInput{
					Date: date, Start: st, End: en,
				})
			}
		}
	}

	type booked struct {
		label   string
		room    int
		trainer int
		date    calendar.Date
		slot    availability.Interval
	}
	var active []booked
	for _, c := range f.store.Classes() {
		active = append(active, booked{fmt.Sprintf("class %d", c.ID), c.RoomID, c.TrainerID, c.ScheduledDate, c.Slot()})
	}
	for _, s := range f.store.Sessions() {
		if s.Status.Active() {
			active = append(active, booked{fmt.Sprintf("session %d", s.ID), s.RoomID, s.TrainerID, s.ScheduledDate, s.Slot()})
		}
	}
	require.NotEmpty(t, active)

	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.date != b.date || !availability.Overlaps(a.slot, b.slot) {
				continue
			}
			assert.NotEqual(t, a.room, b.room, "%s and %s share a room", a.label, b.label)
			assert.NotEqual(t, a.trainer, b.trainer, "%s and %s share a trainer", a.label, b.label)
		}
	}
}

// TestCapacityInvariant registers more members than seats and checks the
// active count never passes capacity.
func TestCapacityInvariant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	room := f.store.AddRoom("Hall", 30)
	trainer := f.store.AddTrainer("Yan Zed")

	for capacity := 1; capacity <= 4; capacity++ {
		class, err := f.service.CreateGroupClass(ctx, booking.ClassInput{
			Name: "Cap", TrainerID: trainer, RoomID: room, Date: jan10.AddDays(capacity),
			Start: at(9, 0), End: at(10, 0), Capacity: capacity,
		})
		require.NoError(t, err)

		for i := 0; i <= capacity; i++ {
			member := f.store.AddMember("M", fmt.Sprintf("cap%d-%d@example.com", capacity, i))
			_, err := f.enrollments.RegisterForClass(ctx, member, class.ID)
			if i < capacity {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
			}

			enrollments, listErr := f.store.ListEnrollments(ctx, class.ID)
			require.NoError(t, listErr)
			assert.LessOrEqual(t, booking.ActiveCount(enrollments), capacity)
		}
	}
}
