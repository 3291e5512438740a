package booking

import (
	"context"
	"fmt"
	"strings"

	"fitclub/internal/apperrors"
	"fitclub/internal/availability"
	"fitclub/internal/calendar"
	"fitclub/internal/db"
	"fitclub/internal/events"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"
)

// Notifier tells members about booking changes once they are committed.
type Notifier interface {
	NotifyClassCancelled(ctx context.Context, class GroupClass, recipients []Contact) error
	NotifySessionScheduled(ctx context.Context, session PTSession, member Contact) error
}

// ScheduleInvalidator drops cached schedules touched by a write.
type ScheduleInvalidator interface {
	InvalidateSchedules(ctx context.Context, trainerID, roomID int)
}

type Option func(*hooks)

func WithNotifier(n Notifier) Option {
	return func(h *hooks) { h.notifier = n }
}

func WithPublisher(p events.Publisher) Option {
	return func(h *hooks) { h.publisher = p }
}

func WithScheduleInvalidator(inv ScheduleInvalidator) Option {
	return func(h *hooks) { h.invalidator = inv }
}

// WithClock overrides how "today" is determined.
func WithClock(today func() calendar.Date) Option {
	return func(h *hooks) { h.today = today }
}

// hooks holds the side effects shared by every service in the package. All
// of them run after commit and never fail the operation.
type hooks struct {
	notifier    Notifier
	publisher   events.Publisher
	invalidator ScheduleInvalidator
	today       func() calendar.Date
}

func newHooks(opts []Option) hooks {
	h := hooks{
		publisher: events.Nop{},
		today:     calendar.Today,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h hooks) publish(ctx context.Context, ev events.Event) {
	if err := h.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("event not published", "type", ev.Type, "key", ev.Key, "error", err)
	}
}

func (h hooks) invalidate(ctx context.Context, trainerID, roomID int) {
	if h.invalidator != nil {
		h.invalidator.InvalidateSchedules(ctx, trainerID, roomID)
	}
}

type Service interface {
	CreateGroupClass(ctx context.Context, in ClassInput) (*GroupClass, error)
	RescheduleGroupClass(ctx context.Context, classID int, in RescheduleInput) (*GroupClass, error)
	CancelGroupClass(ctx context.Context, classID int) error
	SchedulePTSession(ctx context.Context, in SessionInput) (*PTSession, error)
	ListGroupClasses(ctx context.Context, upcomingOnly bool) ([]ClassListing, error)
}

type service struct {
	repo Repository
	hooks
}

func NewService(repo Repository, opts ...Option) Service {
	return &service{
		repo:  repo,
		hooks: newHooks(opts),
	}
}

func (s *service) CreateGroupClass(ctx context.Context, in ClassInput) (*GroupClass, error) {
	if err := validateClassInput(in); err != nil {
		metrics.RecordBooking("class", "invalid")
		return nil, err
	}

	class := &GroupClass{
		ClassName:     strings.TrimSpace(in.Name),
		TrainerID:     in.TrainerID,
		RoomID:        in.RoomID,
		ScheduledDate: in.Date,
		StartTime:     in.Start,
		EndTime:       in.End,
		Capacity:      in.Capacity,
	}

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		room, err := tx.GetRoom(ctx, in.RoomID)
		if err != nil {
			return notFound(err, "room", in.RoomID)
		}
		if in.Capacity > room.Capacity {
			return apperrors.Validationf("class capacity %d exceeds capacity %d of room %q", in.Capacity, room.Capacity, room.Name)
		}
		if err := requireTrainer(ctx, tx, in.TrainerID); err != nil {
			return err
		}
		if err := tx.LockSchedule(ctx, in.RoomID, in.TrainerID, in.Date); err != nil {
			return err
		}
		if err := ensureFree(ctx, tx, in.RoomID, in.TrainerID, in.Date, class.Slot(), 0); err != nil {
			return err
		}
		return tx.CreateGroupClass(ctx, class)
	})
	if err != nil {
		metrics.RecordBooking("class", "rejected")
		logger.Info("group class rejected", "room_id", in.RoomID, "trainer_id", in.TrainerID, "date", in.Date.String(), "error", err)
		return nil, err
	}

	metrics.RecordBooking("class", "created")
	logger.Info("group class created", "class_id", class.ID, "room_id", class.RoomID, "trainer_id", class.TrainerID)
	s.invalidate(ctx, class.TrainerID, class.RoomID)
	s.publish(ctx, events.New(events.ClassCreated, classKey(class.ID), class))
	return class, nil
}

func (s *service) RescheduleGroupClass(ctx context.Context, classID int, in RescheduleInput) (*GroupClass, error) {
	if err := validateSlot(in.Date, in.Start, in.End); err != nil {
		metrics.RecordBooking("class_reschedule", "invalid")
		return nil, err
	}

	var before, after GroupClass
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		class, err := tx.GetGroupClassForUpdate(ctx, classID)
		if err != nil {
			return notFound(err, "class", classID)
		}
		before = *class

		if err := tx.LockSchedule(ctx, class.RoomID, class.TrainerID, in.Date); err != nil {
			return err
		}
		slot := availability.NewInterval(in.Start, in.End)
		if err := ensureFree(ctx, tx, class.RoomID, class.TrainerID, in.Date, slot, classID); err != nil {
			return err
		}
		if err := tx.UpdateGroupClassSlot(ctx, classID, in.Date, in.Start, in.End); err != nil {
			return notFound(err, "class", classID)
		}

		after = *class
		after.ScheduledDate = in.Date
		after.StartTime = in.Start
		after.EndTime = in.End
		return nil
	})
	if err != nil {
		metrics.RecordBooking("class_reschedule", "rejected")
		return nil, err
	}

	metrics.RecordBooking("class_reschedule", "updated")
	logger.Info("group class rescheduled",
		"class_id", classID,
		"from", before.ScheduledDate.String()+" "+before.Slot().String(),
		"to", after.ScheduledDate.String()+" "+after.Slot().String())
	s.invalidate(ctx, after.TrainerID, after.RoomID)
	s.publish(ctx, events.New(events.ClassRescheduled, classKey(classID), after))
	return &after, nil
}

func (s *service) CancelGroupClass(ctx context.Context, classID int) error {
	var (
		class      GroupClass
		recipients []Contact
		removed    int64
	)

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		found, err := tx.GetGroupClassForUpdate(ctx, classID)
		if err != nil {
			return notFound(err, "class", classID)
		}
		class = *found

		recipients, err = tx.ListEnrolledContacts(ctx, classID)
		if err != nil {
			return err
		}
		if removed, err = tx.DeleteEnrollmentsByClass(ctx, classID); err != nil {
			return err
		}
		if err := tx.DeleteGroupClass(ctx, classID); err != nil {
			return notFound(err, "class", classID)
		}
		return nil
	})
	if err != nil {
		metrics.RecordBooking("class_cancel", "rejected")
		return err
	}

	metrics.RecordBooking("class_cancel", "deleted")
	logger.Info("group class cancelled", "class_id", classID, "enrollments_removed", removed)
	s.invalidate(ctx, class.TrainerID, class.RoomID)
	s.publish(ctx, events.New(events.ClassCancelled, classKey(classID), class))
	if s.notifier != nil && len(recipients) > 0 {
		if err := s.notifier.NotifyClassCancelled(ctx, class, recipients); err != nil {
			logger.Warn("cancellation notices not queued", "class_id", classID, "error", err)
		}
	}
	return nil
}

func (s *service) SchedulePTSession(ctx context.Context, in SessionInput) (*PTSession, error) {
	if err := validateSlot(in.Date, in.Start, in.End); err != nil {
		metrics.RecordBooking("session", "invalid")
		return nil, err
	}

	session := &PTSession{
		MemberID:      in.MemberID,
		TrainerID:     in.TrainerID,
		RoomID:        in.RoomID,
		ScheduledDate: in.Date,
		StartTime:     in.Start,
		EndTime:       in.End,
		Status:        StatusScheduled,
		Notes:         normalizeNotes(in.Notes),
	}

	var member *Contact
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := requireMember(ctx, tx, in.MemberID); err != nil {
			return err
		}
		if err := requireTrainer(ctx, tx, in.TrainerID); err != nil {
			return err
		}
		if _, err := tx.GetRoom(ctx, in.RoomID); err != nil {
			return notFound(err, "room", in.RoomID)
		}
		if err := tx.LockSchedule(ctx, in.RoomID, in.TrainerID, in.Date); err != nil {
			return err
		}
		if err := ensureFree(ctx, tx, in.RoomID, in.TrainerID, in.Date, session.Slot(), 0); err != nil {
			return err
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return err
		}

		contact, err := tx.GetMemberContact(ctx, in.MemberID)
		if err != nil {
			logger.Warn("member contact unavailable", "member_id", in.MemberID, "error", err)
			return nil
		}
		member = contact
		return nil
	})
	if err != nil {
		metrics.RecordBooking("session", "rejected")
		logger.Info("pt session rejected", "member_id", in.MemberID, "trainer_id", in.TrainerID, "error", err)
		return nil, err
	}

	metrics.RecordBooking("session", "created")
	logger.Info("pt session scheduled", "session_id", session.ID, "member_id", session.MemberID, "trainer_id", session.TrainerID)
	s.invalidate(ctx, session.TrainerID, session.RoomID)
	s.publish(ctx, events.New(events.SessionScheduled, sessionKey(session.ID), session))
	if s.notifier != nil && member != nil {
		if err := s.notifier.NotifySessionScheduled(ctx, *session, *member); err != nil {
			logger.Warn("session confirmation not queued", "session_id", session.ID, "error", err)
		}
	}
	return session, nil
}

func (s *service) ListGroupClasses(ctx context.Context, upcomingOnly bool) ([]ClassListing, error) {
	var from *calendar.Date
	if upcomingOnly {
		today := s.today()
		from = &today
	}
	return s.repo.ListGroupClasses(ctx, from)
}

// ensureFree checks room then trainer and reports the first booking in the way.
func ensureFree(ctx context.Context, repo Repository, roomID, trainerID int, date calendar.Date, slot availability.Interval, excludeClassID int) error {
	checker := availability.NewChecker(repo)

	for _, res := range []availability.Resource{availability.Room(roomID), availability.Trainer(trainerID)} {
		conflict, err := checker.FirstConflict(ctx, res, date, slot, excludeClassID)
		if err != nil {
			return err
		}
		if conflict != nil {
			metrics.RecordConflict(string(res.Kind))
			return apperrors.Conflict(fmt.Sprintf("%s is not available on %s %s: overlaps %s %d (%s)",
				res, date, slot, conflict.Kind, conflict.ID, conflict.Interval)).
				WithDetails(map[string]any{
					"resource":       string(res.Kind),
					"resource_id":    res.ID,
					"conflict_kind":  string(conflict.Kind),
					"conflict_id":    conflict.ID,
					"conflict_start": conflict.Interval.Start.String(),
					"conflict_end":   conflict.Interval.End.String(),
				})
		}
	}
	return nil
}

func validateSlot(date calendar.Date, start, end calendar.TimeOfDay) error {
	if !date.IsValid() {
		return apperrors.Validation("scheduled_date is required")
	}
	if !start.IsValid() || !end.IsValid() {
		return apperrors.Validation("start_time and end_time must be valid times of day")
	}
	if !start.Before(end) {
		return apperrors.Validationf("start time %s must be before end time %s", start, end)
	}
	return nil
}

func validateClassInput(in ClassInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation("class name is required")
	}
	if in.Capacity <= 0 {
		return apperrors.Validation("capacity must be positive")
	}
	return validateSlot(in.Date, in.Start, in.End)
}

func requireTrainer(ctx context.Context, repo Repository, id int) error {
	ok, err := repo.TrainerExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("trainer", id)
	}
	return nil
}

func requireMember(ctx context.Context, repo Repository, id int) error {
	ok, err := repo.MemberExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("member", id)
	}
	return nil
}

// notFound maps a repository miss to a typed NotFound and passes anything
// else through.
func notFound(err error, resource string, id int) error {
	if db.IsNotFound(err) {
		return apperrors.NotFound(resource, id)
	}
	return err
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func classKey(id int) string   { return fmt.Sprintf("class:%d", id) }
func sessionKey(id int) string { return fmt.Sprintf("session:%d", id) }
