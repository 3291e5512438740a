package booking

import (
	"context"
	"fmt"

	"fitclub/internal/apperrors"
	"fitclub/internal/events"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"
)

type EnrollmentManager interface {
	RegisterForClass(ctx context.Context, memberID, classID int) (*Enrollment, error)
}

type enrollmentManager struct {
	repo Repository
	hooks
}

func NewEnrollmentManager(repo Repository, opts ...Option) EnrollmentManager {
	return &enrollmentManager{
		repo:  repo,
		hooks: newHooks(opts),
	}
}

// ActiveCount counts enrollments that still hold a seat.
func ActiveCount(enrollments []Enrollment) int {
	n := 0
	for _, e := range enrollments {
		if e.AttendanceStatus.Active() {
			n++
		}
	}
	return n
}

func (m *enrollmentManager) RegisterForClass(ctx context.Context, memberID, classID int) (*Enrollment, error) {
	enrollment := &Enrollment{
		ClassID:          classID,
		MemberID:         memberID,
		EnrollmentDate:   m.today(),
		AttendanceStatus: AttendanceRegistered,
	}

	var class *GroupClass
	err := m.repo.WithinTx(ctx, func(tx Repository) error {
		if err := requireMember(ctx, tx, memberID); err != nil {
			return err
		}

		var err error
		class, err = tx.GetGroupClassForUpdate(ctx, classID)
		if err != nil {
			return notFound(err, "class", classID)
		}

		existing, err := tx.ListEnrollments(ctx, classID)
		if err != nil {
			return err
		}

		if active := ActiveCount(existing); active >= class.Capacity {
			metrics.RecordEnrollment("full")
			return apperrors.Conflict("class is full").
				WithDetails(map[string]any{"class_id": classID, "capacity": class.Capacity, "enrolled": active})
		}
		for _, e := range existing {
			if e.MemberID == memberID && e.AttendanceStatus.Active() {
				metrics.RecordEnrollment("duplicate")
				return apperrors.Conflict(fmt.Sprintf("member %d is already registered for class %d", memberID, classID))
			}
		}

		return tx.CreateEnrollment(ctx, enrollment)
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.KindConflict) {
			metrics.RecordEnrollment("rejected")
		}
		return nil, err
	}

	metrics.RecordEnrollment("registered")
	logger.Info("member registered for class", "member_id", memberID, "class_id", classID, "enrollment_id", enrollment.ID)
	m.invalidate(ctx, class.TrainerID, class.RoomID)
	m.publish(ctx, events.New(events.EnrollmentCreated, classKey(classID), enrollment))
	return enrollment, nil
}
