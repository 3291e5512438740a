package booking

import (
	"context"

	"fitclub/internal/availability"
	"fitclub/internal/calendar"
)

type Repository interface {
	availability.Source

	// WithinTx runs fn against a transactional view of the store. Nothing fn
	// wrote survives if it returns an error.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
	// LockSchedule serialises writers touching the same room or trainer on a
	// date until the surrounding transaction ends.
	LockSchedule(ctx context.Context, roomID, trainerID int, date calendar.Date) error

	GetRoom(ctx context.Context, id int) (*RoomInfo, error)
	TrainerExists(ctx context.Context, id int) (bool, error)
	MemberExists(ctx context.Context, id int) (bool, error)

	CreateGroupClass(ctx context.Context, class *GroupClass) error
	GetGroupClass(ctx context.Context, id int) (*GroupClass, error)
	GetGroupClassForUpdate(ctx context.Context, id int) (*GroupClass, error)
	UpdateGroupClassSlot(ctx context.Context, id int, date calendar.Date, start, end calendar.TimeOfDay) error
	DeleteGroupClass(ctx context.Context, id int) error
	ListGroupClasses(ctx context.Context, from *calendar.Date) ([]ClassListing, error)

	CreateSession(ctx context.Context, session *PTSession) error
	GetSession(ctx context.Context, id int) (*PTSession, error)
	UpdateSessionStatus(ctx context.Context, id int, status SessionStatus) error
	UpdateSessionNotes(ctx context.Context, id int, notes *string) error

	ListEnrollments(ctx context.Context, classID int) ([]Enrollment, error)
	CreateEnrollment(ctx context.Context, enrollment *Enrollment) error
	DeleteEnrollmentsByClass(ctx context.Context, classID int) (int64, error)

	ListEnrolledContacts(ctx context.Context, classID int) ([]Contact, error)
	GetMemberContact(ctx context.Context, memberID int) (*Contact, error)
}
