package member

import (
	"context"

	"fitclub/internal/calendar"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	FindByID(ctx context.Context, id int) (*Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]Member, error)
	SearchByName(ctx context.Context, fragment string) ([]Member, error)
	RecentActivity(ctx context.Context, memberID, limit int) ([]Activity, error)
	Summary(ctx context.Context, memberID int) (Summary, error)
	UpcomingSessions(ctx context.Context, memberID int, from calendar.Date) ([]UpcomingSession, error)
	UpcomingClasses(ctx context.Context, memberID int, from calendar.Date) ([]UpcomingClass, error)
}
