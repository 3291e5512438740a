package schedule

import (
	"context"

	"fitclub/internal/availability"
	"fitclub/internal/calendar"
)

type Repository interface {
	OwnerExists(ctx context.Context, owner availability.Resource) (bool, error)
	ClassesBetween(ctx context.Context, owner availability.Resource, from, to calendar.Date) ([]ClassRow, error)
	SessionsBetween(ctx context.Context, owner availability.Resource, from, to calendar.Date) ([]SessionRow, error)
}
