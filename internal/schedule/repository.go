package schedule

import (
	"context"
	"fmt"

	"fitclub/internal/availability"
	"fitclub/internal/calendar"
	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{db: conn}
}

func ownerColumn(owner availability.Resource) (string, string, error) {
	switch owner.Kind {
	case availability.ResourceTrainer:
		return "trainer_id", "trainers", nil
	case availability.ResourceRoom:
		return "room_id", "rooms", nil
	default:
		return "", "", fmt.Errorf("unknown schedule owner %q", owner.Kind)
	}
}

func (r *repository) OwnerExists(ctx context.Context, owner availability.Resource) (bool, error) {
	_, table, err := ownerColumn(owner)
	if err != nil {
		return false, err
	}
	return db.Exists(ctx, r.db, fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table), owner.ID)
}

func (r *repository) ClassesBetween(ctx context.Context, owner availability.Resource, from, to calendar.Date) ([]ClassRow, error) {
	column, _, err := ownerColumn(owner)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT
			gc.id, gc.class_name, gc.scheduled_date, gc.start_time, gc.end_time, gc.capacity,
			r.name AS room_name,
			(SELECT COUNT(*) FROM class_enrollments ce
			 WHERE ce.class_id = gc.id AND ce.attendance_status IN ('Registered', 'Attended')) AS enrolled
		FROM group_classes gc
		LEFT JOIN rooms r ON r.id = gc.room_id
		WHERE gc.%s = $1 AND gc.scheduled_date BETWEEN $2 AND $3
	`, column)

	var rows []ClassRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, owner.ID, from, to); err != nil {
		return nil, db.Classify(err, "list scheduled classes")
	}
	return rows, nil
}

func (r *repository) SessionsBetween(ctx context.Context, owner availability.Resource, from, to calendar.Date) ([]SessionRow, error) {
	column, _, err := ownerColumn(owner)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT
			s.id, s.scheduled_date, s.start_time, s.end_time, s.status,
			r.name AS room_name,
			m.first_name || ' ' || m.last_name AS member_name
		FROM personal_training_sessions s
		LEFT JOIN rooms r ON r.id = s.room_id
		LEFT JOIN members m ON m.id = s.member_id
		WHERE s.%s = $1 AND s.scheduled_date BETWEEN $2 AND $3
	`, column)

	var rows []SessionRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, owner.ID, from, to); err != nil {
		return nil, db.Classify(err, "list scheduled sessions")
	}
	return rows, nil
}
