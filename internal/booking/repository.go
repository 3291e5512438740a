package booking

import (
	"context"
	"database/sql"
	"fmt"

	"fitclub/internal/availability"
	"fitclub/internal/calendar"
	"fitclub/internal/db"
	"fitclub/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type repository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{db: conn, ext: conn}
}

func (r *repository) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return db.Classify(err, "begin transaction")
	}

	if err := fn(&repository{db: r.db, ext: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return db.Classify(err, "commit transaction")
	}
	return nil
}

func scheduleLockKey(kind availability.ResourceKind, id int, date calendar.Date) string {
	return fmt.Sprintf("%s:%d:%s", kind, id, date)
}

// LockSchedule takes transaction-scoped advisory locks, room before trainer,
// so concurrent writers always acquire them in the same order.
func (r *repository) LockSchedule(ctx context.Context, roomID, trainerID int, date calendar.Date) error {
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`

	keys := []string{
		scheduleLockKey(availability.ResourceRoom, roomID, date),
		scheduleLockKey(availability.ResourceTrainer, trainerID, date),
	}
	for _, key := range keys {
		if _, err := r.ext.ExecContext(ctx, query, key); err != nil {
			return db.Classify(err, "lock schedule "+key)
		}
	}
	return nil
}

func (r *repository) GetRoom(ctx context.Context, id int) (*RoomInfo, error) {
	query := `
		SELECT id, name, capacity
		FROM rooms
		WHERE id = $1
	`

	var room RoomInfo
	if err := sqlx.GetContext(ctx, r.ext, &room, query, id); err != nil {
		return nil, db.Classify(err, "get room")
	}
	return &room, nil
}

func (r *repository) TrainerExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.ext, `SELECT EXISTS(SELECT 1 FROM trainers WHERE id = $1)`, id)
}

func (r *repository) MemberExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.ext, `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`, id)
}

func resourceColumn(res availability.Resource) (string, error) {
	switch res.Kind {
	case availability.ResourceRoom:
		return "room_id", nil
	case availability.ResourceTrainer:
		return "trainer_id", nil
	default:
		return "", errors.Errorf("unknown resource kind %q", res.Kind)
	}
}

type occupancyRow struct {
	ID     int                `db:"id"`
	Start  calendar.TimeOfDay `db:"start_time"`
	End    calendar.TimeOfDay `db:"end_time"`
	Status SessionStatus      `db:"status"`
}

func (r *repository) ClassOccupancy(ctx context.Context, res availability.Resource, date calendar.Date) ([]availability.Occupancy, error) {
	column, err := resourceColumn(res)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, start_time, end_time
		FROM group_classes
		WHERE %s = $1 AND scheduled_date = $2
		ORDER BY start_time, id
	`, column)

	var rows []occupancyRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, res.ID, date); err != nil {
		return nil, db.Classify(err, "list class occupancy")
	}

	out := make([]availability.Occupancy, 0, len(rows))
	for _, row := range rows {
		out = append(out, availability.Occupancy{
			Kind:     availability.KindClass,
			ID:       row.ID,
			Interval: availability.NewInterval(row.Start, row.End),
			Active:   true,
		})
	}
	return out, nil
}

func (r *repository) SessionOccupancy(ctx context.Context, res availability.Resource, date calendar.Date) ([]availability.Occupancy, error) {
	column, err := resourceColumn(res)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, start_time, end_time, status
		FROM personal_training_sessions
		WHERE %s = $1 AND scheduled_date = $2
		ORDER BY start_time, id
	`, column)

	var rows []occupancyRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, res.ID, date); err != nil {
		return nil, db.Classify(err, "list session occupancy")
	}

	out := make([]availability.Occupancy, 0, len(rows))
	for _, row := range rows {
		out = append(out, availability.Occupancy{
			Kind:     availability.KindSession,
			ID:       row.ID,
			Interval: availability.NewInterval(row.Start, row.End),
			Active:   row.Status.Active(),
		})
	}
	return out, nil
}

const classColumns = `id, class_name, trainer_id, room_id, scheduled_date, start_time, end_time, capacity`

func (r *repository) CreateGroupClass(ctx context.Context, class *GroupClass) error {
	query := `
		INSERT INTO group_classes (class_name, trainer_id, room_id, scheduled_date, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := sqlx.GetContext(ctx, r.ext, &class.ID, query,
		class.ClassName, class.TrainerID, class.RoomID, class.ScheduledDate, class.StartTime, class.EndTime, class.Capacity)
	return db.Classify(err, "insert group class")
}

func (r *repository) GetGroupClass(ctx context.Context, id int) (*GroupClass, error) {
	query := `SELECT ` + classColumns + ` FROM group_classes WHERE id = $1`

	var class GroupClass
	if err := sqlx.GetContext(ctx, r.ext, &class, query, id); err != nil {
		return nil, db.Classify(err, "get group class")
	}
	return &class, nil
}

func (r *repository) GetGroupClassForUpdate(ctx context.Context, id int) (*GroupClass, error) {
	query := `SELECT ` + classColumns + ` FROM group_classes WHERE id = $1 FOR UPDATE`

	var class GroupClass
	if err := sqlx.GetContext(ctx, r.ext, &class, query, id); err != nil {
		return nil, db.Classify(err, "lock group class")
	}
	return &class, nil
}

func (r *repository) UpdateGroupClassSlot(ctx context.Context, id int, date calendar.Date, start, end calendar.TimeOfDay) error {
	query := `
		UPDATE group_classes
		SET scheduled_date = $2, start_time = $3, end_time = $4
		WHERE id = $1
	`

	result, err := r.ext.ExecContext(ctx, query, id, date, start, end)
	if err != nil {
		return db.Classify(err, "reschedule group class")
	}
	return requireRow(result, "reschedule group class")
}

func (r *repository) DeleteGroupClass(ctx context.Context, id int) error {
	result, err := r.ext.ExecContext(ctx, `DELETE FROM group_classes WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err, "delete group class")
	}
	return requireRow(result, "delete group class")
}

func (r *repository) ListGroupClasses(ctx context.Context, from *calendar.Date) ([]ClassListing, error) {
	query := `
		SELECT
			gc.id, gc.class_name, gc.trainer_id, gc.room_id, gc.scheduled_date,
			gc.start_time, gc.end_time, gc.capacity,
			COALESCE(r.name, 'Unassigned') AS room_name,
			COALESCE(t.first_name || ' ' || t.last_name, 'Unknown') AS trainer_name,
			(SELECT COUNT(*) FROM class_enrollments ce
			 WHERE ce.class_id = gc.id AND ce.attendance_status IN ('Registered', 'Attended')) AS enrolled
		FROM group_classes gc
		LEFT JOIN rooms r ON r.id = gc.room_id
		LEFT JOIN trainers t ON t.id = gc.trainer_id
		WHERE $1::date IS NULL OR gc.scheduled_date >= $1::date
		ORDER BY gc.scheduled_date, gc.start_time, gc.id
	`

	var fromArg interface{}
	if from != nil {
		fromArg = *from
	}

	var classes []ClassListing
	if err := sqlx.SelectContext(ctx, r.ext, &classes, query, fromArg); err != nil {
		return nil, db.Classify(err, "list group classes")
	}
	return classes, nil
}

const sessionColumns = `id, member_id, trainer_id, room_id, scheduled_date, start_time, end_time, status, notes`

func (r *repository) CreateSession(ctx context.Context, session *PTSession) error {
	query := `
		INSERT INTO personal_training_sessions (member_id, trainer_id, room_id, scheduled_date, start_time, end_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := sqlx.GetContext(ctx, r.ext, &session.ID, query,
		session.MemberID, session.TrainerID, session.RoomID, session.ScheduledDate,
		session.StartTime, session.EndTime, session.Status, session.Notes)
	return db.Classify(err, "insert session")
}

func (r *repository) GetSession(ctx context.Context, id int) (*PTSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM personal_training_sessions WHERE id = $1`

	var session PTSession
	if err := sqlx.GetContext(ctx, r.ext, &session, query, id); err != nil {
		return nil, db.Classify(err, "get session")
	}
	return &session, nil
}

func (r *repository) UpdateSessionStatus(ctx context.Context, id int, status SessionStatus) error {
	result, err := r.ext.ExecContext(ctx, `UPDATE personal_training_sessions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return db.Classify(err, "update session status")
	}
	return requireRow(result, "update session status")
}

func (r *repository) UpdateSessionNotes(ctx context.Context, id int, notes *string) error {
	result, err := r.ext.ExecContext(ctx, `UPDATE personal_training_sessions SET notes = $2 WHERE id = $1`, id, notes)
	if err != nil {
		return db.Classify(err, "update session notes")
	}
	return requireRow(result, "update session notes")
}

func (r *repository) ListEnrollments(ctx context.Context, classID int) ([]Enrollment, error) {
	query := `
		SELECT id, class_id, member_id, enrollment_date, attendance_status
		FROM class_enrollments
		WHERE class_id = $1
		ORDER BY id
	`

	var enrollments []Enrollment
	if err := sqlx.SelectContext(ctx, r.ext, &enrollments, query, classID); err != nil {
		return nil, db.Classify(err, "list enrollments")
	}
	return enrollments, nil
}

func (r *repository) CreateEnrollment(ctx context.Context, enrollment *Enrollment) error {
	query := `
		INSERT INTO class_enrollments (class_id, member_id, enrollment_date, attendance_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := sqlx.GetContext(ctx, r.ext, &enrollment.ID, query,
		enrollment.ClassID, enrollment.MemberID, enrollment.EnrollmentDate, enrollment.AttendanceStatus)
	return db.Classify(err, "insert enrollment")
}

func (r *repository) DeleteEnrollmentsByClass(ctx context.Context, classID int) (int64, error) {
	result, err := r.ext.ExecContext(ctx, `DELETE FROM class_enrollments WHERE class_id = $1`, classID)
	if err != nil {
		return 0, db.Classify(err, "delete enrollments")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, db.Classify(err, "delete enrollments")
	}
	return n, nil
}

func (r *repository) ListEnrolledContacts(ctx context.Context, classID int) ([]Contact, error) {
	query := `
		SELECT m.id AS member_id, m.first_name || ' ' || m.last_name AS name, m.email
		FROM class_enrollments ce
		JOIN members m ON m.id = ce.member_id
		WHERE ce.class_id = $1 AND ce.attendance_status IN ('Registered', 'Attended')
		ORDER BY m.id
	`

	var contacts []Contact
	if err := sqlx.SelectContext(ctx, r.ext, &contacts, query, classID); err != nil {
		return nil, db.Classify(err, "list enrolled contacts")
	}
	return contacts, nil
}

func (r *repository) GetMemberContact(ctx context.Context, memberID int) (*Contact, error) {
	query := `
		SELECT id AS member_id, first_name || ' ' || last_name AS name, email
		FROM members
		WHERE id = $1
	`

	var contact Contact
	if err := sqlx.GetContext(ctx, r.ext, &contact, query, memberID); err != nil {
		return nil, db.Classify(err, "get member contact")
	}
	return &contact, nil
}

func requireRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return db.Classify(err, op)
	}
	if n == 0 {
		return errors.Wrap(db.ErrNotFound, op)
	}
	return nil
}
