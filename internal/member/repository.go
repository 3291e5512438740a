package member

import (
	"context"
	"strings"

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

const memberColumns = `id, first_name, last_name, email, date_of_birth, gender, registration_date`

func (r *repository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (first_name, last_name, email, date_of_birth, gender, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.GetContext(ctx, &m.ID, query,
		m.FirstName, m.LastName, m.Email, m.DateOfBirth, m.Gender, m.RegistrationDate)
	if err != nil {
		return db.Classify(err, "create member")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var m Member
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		return nil, db.Classify(err, "find member")
	}
	return &m, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM members WHERE lower(email) = lower($1))`, email)
}

func (r *repository) List(ctx context.Context) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY last_name, first_name, id`

	members := []Member{}
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, db.Classify(err, "list members")
	}
	return members, nil
}

// likeEscaper keeps user input from acting as ILIKE wildcards.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *repository) SearchByName(ctx context.Context, fragment string) ([]Member, error) {
	query := `SELECT ` + memberColumns + `
		FROM members
		WHERE first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name, first_name, id`

	members := []Member{}
	pattern := "%" + likeEscaper.Replace(fragment) + "%"
	if err := r.db.SelectContext(ctx, &members, query, pattern); err != nil {
		return nil, db.Classify(err, "search members")
	}
	return members, nil
}

func (r *repository) RecentActivity(ctx context.Context, memberID, limit int) ([]Activity, error) {
	query := `
		SELECT gc.class_name, ce.attendance_status
		FROM class_enrollments ce
		JOIN group_classes gc ON gc.id = ce.class_id
		WHERE ce.member_id = $1
		ORDER BY ce.enrollment_date DESC, ce.id DESC
		LIMIT $2
	`

	activity := []Activity{}
	if err := r.db.SelectContext(ctx, &activity, query, memberID, limit); err != nil {
		return nil, db.Classify(err, "load member activity")
	}
	return activity, nil
}

func (r *repository) Summary(ctx context.Context, memberID int) (Summary, error) {
	query := `
		SELECT total_classes_enrolled, upcoming_classes
		FROM member_enrollment_summary
		WHERE member_id = $1
	`

	var s Summary
	if err := r.db.GetContext(ctx, &s, query, memberID); err != nil {
		return Summary{}, db.Classify(err, "load member summary")
	}
	return s, nil
}

func (r *repository) UpcomingSessions(ctx context.Context, memberID int, from calendar.Date) ([]UpcomingSession, error) {
	query := `
		SELECT
			s.id, s.scheduled_date, s.start_time, s.end_time, s.notes,
			t.first_name || ' ' || t.last_name AS trainer_name,
			COALESCE(r.name, 'Unassigned') AS room_name
		FROM personal_training_sessions s
		JOIN trainers t ON t.id = s.trainer_id
		LEFT JOIN rooms r ON r.id = s.room_id
		WHERE s.member_id = $1 AND s.status = 'Scheduled' AND s.scheduled_date >= $2
		ORDER BY s.scheduled_date, s.start_time, s.id
	`

	sessions := []UpcomingSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, memberID, from); err != nil {
		return nil, db.Classify(err, "load upcoming sessions")
	}
	return sessions, nil
}

func (r *repository) UpcomingClasses(ctx context.Context, memberID int, from calendar.Date) ([]UpcomingClass, error) {
	query := `
		SELECT
			ce.id AS enrollment_id, gc.id AS class_id, gc.class_name,
			gc.scheduled_date, gc.start_time, gc.end_time,
			t.first_name || ' ' || t.last_name AS trainer_name,
			COALESCE(r.name, 'Unassigned') AS room_name
		FROM class_enrollments ce
		JOIN group_classes gc ON gc.id = ce.class_id
		JOIN trainers t ON t.id = gc.trainer_id
		LEFT JOIN rooms r ON r.id = gc.room_id
		WHERE ce.member_id = $1 AND ce.attendance_status = 'Registered' AND gc.scheduled_date >= $2
		ORDER BY gc.scheduled_date, gc.start_time, gc.id
	`

	classes := []UpcomingClass{}
	if err := r.db.SelectContext(ctx, &classes, query, memberID, from); err != nil {
		return nil, db.Classify(err, "load upcoming classes")
	}
	return classes, nil
}
