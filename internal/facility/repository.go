package facility

import (
	"context"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	query := `
		INSERT INTO rooms (name, capacity, room_type)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.db.GetContext(ctx, &room.ID, query, room.Name, room.Capacity, room.RoomType); err != nil {
		return db.Classify(err, "create room")
	}
	return nil
}

func (r *repository) ListRooms(ctx context.Context) ([]Room, error) {
	query := `
		SELECT id, name, capacity, room_type
		FROM rooms
		ORDER BY name
	`

	rooms := []Room{}
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, db.Classify(err, "list rooms")
	}
	return rooms, nil
}

func (r *repository) RoomNameExists(ctx context.Context, name string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM rooms WHERE name = $1)`, name)
}

func (r *repository) CreateTrainer(ctx context.Context, trainer *Trainer) error {
	query := `
		INSERT INTO trainers (first_name, last_name, email, specialization, hire_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.GetContext(ctx, &trainer.ID, query,
		trainer.FirstName, trainer.LastName, trainer.Email, trainer.Specialization, trainer.HireDate)
	if err != nil {
		return db.Classify(err, "create trainer")
	}
	return nil
}

func (r *repository) ListTrainers(ctx context.Context) ([]Trainer, error) {
	query := `
		SELECT id, first_name, last_name, email, specialization, hire_date
		FROM trainers
		ORDER BY last_name, first_name, id
	`

	trainers := []Trainer{}
	if err := r.db.SelectContext(ctx, &trainers, query); err != nil {
		return nil, db.Classify(err, "list trainers")
	}
	return trainers, nil
}
