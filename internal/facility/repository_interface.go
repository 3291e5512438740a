package facility

import "context"

type Repository interface {
	CreateRoom(ctx context.Context, room *Room) error
	ListRooms(ctx context.Context) ([]Room, error)
	RoomNameExists(ctx context.Context, name string) (bool, error)
	CreateTrainer(ctx context.Context, trainer *Trainer) error
	ListTrainers(ctx context.Context) ([]Trainer, error)
}
