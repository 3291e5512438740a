// Package facility manages the rooms and trainers that bookings reference.
package facility

import (
	"context"
	"strings"

	"fitclub/internal/api"
	"fitclub/internal/apperrors"
	"fitclub/internal/calendar"
	"fitclub/internal/logger"
)

type Service interface {
	AddRoom(ctx context.Context, req CreateRoomRequest) (*Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	AddTrainer(ctx context.Context, req CreateTrainerRequest) (*Trainer, error)
	ListTrainers(ctx context.Context) ([]Trainer, error)
}

type service struct {
	repo  Repository
	today func() calendar.Date
}

// NewService returns the facility service. today stamps trainer hire dates
// and defaults to calendar.Today when nil.
func NewService(repo Repository, today func() calendar.Date) Service {
	if today == nil {
		today = calendar.Today
	}
	return &service{repo: repo, today: today}
}

func (s *service) AddRoom(ctx context.Context, req CreateRoomRequest) (*Room, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.RoomType = strings.TrimSpace(req.RoomType)
	if err := api.ValidateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.RoomNameExists(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Validationf("a room named %q already exists", req.Name)
	}

	room := &Room{Name: req.Name, Capacity: req.Capacity, RoomType: req.RoomType}
	if room.RoomType == "" {
		room.RoomType = DefaultRoomType
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	logger.Info("room added", "room_id", room.ID, "name", room.Name, "capacity", room.Capacity)
	return room, nil
}

func (s *service) ListRooms(ctx context.Context) ([]Room, error) {
	return s.repo.ListRooms(ctx)
}

func (s *service) AddTrainer(ctx context.Context, req CreateTrainerRequest) (*Trainer, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Specialization = strings.TrimSpace(req.Specialization)
	if err := api.ValidateStruct(req); err != nil {
		return nil, err
	}

	trainer := &Trainer{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Specialization: req.Specialization,
		HireDate:       s.today(),
	}
	if err := s.repo.CreateTrainer(ctx, trainer); err != nil {
		return nil, err
	}

	logger.Info("trainer added", "trainer_id", trainer.ID, "name", trainer.FullName())
	return trainer, nil
}

func (s *service) ListTrainers(ctx context.Context) ([]Trainer, error) {
	return s.repo.ListTrainers(ctx)
}
