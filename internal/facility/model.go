package facility

import "fitclub/internal/calendar"

const DefaultRoomType = "General"

type Room struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
	RoomType string `db:"room_type" json:"room_type"`
}

type Trainer struct {
	ID             int           `db:"id" json:"id"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	Email          string        `db:"email" json:"email"`
	Specialization string        `db:"specialization" json:"specialization"`
	HireDate       calendar.Date `db:"hire_date" json:"hire_date" swaggertype:"string" example:"2025-01-10"`
}

func (t Trainer) FullName() string {
	return t.FirstName + " " + t.LastName
}

type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
	RoomType string `json:"room_type" binding:"max=50"`
}

type CreateTrainerRequest struct {
	FirstName      string `json:"first_name" binding:"required,max=100"`
	LastName       string `json:"last_name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,email,max=255"`
	Specialization string `json:"specialization" binding:"max=200"`
}
