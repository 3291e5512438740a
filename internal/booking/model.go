package booking

import (
	"strings"

	"fitclub/internal/apperrors"
	"fitclub/internal/availability"
	"fitclub/internal/calendar"
)

type SessionStatus string

const (
	StatusScheduled SessionStatus = "Scheduled"
	StatusCompleted SessionStatus = "Completed"
	StatusCancelled SessionStatus = "Cancelled"
	StatusNoShow    SessionStatus = "No Show"
)

var SessionStatuses = []SessionStatus{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow}

// Active reports whether a session in this status holds its room and trainer.
func (s SessionStatus) Active() bool {
	return s != StatusCancelled
}

// ParseSessionStatus matches the exact value first, then a case-insensitive
// form that also accepts "No-Show" and "noshow".
func ParseSessionStatus(raw string) (SessionStatus, error) {
	for _, s := range SessionStatuses {
		if raw == string(s) {
			return s, nil
		}
	}
	folded := strings.NewReplacer("-", "", " ", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range SessionStatuses {
		if folded == strings.ReplaceAll(strings.ToLower(string(s)), " ", "") {
			return s, nil
		}
	}

	names := make([]string, len(SessionStatuses))
	for i, s := range SessionStatuses {
		names[i] = string(s)
	}
	return "", apperrors.Validationf("invalid status %q, valid options are: %s", raw, strings.Join(names, ", ")).
		WithDetails(map[string]any{"valid": names})
}

type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "Registered"
	AttendanceAttended   AttendanceStatus = "Attended"
	AttendanceAbsent     AttendanceStatus = "Absent"
	AttendanceCancelled  AttendanceStatus = "Cancelled"
)

func (a AttendanceStatus) Active() bool {
	return a == AttendanceRegistered || a == AttendanceAttended
}

type RoomInfo struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}

type GroupClass struct {
	ID            int                `db:"id" json:"id"`
	ClassName     string             `db:"class_name" json:"class_name"`
	TrainerID     int                `db:"trainer_id" json:"trainer_id"`
	RoomID        int                `db:"room_id" json:"room_id"`
	ScheduledDate calendar.Date      `db:"scheduled_date" json:"scheduled_date" swaggertype:"string" example:"2025-01-10"`
	StartTime     calendar.TimeOfDay `db:"start_time" json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime       calendar.TimeOfDay `db:"end_time" json:"end_time" swaggertype:"string" example:"10:00"`
	Capacity      int                `db:"capacity" json:"capacity"`
}

func (c GroupClass) Slot() availability.Interval {
	return availability.NewInterval(c.StartTime, c.EndTime)
}

type PTSession struct {
	ID            int                `db:"id" json:"id"`
	MemberID      int                `db:"member_id" json:"member_id"`
	TrainerID     int                `db:"trainer_id" json:"trainer_id"`
	RoomID        int                `db:"room_id" json:"room_id"`
	ScheduledDate calendar.Date      `db:"scheduled_date" json:"scheduled_date" swaggertype:"string" example:"2025-01-10"`
	StartTime     calendar.TimeOfDay `db:"start_time" json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime       calendar.TimeOfDay `db:"end_time" json:"end_time" swaggertype:"string" example:"10:00"`
	Status        SessionStatus      `db:"status" json:"status"`
	Notes         *string            `db:"notes" json:"notes,omitempty"`
}

func (s PTSession) Slot() availability.Interval {
	return availability.NewInterval(s.StartTime, s.EndTime)
}

type Enrollment struct {
	ID               int              `db:"id" json:"id"`
	ClassID          int              `db:"class_id" json:"class_id"`
	MemberID         int              `db:"member_id" json:"member_id"`
	EnrollmentDate   calendar.Date    `db:"enrollment_date" json:"enrollment_date" swaggertype:"string" example:"2025-01-08"`
	AttendanceStatus AttendanceStatus `db:"attendance_status" json:"attendance_status"`
}

// ClassListing is a class joined with its room, trainer and active head count.
type ClassListing struct {
	GroupClass
	RoomName    string `db:"room_name" json:"room_name"`
	TrainerName string `db:"trainer_name" json:"trainer_name"`
	Enrolled    int    `db:"enrolled" json:"enrolled"`
}

// Contact is who gets told about a booking change.
type Contact struct {
	MemberID int    `db:"member_id" json:"member_id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
}

type ClassInput struct {
	Name      string
	TrainerID int
	RoomID    int
	Date      calendar.Date
	Start     calendar.TimeOfDay
	End       calendar.TimeOfDay
	Capacity  int
}

type RescheduleInput struct {
	Date  calendar.Date
	Start calendar.TimeOfDay
	End   calendar.TimeOfDay
}

type SessionInput struct {
	MemberID  int
	TrainerID int
	RoomID    int
	Date      calendar.Date
	Start     calendar.TimeOfDay
	End       calendar.TimeOfDay
	Notes     *string
}

type CreateClassRequest struct {
	ClassName string             `json:"class_name" binding:"required,max=100" example:"Morning Yoga"`
	TrainerID int                `json:"trainer_id" binding:"required,gt=0" example:"1"`
	RoomID    int                `json:"room_id" binding:"required,gt=0" example:"3"`
	Date      calendar.Date      `json:"scheduled_date" swaggertype:"string" example:"2025-01-10"`
	StartTime calendar.TimeOfDay `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime   calendar.TimeOfDay `json:"end_time" swaggertype:"string" example:"10:00"`
	Capacity  int                `json:"capacity" binding:"required,gt=0" example:"15"`
}

type RescheduleClassRequest struct {
	Date      calendar.Date      `json:"scheduled_date" swaggertype:"string" example:"2025-01-11"`
	StartTime calendar.TimeOfDay `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime   calendar.TimeOfDay `json:"end_time" swaggertype:"string" example:"10:00"`
}

type CreateSessionRequest struct {
	MemberID  int                `json:"member_id" binding:"required,gt=0" example:"4"`
	TrainerID int                `json:"trainer_id" binding:"required,gt=0" example:"2"`
	RoomID    int                `json:"room_id" binding:"required,gt=0" example:"1"`
	Date      calendar.Date      `json:"scheduled_date" swaggertype:"string" example:"2025-01-10"`
	StartTime calendar.TimeOfDay `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime   calendar.TimeOfDay `json:"end_time" swaggertype:"string" example:"10:00"`
	Notes     *string            `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

type EnrollRequest struct {
	MemberID int `json:"member_id" binding:"required,gt=0" example:"4"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Completed"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=1000" example:"Focus on mobility"`
}
