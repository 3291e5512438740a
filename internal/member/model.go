package member

import (
	"strings"

	"fitclub/internal/apperrors"
	"fitclub/internal/calendar"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender accepts the exact label or any casing of it ("male", "FEMALE").
func ParseGender(s string) (Gender, error) {
	s = strings.TrimSpace(s)
	for _, g := range Genders {
		if string(g) == s {
			return g, nil
		}
	}
	for _, g := range Genders {
		if strings.EqualFold(string(g), s) {
			return g, nil
		}
	}
	return "", apperrors.Validationf("invalid gender %q, must be Male, Female or Other", s)
}

type Member struct {
	ID               int           `db:"id" json:"id"`
	FirstName        string        `db:"first_name" json:"first_name"`
	LastName         string        `db:"last_name" json:"last_name"`
	Email            string        `db:"email" json:"email"`
	DateOfBirth      calendar.Date `db:"date_of_birth" json:"date_of_birth" swaggertype:"string" example:"1990-05-17"`
	Gender           *Gender       `db:"gender" json:"gender,omitempty" swaggertype:"string" example:"Female"`
	RegistrationDate calendar.Date `db:"registration_date" json:"registration_date" swaggertype:"string" example:"2025-01-10"`
}

func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// Activity is one class enrollment shown on a member profile.
type Activity struct {
	ClassName        string `db:"class_name" json:"class_name"`
	AttendanceStatus string `db:"attendance_status" json:"attendance_status"`
}

func (a Activity) String() string {
	return "Class: " + a.ClassName + " (" + a.AttendanceStatus + ")"
}

// Summary counts a member's active enrollments.
type Summary struct {
	TotalClassesEnrolled int `db:"total_classes_enrolled" json:"total_classes_enrolled"`
	UpcomingClasses      int `db:"upcoming_classes" json:"upcoming_classes"`
}

type Profile struct {
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	Gender         string   `json:"gender" example:"N/A"`
	RecentActivity []string `json:"recent_activity"`
	Summary
}

type UpcomingSession struct {
	ID            int                `db:"id" json:"id"`
	TrainerName   string             `db:"trainer_name" json:"trainer_name"`
	RoomName      string             `db:"room_name" json:"room_name"`
	ScheduledDate calendar.Date      `db:"scheduled_date" json:"scheduled_date" swaggertype:"string" example:"2025-01-10"`
	StartTime     calendar.TimeOfDay `db:"start_time" json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime       calendar.TimeOfDay `db:"end_time" json:"end_time" swaggertype:"string" example:"10:00"`
	Notes         *string            `db:"notes" json:"notes,omitempty"`
}

type UpcomingClass struct {
	EnrollmentID  int                `db:"enrollment_id" json:"enrollment_id"`
	ClassID       int                `db:"class_id" json:"class_id"`
	ClassName     string             `db:"class_name" json:"class_name"`
	TrainerName   string             `db:"trainer_name" json:"trainer_name"`
	RoomName      string             `db:"room_name" json:"room_name"`
	ScheduledDate calendar.Date      `db:"scheduled_date" json:"scheduled_date" swaggertype:"string" example:"2025-01-10"`
	StartTime     calendar.TimeOfDay `db:"start_time" json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime       calendar.TimeOfDay `db:"end_time" json:"end_time" swaggertype:"string" example:"10:00"`
}

type Dashboard struct {
	Member           Member            `json:"member"`
	UpcomingSessions []UpcomingSession `json:"upcoming_sessions"`
	UpcomingClasses  []UpcomingClass   `json:"upcoming_classes"`
}

type RegisterRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email,max=255"`
	DateOfBirth string `json:"date_of_birth" binding:"required" example:"1990-05-17"`
	Gender      string `json:"gender" example:"Female"`
}
