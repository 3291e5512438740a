package schedule

import (
	"database/sql"
	"fmt"

	"fitclub/internal/calendar"
)

type EntryType string

const (
	TypeGroupClass EntryType = "Group Class"
	TypePTSession  EntryType = "PT Session"
)

// order puts classes ahead of sessions that start at the same minute.
func (t EntryType) order() int {
	if t == TypeGroupClass {
		return 0
	}
	return 1
}

type Entry struct {
	Type           EntryType          `json:"type"`
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Date           calendar.Date      `json:"date" swaggertype:"string" example:"2025-01-10"`
	StartTime      calendar.TimeOfDay `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime        calendar.TimeOfDay `json:"end_time" swaggertype:"string" example:"10:00"`
	Room           string             `json:"room"`
	CapacityStatus string             `json:"capacity_status,omitempty" example:"12/15"`
	Status         string             `json:"status,omitempty" example:"Scheduled"`
}

type ClassRow struct {
	ID            int                `db:"id"`
	ClassName     string             `db:"class_name"`
	ScheduledDate calendar.Date      `db:"scheduled_date"`
	StartTime     calendar.TimeOfDay `db:"start_time"`
	EndTime       calendar.TimeOfDay `db:"end_time"`
	Capacity      int                `db:"capacity"`
	Enrolled      int                `db:"enrolled"`
	RoomName      sql.NullString     `db:"room_name"`
}

type SessionRow struct {
	ID            int                `db:"id"`
	ScheduledDate calendar.Date      `db:"scheduled_date"`
	StartTime     calendar.TimeOfDay `db:"start_time"`
	EndTime       calendar.TimeOfDay `db:"end_time"`
	Status        string             `db:"status"`
	RoomName      sql.NullString     `db:"room_name"`
	MemberName    sql.NullString     `db:"member_name"`
}

func roomLabel(name sql.NullString) string {
	if name.Valid && name.String != "" {
		return name.String
	}
	return "Unassigned"
}

func (r ClassRow) Entry() Entry {
	return Entry{
		Type:           TypeGroupClass,
		ID:             r.ID,
		Name:           r.ClassName,
		Date:           r.ScheduledDate,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Room:           roomLabel(r.RoomName),
		CapacityStatus: fmt.Sprintf("%d/%d", r.Enrolled, r.Capacity),
	}
}

func (r SessionRow) Entry() Entry {
	member := "Unknown"
	if r.MemberName.Valid && r.MemberName.String != "" {
		member = r.MemberName.String
	}
	return Entry{
		Type:      TypePTSession,
		ID:        r.ID,
		Name:      "Session with " + member,
		Date:      r.ScheduledDate,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Room:      roomLabel(r.RoomName),
		Status:    r.Status,
	}
}
