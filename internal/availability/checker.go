// Package availability answers whether a room or trainer is free for a
// half-open time interval on a given date. It never writes.
package availability

import (
	"context"
	"fmt"

	"fitclub/internal/calendar"
)

type ResourceKind string

const (
	ResourceRoom    ResourceKind = "room"
	ResourceTrainer ResourceKind = "trainer"
)

type Resource struct {
	Kind ResourceKind
	ID   int
}

func Room(id int) Resource    { return Resource{Kind: ResourceRoom, ID: id} }
func Trainer(id int) Resource { return Resource{Kind: ResourceTrainer, ID: id} }

func (r Resource) String() string {
	return fmt.Sprintf("%s %d", r.Kind, r.ID)
}

type BookingKind string

const (
	KindClass   BookingKind = "class"
	KindSession BookingKind = "session"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start calendar.TimeOfDay
	End   calendar.TimeOfDay
}

func NewInterval(start, end calendar.TimeOfDay) Interval {
	return Interval{Start: start, End: end}
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Overlaps reports whether a and b share any instant. Touching intervals do
// not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Occupancy is one existing booking holding a resource on a date.
type Occupancy struct {
	Kind     BookingKind
	ID       int
	Interval Interval
	// Active is false for PT sessions in Cancelled status.
	Active bool
}

// Source lists the bookings holding a resource on a date.
type Source interface {
	ClassOccupancy(ctx context.Context, r Resource, date calendar.Date) ([]Occupancy, error)
	SessionOccupancy(ctx context.Context, r Resource, date calendar.Date) ([]Occupancy, error)
}

type Checker struct {
	source Source
}

func NewChecker(source Source) *Checker {
	return &Checker{source: source}
}

// FirstConflict returns the first active booking of r on date that overlaps
// slot, or nil when the resource is free. excludeClassID skips one group class
// (a class being moved must not collide with itself); zero excludes nothing.
func (c *Checker) FirstConflict(ctx context.Context, r Resource, date calendar.Date, slot Interval, excludeClassID int) (*Occupancy, error) {
	classes, err := c.source.ClassOccupancy(ctx, r, date)
	if err != nil {
		return nil, fmt.Errorf("load classes for %s: %w", r, err)
	}
	for i := range classes {
		occ := classes[i]
		if excludeClassID != 0 && occ.ID == excludeClassID {
			continue
		}
		if Overlaps(occ.Interval, slot) {
			return &occ, nil
		}
	}

	sessions, err := c.source.SessionOccupancy(ctx, r, date)
	if err != nil {
		return nil, fmt.Errorf("load sessions for %s: %w", r, err)
	}
	for i := range sessions {
		occ := sessions[i]
		if !occ.Active {
			continue
		}
		if Overlaps(occ.Interval, slot) {
			return &occ, nil
		}
	}

	return nil, nil
}

func (c *Checker) IsRoomAvailable(ctx context.Context, roomID int, date calendar.Date, slot Interval, excludeClassID int) (bool, error) {
	conflict, err := c.FirstConflict(ctx, Room(roomID), date, slot, excludeClassID)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

func (c *Checker) IsTrainerAvailable(ctx context.Context, trainerID int, date calendar.Date, slot Interval, excludeClassID int) (bool, error) {
	conflict, err := c.FirstConflict(ctx, Trainer(trainerID), date, slot, excludeClassID)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}
