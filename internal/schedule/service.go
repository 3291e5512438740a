// Package schedule merges a trainer's or room's classes and PT sessions into
// one chronological timeline.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fitclub/internal/apperrors"
	"fitclub/internal/availability"
	"fitclub/internal/cache"
	"fitclub/internal/calendar"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"

	"golang.org/x/sync/errgroup"
)

type Service interface {
	GetSchedule(ctx context.Context, trainerID int, from, to calendar.Date) ([]Entry, error)
	GetRoomSchedule(ctx context.Context, roomID int, from, to calendar.Date) ([]Entry, error)
	InvalidateSchedules(ctx context.Context, trainerID, roomID int)
}

type service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewService caches timelines for ttl. A zero ttl or nil cache disables caching.
func NewService(repo Repository, c cache.Cache, ttl time.Duration) Service {
	if c == nil || ttl <= 0 {
		c = cache.Nop{}
	}
	return &service{repo: repo, cache: c, ttl: ttl}
}

func (s *service) GetSchedule(ctx context.Context, trainerID int, from, to calendar.Date) ([]Entry, error) {
	return s.timeline(ctx, availability.Trainer(trainerID), from, to)
}

func (s *service) GetRoomSchedule(ctx context.Context, roomID int, from, to calendar.Date) ([]Entry, error) {
	return s.timeline(ctx, availability.Room(roomID), from, to)
}

func cachePrefix(owner availability.Resource) string {
	return fmt.Sprintf("schedule:%s:%d:", owner.Kind, owner.ID)
}

func cacheKey(owner availability.Resource, from, to calendar.Date) string {
	return fmt.Sprintf("%s%s:%s", cachePrefix(owner), from, to)
}

func (s *service) timeline(ctx context.Context, owner availability.Resource, from, to calendar.Date) ([]Entry, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, apperrors.Validation("start_date and end_date are required")
	}
	if from.After(to) {
		return nil, apperrors.Validationf("start date %s is after end date %s", from, to)
	}

	key := cacheKey(owner, from, to)
	var cached []Entry
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.RecordCacheLookup(true)
		return cached, nil
	case !errors.Is(err, cache.ErrMiss):
		logger.Warn("schedule cache read failed", "key", key, "error", err)
	}
	metrics.RecordCacheLookup(false)

	ok, err := s.repo.OwnerExists(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound(string(owner.Kind), owner.ID)
	}

	var (
		classes  []ClassRow
		sessions []SessionRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		classes, err = s.repo.ClassesBetween(gctx, owner, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.repo.SessionsBetween(gctx, owner, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := Merge(classes, sessions)

	if err := s.cache.Save(ctx, key, entries, s.ttl); err != nil {
		logger.Warn("schedule cache write failed", "key", key, "error", err)
	}
	return entries, nil
}

// Merge projects both booking kinds into entries sorted by date and start
// time, then by type and id so equal starts always come out the same way.
func Merge(classes []ClassRow, sessions []SessionRow) []Entry {
	entries := make([]Entry, 0, len(classes)+len(sessions))
	for _, c := range classes {
		entries = append(entries, c.Entry())
	}
	for _, ps := range sessions {
		entries = append(entries, ps.Entry())
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c < 0
		}
		if a.Type != b.Type {
			return a.Type.order() < b.Type.order()
		}
		return a.ID < b.ID
	})
	return entries
}

func (s *service) InvalidateSchedules(ctx context.Context, trainerID, roomID int) {
	for _, owner := range []availability.Resource{availability.Trainer(trainerID), availability.Room(roomID)} {
		if err := s.cache.Clear(ctx, cachePrefix(owner)); err != nil {
			logger.Warn("schedule cache invalidation failed", "owner", owner.String(), "error", err)
		}
	}
}
