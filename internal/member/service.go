// Package member registers gym members and assembles their profile and
// dashboard views.
package member

import (
	"context"
	"strings"

	"fitclub/internal/api"
	"fitclub/internal/apperrors"
	"fitclub/internal/calendar"
	"fitclub/internal/db"
	"fitclub/internal/logger"

	"golang.org/x/sync/errgroup"
)

// RecentActivityLimit caps the enrollments listed on a profile.
const RecentActivityLimit = 5

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, error)
	Get(ctx context.Context, id int) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	Search(ctx context.Context, name string) ([]Member, error)
	GetProfile(ctx context.Context, id int) (*Profile, error)
	GetDashboard(ctx context.Context, id int) (*Dashboard, error)
}

type service struct {
	repo  Repository
	today func() calendar.Date
}

func NewService(repo Repository, today func() calendar.Date) Service {
	if today == nil {
		today = calendar.Today
	}
	return &service{repo: repo, today: today}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Member, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if err := api.ValidateStruct(req); err != nil {
		return nil, err
	}

	dob, err := calendar.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if dob.After(s.today()) {
		return nil, apperrors.Validation("date of birth cannot be in the future")
	}

	m := &Member{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		DateOfBirth:      dob,
		RegistrationDate: s.today(),
	}
	if strings.TrimSpace(req.Gender) != "" {
		g, err := ParseGender(req.Gender)
		if err != nil {
			return nil, err
		}
		m.Gender = &g
	}

	exists, err := s.repo.EmailExists(ctx, m.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Validationf("a member with email %s already exists", m.Email)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.Info("member registered", "member_id", m.ID, "email", m.Email)
	return m, nil
}

func (s *service) Get(ctx context.Context, id int) (*Member, error) {
	m, err := s.repo.FindByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, apperrors.NotFound("member", id)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}

// Search matches name against first and last names, ignoring case. A blank
// name lists everyone.
func (s *service) Search(ctx context.Context, name string) ([]Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.repo.List(ctx)
	}
	return s.repo.SearchByName(ctx, name)
}

func (s *service) GetProfile(ctx context.Context, id int) (*Profile, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		activity []Activity
		summary  Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activity, err = s.repo.RecentActivity(gctx, id, RecentActivityLimit)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.repo.Summary(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &Profile{
		FullName:       m.FullName(),
		Email:          m.Email,
		Gender:         "N/A",
		RecentActivity: make([]string, 0, len(activity)),
		Summary:        summary,
	}
	if m.Gender != nil {
		profile.Gender = string(*m.Gender)
	}
	for _, a := range activity {
		profile.RecentActivity = append(profile.RecentActivity, a.String())
	}
	return profile, nil
}

func (s *service) GetDashboard(ctx context.Context, id int) (*Dashboard, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.today()
	dash := &Dashboard{Member: *m}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dash.UpcomingSessions, err = s.repo.UpcomingSessions(gctx, id, today)
		return err
	})
	g.Go(func() error {
		var err error
		dash.UpcomingClasses, err = s.repo.UpcomingClasses(gctx, id, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}
