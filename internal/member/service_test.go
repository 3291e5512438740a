package member

import (
	"context"
	"testing"
	"time"

	"fitclub/internal/apperrors"
	"fitclub/internal/calendar"
	"fitclub/internal/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, mem *Member) error {
	args := m.Called(ctx, mem)
	if args.Error(0) == nil {
		mem.ID = 1
	}
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}

func (m *MockRepository) SearchByName(ctx context.Context, fragment string) ([]Member, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}

func (m *MockRepository) RecentActivity(ctx context.Context, memberID, limit int) ([]Activity, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Activity), args.Error(1)
}

func (m *MockRepository) Summary(ctx context.Context, memberID int) (Summary, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(Summary), args.Error(1)
}

func (m *MockRepository) UpcomingSessions(ctx context.Context, memberID int, from calendar.Date) ([]UpcomingSession, error) {
	args := m.Called(ctx, memberID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UpcomingSession), args.Error(1)
}

func (m *MockRepository) UpcomingClasses(ctx context.Context, memberID int, from calendar.Date) ([]UpcomingClass, error) {
	args := m.Called(ctx, memberID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UpcomingClass), args.Error(1)
}

var today = calendar.NewDate(2025, time.January, 10)

func fixedToday() calendar.Date { return today }

func notFoundErr() error { return errors.Wrap(db.ErrNotFound, "find member") }

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{"Male", GenderMale, false},
		{"female", GenderFemale, false},
		{"OTHER", GenderOther, false},
		{" male ", GenderMale, false},
		{"robot", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGender(tt.in)
			if tt.wantErr {
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name      string
		req       RegisterRequest
		setupMock func(*MockRepository)
		wantKind  apperrors.Kind
	}{
		{
			name: "successful registration",
			req:  RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test", DateOfBirth: "1990-05-17", Gender: "female"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "cara@fitclub.test").Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(mem *Member) bool {
					return mem.Gender != nil && *mem.Gender == GenderFemale && mem.RegistrationDate == today
				})).Return(nil)
			},
		},
		{
			name: "without gender",
			req:  RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test", DateOfBirth: "1990-05-17"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "cara@fitclub.test").Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(mem *Member) bool { return mem.Gender == nil })).Return(nil)
			},
		},
		{
			name: "email already exists",
			req:  RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test", DateOfBirth: "1990-05-17"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "cara@fitclub.test").Return(true, nil)
			},
			wantKind: apperrors.KindValidation,
		},
		{
			name:      "invalid gender",
			req:       RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test", DateOfBirth: "1990-05-17", Gender: "robot"},
			setupMock: func(m *MockRepository) {},
			wantKind:  apperrors.KindValidation,
		},
		{
			name:      "bad date of birth",
			req:       RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test", DateOfBirth: "17/05/1990"},
			setupMock: func(m *MockRepository) {},
			wantKind:  apperrors.KindValidation,
		},
		{
			name:      "birth date in the future",
			req:       RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test", DateOfBirth: "2030-01-01"},
			setupMock: func(m *MockRepository) {},
			wantKind:  apperrors.KindValidation,
		},
		{
			name:      "invalid email",
			req:       RegisterRequest{FirstName: "Cara", LastName: "Diaz", Email: "cara", DateOfBirth: "1990-05-17"},
			setupMock: func(m *MockRepository) {},
			wantKind:  apperrors.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc := NewService(repo, fixedToday)

			m, err := svc.Register(context.Background(), tt.req)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, m.ID)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Search(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, fixedToday)

	repo.On("SearchByName", mock.Anything, "dia").Return([]Member{{ID: 1, FirstName: "Cara", LastName: "Diaz"}}, nil)
	repo.On("List", mock.Anything).Return([]Member{}, nil)

	found, err := svc.Search(context.Background(), " dia ")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	all, err := svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, all)
	repo.AssertExpectations(t)
}

func TestService_GetProfile(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, fixedToday)

	repo.On("FindByID", mock.Anything, 1).Return(&Member{ID: 1, FirstName: "Cara", LastName: "Diaz", Email: "cara@fitclub.test"}, nil)
	repo.On("RecentActivity", mock.Anything, 1, RecentActivityLimit).Return([]Activity{
		{ClassName: "Morning Yoga", AttendanceStatus: "Attended"},
		{ClassName: "Spin", AttendanceStatus: "Registered"},
	}, nil)
	repo.On("Summary", mock.Anything, 1).Return(Summary{TotalClassesEnrolled: 2, UpcomingClasses: 1}, nil)

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Cara Diaz", profile.FullName)
	assert.Equal(t, "N/A", profile.Gender)
	assert.Equal(t, []string{"Class: Morning Yoga (Attended)", "Class: Spin (Registered)"}, profile.RecentActivity)
	assert.Equal(t, 2, profile.TotalClassesEnrolled)
}

func TestService_GetProfileNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, fixedToday)

	repo.On("FindByID", mock.Anything, 9).Return(nil, notFoundErr())

	_, err := svc.GetProfile(context.Background(), 9)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "member 9 not found", err.Error())
}

func TestService_GetDashboard(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, fixedToday)

	repo.On("FindByID", mock.Anything, 1).Return(&Member{ID: 1, FirstName: "Cara", LastName: "Diaz"}, nil)
	repo.On("UpcomingSessions", mock.Anything, 1, today).Return([]UpcomingSession{
		{ID: 4, TrainerName: "Ana Lopez", RoomName: "Studio 1", ScheduledDate: today.AddDays(2)},
	}, nil)
	repo.On("UpcomingClasses", mock.Anything, 1, today).Return([]UpcomingClass{}, nil)

	dash, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Member.ID)
	require.Len(t, dash.UpcomingSessions, 1)
	assert.Equal(t, "Ana Lopez", dash.UpcomingSessions[0].TrainerName)
	assert.Empty(t, dash.UpcomingClasses)
	repo.AssertExpectations(t)
}
