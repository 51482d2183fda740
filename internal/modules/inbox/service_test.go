package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studiobook/internal/domain"
)

// Mock sources

type MockBookingSource struct {
	mock.Mock
}

func (m *MockBookingSource) ListByArtist(ctx context.Context, artistID string) ([]domain.Booking, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingSource) ListByEngineer(ctx context.Context, engineerID string) ([]domain.Booking, error) {
	args := m.Called(ctx, engineerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingSource) ListByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockUserSource struct {
	mock.Mock
}

func (m *MockUserSource) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockStudioSource struct {
	mock.Mock
}

func (m *MockStudioSource) GetByID(ctx context.Context, id string) (*domain.Studio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Studio), args.Error(1)
}

type MockReviewSource struct {
	mock.Mock
}

func (m *MockReviewSource) Reviewed(ctx context.Context, bookingID, reviewerID string) (bool, error) {
	args := m.Called(ctx, bookingID, reviewerID)
	return args.Bool(0), args.Error(1)
}

type MockBookingActions struct {
	mock.Mock
}

func (m *MockBookingActions) Approve(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actorID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingActions) Decline(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actorID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingActions) Cancel(ctx context.Context, bookingID, actorID string, role domain.Role, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actorID, role, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// Fixtures

func at(daysFromNow int, hour int) time.Time {
	return time.Now().UTC().AddDate(0, 0, daysFromNow).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour)
}

func mkBooking(id string, status domain.BookingStatus, start time.Time, reqEng, reqStudio bool) domain.Booking {
	return domain.Booking{
		ID:             id,
		ArtistID:       "artist-1",
		EngineerID:     "eng-1",
		StudioID:       "studio-1",
		RoomID:         "room-1",
		RequestedStart: start,
		RequestedEnd:   start.Add(2 * time.Hour),
		Status:         status,
		Approval: domain.Approval{
			RequiresStudioApproval:   reqStudio,
			RequiresEngineerApproval: reqEng,
		},
	}
}

func newTestService(bookings *MockBookingSource, users *MockUserSource, studios *MockStudioSource, reviews *MockReviewSource, actions *MockBookingActions) *Service {
	return NewService(bookings, users, studios, reviews, actions, NewNameCache(nil, time.Minute))
}

func stubNames(users *MockUserSource, studios *MockStudioSource) {
	users.On("ListByIDs", mock.Anything, mock.Anything).Return([]domain.User{
		{ID: "artist-1", Name: "Nina"},
		{ID: "eng-1", Name: "Marcus"},
	}, nil)
	studios.On("GetByID", mock.Anything, "studio-1").Return(&domain.Studio{ID: "studio-1", Name: "Abbey Lane"}, nil)
}

// Tests

func TestLoadArtistBuckets(t *testing.T) {
	bookings := new(MockBookingSource)
	users := new(MockUserSource)
	studios := new(MockStudioSource)
	reviews := new(MockReviewSource)
	svc := newTestService(bookings, users, studios, reviews, new(MockBookingActions))

	stubNames(users, studios)
	bookings.On("ListByArtist", mock.Anything, "artist-1").Return([]domain.Booking{
		mkBooking("b-pending", domain.BookingPending, at(3, 10), true, true),
		mkBooking("b-upcoming", domain.BookingConfirmed, at(5, 10), false, false),
		mkBooking("b-done", domain.BookingCompleted, at(-3, 10), false, false),
		mkBooking("b-gone", domain.BookingCancelled, at(-1, 10), false, false),
	}, nil)
	reviews.On("Reviewed", mock.Anything, "b-done", "artist-1").Return(false, nil)

	inbox, err := svc.Load(context.Background(), "artist-1", domain.RoleArtist)
	require.NoError(t, err)

	require.Len(t, inbox.PendingApprovals, 1)
	assert.Equal(t, "b-pending", inbox.PendingApprovals[0].Booking.ID)
	require.Len(t, inbox.Upcoming, 1)
	assert.Equal(t, "b-upcoming", inbox.Upcoming[0].Booking.ID)
	require.Len(t, inbox.Past, 1)
	require.Len(t, inbox.Cancelled, 1)
	require.Len(t, inbox.NeedsReview, 1)
	assert.Equal(t, "b-done", inbox.NeedsReview[0].Booking.ID)

	assert.Equal(t, "Nina", inbox.Upcoming[0].ArtistName)
	assert.Equal(t, "Marcus", inbox.Upcoming[0].EngineerName)
	assert.Equal(t, "Abbey Lane", inbox.Upcoming[0].StudioName)
}

func TestLoadEngineerActionableFirst(t *testing.T) {
	bookings := new(MockBookingSource)
	users := new(MockUserSource)
	studios := new(MockStudioSource)
	svc := newTestService(bookings, users, studios, new(MockReviewSource), new(MockBookingActions))

	stubNames(users, studios)
	bookings.On("ListByEngineer", mock.Anything, "eng-1").Return([]domain.Booking{
		// Earlier start, but the engineer already signed off.
		mkBooking("b-waiting-studio", domain.BookingPending, at(2, 10), false, true),
		mkBooking("b-needs-me", domain.BookingPending, at(4, 10), true, true),
	}, nil)

	inbox, err := svc.Load(context.Background(), "eng-1", domain.RoleEngineer)
	require.NoError(t, err)

	require.Len(t, inbox.PendingApprovals, 2)
	assert.Equal(t, "b-needs-me", inbox.PendingApprovals[0].Booking.ID)
	assert.Equal(t, "b-waiting-studio", inbox.PendingApprovals[1].Booking.ID)
}

func TestLoadOwnerActionableFirst(t *testing.T) {
	bookings := new(MockBookingSource)
	users := new(MockUserSource)
	studios := new(MockStudioSource)
	svc := newTestService(bookings, users, studios, new(MockReviewSource), new(MockBookingActions))

	stubNames(users, studios)
	bookings.On("ListByOwner", mock.Anything, "owner-1").Return([]domain.Booking{
		mkBooking("b-waiting-eng", domain.BookingPending, at(2, 10), true, false),
		mkBooking("b-needs-studio", domain.BookingReschedulePending, at(4, 10), false, true),
	}, nil)

	inbox, err := svc.Load(context.Background(), "owner-1", domain.RoleStudioOwner)
	require.NoError(t, err)

	require.Len(t, inbox.PendingApprovals, 2)
	assert.Equal(t, "b-needs-studio", inbox.PendingApprovals[0].Booking.ID)
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	svc := newTestService(new(MockBookingSource), new(MockUserSource), new(MockStudioSource), new(MockReviewSource), new(MockBookingActions))

	inbox, err := svc.Load(context.Background(), "u-1", domain.ParseRole("viewer"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	require.NotNil(t, inbox)
	assert.Empty(t, inbox.PendingApprovals)

	_, err = svc.Load(context.Background(), "u-1", domain.ParseRole("admin"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoadRoleSwitchEvictsCache(t *testing.T) {
	bookings := new(MockBookingSource)
	users := new(MockUserSource)
	studios := new(MockStudioSource)
	svc := newTestService(bookings, users, studios, new(MockReviewSource), new(MockBookingActions))

	stubNames(users, studios)
	list := []domain.Booking{mkBooking("b-1", domain.BookingConfirmed, at(5, 10), false, false)}
	bookings.On("ListByArtist", mock.Anything, "u-1").Return(list, nil)
	bookings.On("ListByEngineer", mock.Anything, "u-1").Return(list, nil)

	_, err := svc.Load(context.Background(), "u-1", domain.RoleArtist)
	require.NoError(t, err)
	users.AssertNumberOfCalls(t, "ListByIDs", 1)

	// Same viewer, same role: names come from the cache.
	_, err = svc.Load(context.Background(), "u-1", domain.RoleArtist)
	require.NoError(t, err)
	users.AssertNumberOfCalls(t, "ListByIDs", 1)

	// Role switch evicts, forcing a re-resolve.
	_, err = svc.Load(context.Background(), "u-1", domain.RoleEngineer)
	require.NoError(t, err)
	users.AssertNumberOfCalls(t, "ListByIDs", 2)
}

func TestMutationsDelegate(t *testing.T) {
	actions := new(MockBookingActions)
	svc := newTestService(new(MockBookingSource), new(MockUserSource), new(MockStudioSource), new(MockReviewSource), actions)

	want := &domain.Booking{ID: "b-1", Status: domain.BookingConfirmed}
	actions.On("Approve", mock.Anything, "b-1", "eng-1", domain.RoleEngineer).Return(want, nil)
	actions.On("Cancel", mock.Anything, "b-1", "artist-1", domain.RoleArtist, "sick").Return(want, nil)

	got, err := svc.Approve(context.Background(), "b-1", "eng-1", domain.RoleEngineer)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.Cancel(context.Background(), "b-1", "artist-1", domain.RoleArtist, "sick")
	require.NoError(t, err)
	actions.AssertExpectations(t)
}
