package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studiobook/internal/domain"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, e *domain.AvailabilityEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, scope domain.Scope, ownerID, entryID string) error {
	args := m.Called(ctx, scope, ownerID, entryID)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilityEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityEntry), args.Error(1)
}

func (m *MockRepository) ListByScope(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error) {
	args := m.Called(ctx, scope, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityEntry), args.Error(1)
}

type MockStudioRepository struct {
	mock.Mock
}

func (m *MockStudioRepository) GetByID(ctx context.Context, id string) (*domain.Studio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Studio), args.Error(1)
}

func absBlock(scope domain.Scope, ownerID string) domain.AvailabilityEntry {
	return domain.AvailabilityEntry{
		Kind:    domain.EntryBlock,
		Scope:   scope,
		OwnerID: ownerID,
		When: domain.Absolute{
			Start: time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		},
	}
}

func TestUpsertStudioScopeRequiresOwnership(t *testing.T) {
	repo := new(MockRepository)
	studios := new(MockStudioRepository)
	svc := NewService(repo, studios)

	studios.On("GetByID", mock.Anything, "studio-1").Return(&domain.Studio{ID: "studio-1", OwnerID: "owner-1"}, nil)

	_, err := svc.Upsert(context.Background(), "intruder", domain.RoleStudioOwner, absBlock(domain.ScopeStudio, "studio-1"))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	saved, err := svc.Upsert(context.Background(), "owner-1", domain.RoleStudioOwner, absBlock(domain.ScopeStudio, "studio-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "studio-1", saved.StudioID, "studio scope pins the studio id")
	assert.Equal(t, "owner-1", saved.CreatedBy)
}

func TestUpsertEngineerScopeSelfOnly(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStudioRepository))

	_, err := svc.Upsert(context.Background(), "eng-1", domain.RoleEngineer, absBlock(domain.ScopeEngineer, "eng-2"))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = svc.Upsert(context.Background(), "eng-1", domain.RoleArtist, absBlock(domain.ScopeEngineer, "eng-1"))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	saved, err := svc.Upsert(context.Background(), "eng-1", domain.RoleEngineer, absBlock(domain.ScopeEngineer, "eng-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeEngineer, saved.Scope)
}

func TestUpsertRejectsBookingHolds(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockStudioRepository))

	hold := absBlock(domain.ScopeEngineer, "eng-1")
	hold.Kind = domain.EntryBookingHold
	hold.SourceBookingID = "b-1"

	_, err := svc.Upsert(context.Background(), "eng-1", domain.RoleEngineer, hold)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpsertRejectsMismatchedTemporal(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockStudioRepository))

	e := absBlock(domain.ScopeEngineer, "eng-1")
	e.Kind = domain.EntryRecurring // recurring kind with an absolute shape

	_, err := svc.Upsert(context.Background(), "eng-1", domain.RoleEngineer, e)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpsertExistingKeepsProvenance(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStudioRepository))

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.On("GetByID", mock.Anything, "e-1").Return(&domain.AvailabilityEntry{
		ID: "e-1", Kind: domain.EntryBlock, Scope: domain.ScopeEngineer, OwnerID: "eng-1",
		CreatedAt: created, CreatedBy: "eng-1",
	}, nil)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	e := absBlock(domain.ScopeEngineer, "eng-1")
	e.ID = "e-1"
	saved, err := svc.Upsert(context.Background(), "eng-1", domain.RoleEngineer, e)
	require.NoError(t, err)
	assert.Equal(t, created, saved.CreatedAt)
	assert.True(t, saved.UpdatedAt.After(created))
}

func TestUpsertExistingCannotSwitchScope(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStudioRepository))

	repo.On("GetByID", mock.Anything, "e-1").Return(&domain.AvailabilityEntry{
		ID: "e-1", Kind: domain.EntryBlock, Scope: domain.ScopeEngineer, OwnerID: "eng-2",
	}, nil)

	e := absBlock(domain.ScopeEngineer, "eng-1")
	e.ID = "e-1"
	_, err := svc.Upsert(context.Background(), "eng-1", domain.RoleEngineer, e)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestDeleteAndList(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStudioRepository))

	repo.On("Delete", mock.Anything, domain.ScopeEngineer, "eng-1", "e-1").Return(nil)
	repo.On("ListByScope", mock.Anything, domain.ScopeEngineer, "eng-1").Return([]domain.AvailabilityEntry{}, nil)

	require.NoError(t, svc.Delete(context.Background(), "eng-1", domain.RoleEngineer, domain.ScopeEngineer, "eng-1", "e-1"))

	_, err := svc.List(context.Background(), "eng-1", domain.RoleEngineer, domain.ScopeEngineer, "eng-1")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "eng-2", domain.RoleEngineer, domain.ScopeEngineer, "eng-1", "e-1")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
