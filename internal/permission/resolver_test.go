package permission

import (
	apiError "collaborative-presentation-server/internal/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) PresentationOwner(ctx context.Context, presentationID uint64) (uint64, error) {
	args := m.Called(ctx, presentationID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockStore) CollaboratorLevel(ctx context.Context, presentationID uint64, userID uint64) (string, error) {
	args := m.Called(ctx, presentationID, userID)
	return args.String(0), args.Error(1)
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelEdit.AtLeast(LevelView))
	assert.True(t, LevelAdmin.AtLeast(LevelEdit))
	assert.True(t, LevelView.AtLeast(LevelView))
	assert.False(t, LevelView.AtLeast(LevelEdit))
	assert.False(t, LevelEdit.AtLeast(LevelAdmin))
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("edit")
	assert.True(t, ok)
	assert.Equal(t, LevelEdit, level)

	_, ok = ParseLevel("owner")
	assert.False(t, ok)

	_, ok = ParseLevel("")
	assert.False(t, ok)
}

func TestResolve_OwnerIsAlwaysAdmin(t *testing.T) {
	store := new(MockStore)
	resolver := NewResolver(store)

	store.On("PresentationOwner", mock.Anything, uint64(10)).Return(uint64(1), nil)

	level, err := resolver.Resolve(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.Equal(t, LevelAdmin, level)
	// the collaborator table is never consulted for the owner
	store.AssertNotCalled(t, "CollaboratorLevel", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_CollaboratorLevel(t *testing.T) {
	store := new(MockStore)
	resolver := NewResolver(store)

	store.On("PresentationOwner", mock.Anything, uint64(10)).Return(uint64(1), nil)
	store.On("CollaboratorLevel", mock.Anything, uint64(10), uint64(2)).Return("edit", nil)

	level, err := resolver.Resolve(context.Background(), 10, 2)

	assert.NoError(t, err)
	assert.Equal(t, LevelEdit, level)
}

// A user with no collaborator row is denied, never defaulted to a level
func TestResolve_UnknownUserDenied(t *testing.T) {
	store := new(MockStore)
	resolver := NewResolver(store)

	store.On("PresentationOwner", mock.Anything, uint64(10)).Return(uint64(1), nil)
	store.On("CollaboratorLevel", mock.Anything, uint64(10), uint64(99)).Return("", gorm.ErrRecordNotFound)

	_, err := resolver.Resolve(context.Background(), 10, 99)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindNotFound, apiErr.Kind)
}

func TestResolve_UnknownPresentation(t *testing.T) {
	store := new(MockStore)
	resolver := NewResolver(store)

	store.On("PresentationOwner", mock.Anything, uint64(404)).Return(uint64(0), gorm.ErrRecordNotFound)

	_, err := resolver.Resolve(context.Background(), 404, 1)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindNotFound, apiErr.Kind)
}

func TestAuthorize_DeniedBelowRequired(t *testing.T) {
	store := new(MockStore)
	resolver := NewResolver(store)

	store.On("PresentationOwner", mock.Anything, uint64(10)).Return(uint64(1), nil)
	store.On("CollaboratorLevel", mock.Anything, uint64(10), uint64(2)).Return("view", nil)

	_, err := resolver.Authorize(context.Background(), 10, 2, LevelEdit)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindPermissionDenied, apiErr.Kind)
}

func TestAuthorize_ReturnsResolvedLevel(t *testing.T) {
	store := new(MockStore)
	resolver := NewResolver(store)

	store.On("PresentationOwner", mock.Anything, uint64(10)).Return(uint64(1), nil)
	store.On("CollaboratorLevel", mock.Anything, uint64(10), uint64(2)).Return("admin", nil)

	level, err := resolver.Authorize(context.Background(), 10, 2, LevelEdit)

	assert.NoError(t, err)
	assert.Equal(t, LevelAdmin, level)
}
