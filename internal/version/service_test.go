package version

import (
	"collaborative-presentation-server/internal/domain"
	apiError "collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/realtime"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// allowAll grants every caller the level it asks for
type allowAll struct{}

func (allowAll) Resolve(ctx context.Context, presentationID uint64, userID uint64) (permission.Level, error) {
	return permission.LevelAdmin, nil
}

func (allowAll) Authorize(ctx context.Context, presentationID uint64, userID uint64, required permission.Level) (permission.Level, error) {
	return required, nil
}

type nopBus struct{}

func (nopBus) Publish(presentationID uint64, eventType string, payload any) {}

func (nopBus) Subscribe(ctx context.Context, presentationID uint64) (<-chan realtime.Event, error) {
	return nil, nil
}

// MockAuthorizer is a mock implementation of permission.Authorizer
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Resolve(ctx context.Context, presentationID uint64, userID uint64) (permission.Level, error) {
	args := m.Called(ctx, presentationID, userID)
	return args.Get(0).(permission.Level), args.Error(1)
}

func (m *MockAuthorizer) Authorize(ctx context.Context, presentationID uint64, userID uint64, required permission.Level) (permission.Level, error) {
	args := m.Called(ctx, presentationID, userID, required)
	return args.Get(0).(permission.Level), args.Error(1)
}

func newSqliteService(t *testing.T) Service {
	t.Helper()
	return NewService(NewRepository(newTestDB(t)), allowAll{}, nopBus{})
}

func TestCreateVersion_DefaultsToMainBranch(t *testing.T) {
	service := newSqliteService(t)

	version, err := service.CreateVersion(context.Background(), 1, "", 10, []byte(`{"slides":[]}`), "initial")

	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultBranch, version.BranchName)
	assert.Equal(t, uint64(1), version.VersionNumber)
	assert.True(t, version.IsCurrent)
}

func TestCreateVersion_RequiresEdit(t *testing.T) {
	authorizer := new(MockAuthorizer)
	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(10), permission.LevelEdit).
		Return(permission.Level(0), apiError.PermissionDenied("Requires edit access", nil))
	service := NewService(NewRepository(newTestDB(t)), authorizer, nopBus{})

	_, err := service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte("{}"), "")

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindPermissionDenied, apiErr.Kind)
}

func TestCreateBranch_ForksFromVersion(t *testing.T) {
	service := newSqliteService(t)

	v1, _ := service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte(`{"slides":1}`), "")
	service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte(`{"slides":2}`), "")

	branch, err := service.CreateBranch(context.Background(), 1, v1.ID, "draft", 10)

	assert.NoError(t, err)
	assert.Equal(t, "draft", branch.BranchName)
	assert.Equal(t, uint64(1), branch.VersionNumber)
	assert.Equal(t, v1.ID, *branch.ParentVersionID)
	assert.Equal(t, []byte(`{"slides":1}`), branch.Snapshot)
	assert.Equal(t, "Branched from main v1", branch.ChangeSummary)
}

func TestCreateBranch_NameTaken(t *testing.T) {
	service := newSqliteService(t)

	v1, _ := service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte("{}"), "")

	_, err := service.CreateBranch(context.Background(), 1, v1.ID, domain.DefaultBranch, 10)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindBranchNameTaken, apiErr.Kind)
}

func TestCreateBranch_UnknownVersion(t *testing.T) {
	service := newSqliteService(t)

	service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte("{}"), "")

	_, err := service.CreateBranch(context.Background(), 1, 999, "draft", 10)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindVersionNotFound, apiErr.Kind)
}

// Restoring appends a copy to the tip and leaves the restored-from
// version untouched and addressable
func TestRestore_AppendsWithoutRewritingHistory(t *testing.T) {
	service := newSqliteService(t)

	v1, _ := service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte(`{"n":1}`), "")
	service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte(`{"n":2}`), "")

	restored, err := service.Restore(context.Background(), 1, domain.DefaultBranch, v1.ID, 10)

	assert.NoError(t, err)
	assert.Equal(t, uint64(3), restored.VersionNumber)
	assert.Equal(t, []byte(`{"n":1}`), restored.Snapshot)
	assert.Equal(t, "Restored from main v1", restored.ChangeSummary)

	chain, err := service.ListChain(context.Background(), 1, 10, domain.DefaultBranch)
	assert.NoError(t, err)
	assert.Len(t, chain, 3)
	assert.Equal(t, []byte(`{"n":1}`), chain[0].Snapshot)
	assert.True(t, chain[2].IsCurrent)
	assert.False(t, chain[1].IsCurrent)
}

// Restore targets an existing branch only; it never creates one as a
// side effect
func TestRestore_UnknownBranchRejected(t *testing.T) {
	service := newSqliteService(t)

	v1, _ := service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte("{}"), "")

	_, err := service.Restore(context.Background(), 1, "ghost", v1.ID, 10)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindNotFound, apiErr.Kind)

	branches, err := service.ListBranches(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultBranch}, branches)
}

func TestCurrentVersion_FollowsRestore(t *testing.T) {
	service := newSqliteService(t)

	v1, _ := service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte(`{"n":1}`), "")
	service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte(`{"n":2}`), "")

	current, err := service.CurrentVersion(context.Background(), 1, 10, "")
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), current.VersionNumber)

	_, err = service.Restore(context.Background(), 1, domain.DefaultBranch, v1.ID, 10)
	assert.NoError(t, err)

	current, err = service.CurrentVersion(context.Background(), 1, 10, "")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), current.VersionNumber)
	assert.Equal(t, []byte(`{"n":1}`), current.Snapshot)
}

func TestCurrentVersion_UnknownBranch(t *testing.T) {
	service := newSqliteService(t)

	_, err := service.CurrentVersion(context.Background(), 1, 10, "ghost")

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindVersionNotFound, apiErr.Kind)
}

func TestListChain_IsOrderedOldestFirst(t *testing.T) {
	service := newSqliteService(t)

	service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte("{}"), "first")
	service.CreateVersion(context.Background(), 1, domain.DefaultBranch, 10, []byte("{}"), "second")

	chain, err := service.ListChain(context.Background(), 1, 10, "")

	assert.NoError(t, err)
	assert.Equal(t, "first", chain[0].ChangeSummary)
	assert.Equal(t, "second", chain[1].ChangeSummary)
	assert.Equal(t, uint64(2), chain[1].VersionNumber)
}
