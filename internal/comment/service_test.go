package comment

import (
	"collaborative-presentation-server/internal/domain"
	apiError "collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/realtime"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of CommentRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockRepository) UpdateContent(ctx context.Context, id uint64, content string) (*domain.Comment, error) {
	args := m.Called(ctx, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockRepository) MarkResolved(ctx context.Context, id uint64) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListByPresentation(ctx context.Context, presentationID uint64) ([]domain.Comment, error) {
	args := m.Called(ctx, presentationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockRepository) CountReplies(ctx context.Context, id uint64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
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

// MockBus is a mock implementation of realtime.Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(presentationID uint64, eventType string, payload any) {
	m.Called(presentationID, eventType, payload)
}

func (m *MockBus) Subscribe(ctx context.Context, presentationID uint64) (<-chan realtime.Event, error) {
	args := m.Called(ctx, presentationID)
	return args.Get(0).(<-chan realtime.Event), args.Error(1)
}

func newService(repo *MockRepository, authorizer *MockAuthorizer, bus *MockBus) Service {
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return NewService(repo, authorizer, bus)
}

func TestAddComment_RootComment(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.PresentationID == 1 && c.AuthorID == 2 && c.ParentCommentID == nil
	})).Return(nil)

	comment, err := service.AddComment(context.Background(), 1, 2, AddCommentInput{Content: "first!"})

	assert.NoError(t, err)
	assert.Equal(t, "first!", comment.Content)
	repo.AssertExpectations(t)
}

func TestAddComment_ViewerDenied(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(3), permission.LevelEdit).
		Return(permission.Level(0), apiError.PermissionDenied("Requires edit access", nil))

	_, err := service.AddComment(context.Background(), 1, 3, AddCommentInput{Content: "nope"})

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindPermissionDenied, apiErr.Kind)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Replies at depth 1, 2 and 3 succeed; a fourth nested reply is rejected
func TestAddComment_ThreadTooDeep(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)

	// chain c1 <- c2 <- c3 <- c4; c4 sits at depth 3
	c1 := &domain.Comment{ID: 1, PresentationID: 1}
	c2 := &domain.Comment{ID: 2, PresentationID: 1, ParentCommentID: ptr(uint64(1))}
	c3 := &domain.Comment{ID: 3, PresentationID: 1, ParentCommentID: ptr(uint64(2))}
	c4 := &domain.Comment{ID: 4, PresentationID: 1, ParentCommentID: ptr(uint64(3))}
	repo.On("FindByID", mock.Anything, uint64(1)).Return(c1, nil)
	repo.On("FindByID", mock.Anything, uint64(2)).Return(c2, nil)
	repo.On("FindByID", mock.Anything, uint64(3)).Return(c3, nil)
	repo.On("FindByID", mock.Anything, uint64(4)).Return(c4, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	// reply to c3 lands at depth 3: allowed
	_, err := service.AddComment(context.Background(), 1, 2, AddCommentInput{
		Content:         "deepest allowed",
		ParentCommentID: ptr(uint64(3)),
	})
	assert.NoError(t, err)

	// reply to c4 would land at depth 4: rejected
	_, err = service.AddComment(context.Background(), 1, 2, AddCommentInput{
		Content:         "too deep",
		ParentCommentID: ptr(uint64(4)),
	})

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindThreadTooDeep, apiErr.Kind)
}

func TestAddComment_ResolvedAncestorLocksThread(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)

	root := &domain.Comment{ID: 1, PresentationID: 1, IsResolved: true}
	reply := &domain.Comment{ID: 2, PresentationID: 1, ParentCommentID: ptr(uint64(1))}
	repo.On("FindByID", mock.Anything, uint64(1)).Return(root, nil)
	repo.On("FindByID", mock.Anything, uint64(2)).Return(reply, nil)

	// the parent itself is unresolved, but its root is resolved
	_, err := service.AddComment(context.Background(), 1, 2, AddCommentInput{
		Content:         "late reply",
		ParentCommentID: ptr(uint64(2)),
	})

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindThreadLocked, apiErr.Kind)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddComment_ParentFromOtherPresentation(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)
	repo.On("FindByID", mock.Anything, uint64(9)).
		Return(&domain.Comment{ID: 9, PresentationID: 77}, nil)

	_, err := service.AddComment(context.Background(), 1, 2, AddCommentInput{
		Content:         "cross-talk",
		ParentCommentID: ptr(uint64(9)),
	})

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindNotFound, apiErr.Kind)
}

// Edit is permission-gated, not authorship-gated: an editor may edit
// someone else's comment
func TestEditComment_AnyAuthorWithEditLevel(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	existing := &domain.Comment{ID: 5, PresentationID: 1, AuthorID: 42, Content: "old"}
	updated := &domain.Comment{ID: 5, PresentationID: 1, AuthorID: 42, Content: "new"}
	repo.On("FindByID", mock.Anything, uint64(5)).Return(existing, nil)
	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)
	repo.On("UpdateContent", mock.Anything, uint64(5), "new").Return(updated, nil)

	result, err := service.EditComment(context.Background(), 5, 2, "new")

	assert.NoError(t, err)
	assert.Equal(t, "new", result.Content)
}

func TestResolveComment_Idempotent(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	resolved := &domain.Comment{ID: 5, PresentationID: 1, IsResolved: true, UpdatedAt: time.Now()}
	repo.On("FindByID", mock.Anything, uint64(5)).Return(resolved, nil)
	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)

	result, err := service.ResolveComment(context.Background(), 5, 2)

	assert.NoError(t, err)
	assert.True(t, result.IsResolved)
	repo.AssertNotCalled(t, "MarkResolved", mock.Anything, mock.Anything)
}

func TestDeleteComment_BlockedWhileChildrenExist(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	repo.On("FindByID", mock.Anything, uint64(5)).
		Return(&domain.Comment{ID: 5, PresentationID: 1}, nil)
	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)
	repo.On("CountReplies", mock.Anything, uint64(5)).Return(int64(2), nil)

	err := service.DeleteComment(context.Background(), 5, 2)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindHasChildren, apiErr.Kind)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteComment_LeafDeleted(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	repo.On("FindByID", mock.Anything, uint64(5)).
		Return(&domain.Comment{ID: 5, PresentationID: 1}, nil)
	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(2), permission.LevelEdit).
		Return(permission.LevelEdit, nil)
	repo.On("CountReplies", mock.Anything, uint64(5)).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, uint64(5)).Return(nil)

	err := service.DeleteComment(context.Background(), 5, 2)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListThreads_ViewerAllowed(t *testing.T) {
	repo := new(MockRepository)
	authorizer := new(MockAuthorizer)
	bus := new(MockBus)
	service := newService(repo, authorizer, bus)

	authorizer.On("Authorize", mock.Anything, uint64(1), uint64(3), permission.LevelView).
		Return(permission.LevelView, nil)
	repo.On("ListByPresentation", mock.Anything, uint64(1)).Return([]domain.Comment{
		{ID: 1, PresentationID: 1},
		{ID: 2, PresentationID: 1, ParentCommentID: ptr(uint64(1))},
	}, nil)

	forest, err := service.ListThreads(context.Background(), 1, 3, nil)

	assert.NoError(t, err)
	assert.Len(t, forest, 1)
	assert.Len(t, forest[0].Replies, 1)
}
