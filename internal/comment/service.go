package comment

import (
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/realtime"
	"context"
	defError "errors"
	"fmt"

	"gorm.io/gorm"
)

type AddCommentInput struct {
	SlideID         *string
	Content         string
	PositionX       *float64
	PositionY       *float64
	ParentCommentID *uint64
}

type Service interface {
	AddComment(ctx context.Context, presentationID uint64, authorID uint64, input AddCommentInput) (*domain.Comment, error)
	EditComment(ctx context.Context, commentID uint64, callerID uint64, content string) (*domain.Comment, error)
	ResolveComment(ctx context.Context, commentID uint64, callerID uint64) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID uint64, callerID uint64) error
	ListThreads(ctx context.Context, presentationID uint64, callerID uint64, slideID *string) ([]*domain.CommentNode, error)
}

type DefaultService struct {
	repository CommentRepository
	authorizer permission.Authorizer
	bus        realtime.Bus
}

func NewService(repository CommentRepository, authorizer permission.Authorizer, bus realtime.Bus) Service {
	return &DefaultService{
		repository: repository,
		authorizer: authorizer,
		bus:        bus,
	}
}

// AddComment creates a root comment or a reply. Replies are rejected when
// the parent sits at the maximum depth or any ancestor is resolved.
func (s *DefaultService) AddComment(ctx context.Context, presentationID uint64, authorID uint64, input AddCommentInput) (*domain.Comment, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, authorID, permission.LevelEdit); err != nil {
		return nil, err
	}

	if input.Content == "" {
		return nil, errors.Validation("Comment content cannot be empty", nil)
	}

	comment := &domain.Comment{
		PresentationID:  presentationID,
		SlideID:         input.SlideID,
		AuthorID:        authorID,
		Content:         input.Content,
		PositionX:       input.PositionX,
		PositionY:       input.PositionY,
		ParentCommentID: input.ParentCommentID,
	}

	if input.ParentCommentID != nil {
		parent, err := s.repository.FindByID(ctx, *input.ParentCommentID)
		if err != nil {
			if defError.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.NotFound("Parent comment not found", err)
			}
			return nil, errors.Internal(err)
		}
		if parent.PresentationID != presentationID {
			return nil, errors.NotFound("Parent comment not found", nil)
		}

		depth, locked, err := s.walkAncestors(ctx, parent)
		if err != nil {
			return nil, err
		}
		if locked {
			return nil, errors.ThreadLocked("Cannot reply to a resolved thread")
		}
		if depth >= domain.MaxThreadDepth {
			return nil, errors.ThreadTooDeep(fmt.Sprintf("Thread nesting is limited to %d levels", domain.MaxThreadDepth))
		}

		// replies live on the parent's slide
		comment.SlideID = parent.SlideID
	}

	if err := s.repository.Create(ctx, comment); err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventCommentAdded, comment)
	return comment, nil
}

// walkAncestors returns the parent's depth and whether the parent or any
// ancestor is resolved. Depth of a root is 0.
func (s *DefaultService) walkAncestors(ctx context.Context, parent *domain.Comment) (int, bool, error) {
	depth := 0
	locked := parent.IsResolved
	current := parent

	for current.ParentCommentID != nil {
		next, err := s.repository.FindByID(ctx, *current.ParentCommentID)
		if err != nil {
			return 0, false, errors.Internal(err)
		}
		depth++
		if next.IsResolved {
			locked = true
		}
		current = next

		// corrupted chains must not hang the walker
		if depth > domain.MaxThreadDepth {
			break
		}
	}

	return depth, locked, nil
}

// EditComment updates a comment's content. Policy is permission-gated,
// not authorship-gated: any caller at edit or above may edit any comment.
func (s *DefaultService) EditComment(ctx context.Context, commentID uint64, callerID uint64, content string) (*domain.Comment, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizer.Authorize(ctx, comment.PresentationID, callerID, permission.LevelEdit); err != nil {
		return nil, err
	}

	if content == "" {
		return nil, errors.Validation("Comment content cannot be empty", nil)
	}

	updated, err := s.repository.UpdateContent(ctx, commentID, content)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(updated.PresentationID, realtime.EventCommentUpdated, updated)
	return updated, nil
}

// ResolveComment marks a comment resolved. Resolving an already-resolved
// comment is a no-op, not an error.
func (s *DefaultService) ResolveComment(ctx context.Context, commentID uint64, callerID uint64) (*domain.Comment, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizer.Authorize(ctx, comment.PresentationID, callerID, permission.LevelEdit); err != nil {
		return nil, err
	}

	if comment.IsResolved {
		return comment, nil
	}

	resolved, err := s.repository.MarkResolved(ctx, commentID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(resolved.PresentationID, realtime.EventCommentResolved, resolved)
	return resolved, nil
}

// DeleteComment removes a comment without replies. Deleting a comment
// that still has replies is blocked; there is no cascade.
func (s *DefaultService) DeleteComment(ctx context.Context, commentID uint64, callerID uint64) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}

	if _, err := s.authorizer.Authorize(ctx, comment.PresentationID, callerID, permission.LevelEdit); err != nil {
		return err
	}

	replies, err := s.repository.CountReplies(ctx, commentID)
	if err != nil {
		return errors.Internal(err)
	}
	if replies > 0 {
		return errors.HasChildren("Delete the replies first")
	}

	if err := s.repository.Delete(ctx, commentID); err != nil {
		return errors.Internal(err)
	}

	s.bus.Publish(comment.PresentationID, realtime.EventCommentDeleted, comment)
	return nil
}

func (s *DefaultService) ListThreads(ctx context.Context, presentationID uint64, callerID uint64, slideID *string) ([]*domain.CommentNode, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, callerID, permission.LevelView); err != nil {
		return nil, err
	}

	comments, err := s.repository.ListByPresentation(ctx, presentationID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	return BuildForest(comments, slideID), nil
}

func (s *DefaultService) findComment(ctx context.Context, commentID uint64) (*domain.Comment, error) {
	comment, err := s.repository.FindByID(ctx, commentID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Comment not found", err)
		}
		return nil, errors.Internal(err)
	}
	return comment, nil
}
