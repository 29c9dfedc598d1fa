package comment

import (
	"collaborative-presentation-server/internal/domain"
	"context"
	"time"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uint64) (*domain.Comment, error)
	UpdateContent(ctx context.Context, id uint64, content string) (*domain.Comment, error)
	MarkResolved(ctx context.Context, id uint64) (*domain.Comment, error)
	Delete(ctx context.Context, id uint64) error
	ListByPresentation(ctx context.Context, presentationID uint64) ([]domain.Comment, error)
	CountReplies(ctx context.Context, id uint64) (int64, error)
}

type CommentRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new comment repository
func NewRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) UpdateContent(ctx context.Context, id uint64, content string) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		comment.Content = content
		comment.UpdatedAt = time.Now().UTC()
		return tx.Save(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) MarkResolved(ctx context.Context, id uint64) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		comment.IsResolved = true
		comment.UpdatedAt = time.Now().UTC()
		return tx.Save(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Comment{}, id).Error
}

func (r *CommentRepositoryImpl) ListByPresentation(ctx context.Context, presentationID uint64) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Where("presentation_id = ?", presentationID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepositoryImpl) CountReplies(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("parent_comment_id = ?", id).
		Count(&count).Error
	return count, err
}
