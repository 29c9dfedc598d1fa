package permission

import (
	"collaborative-presentation-server/internal/domain"
	"context"

	"gorm.io/gorm"
)

// GormStore reads ownership and collaborator rows straight from the
// authoritative tables.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) PresentationOwner(ctx context.Context, presentationID uint64) (uint64, error) {
	var presentation domain.Presentation
	err := s.db.WithContext(ctx).
		Select("id", "owner_id").
		First(&presentation, presentationID).Error
	if err != nil {
		return 0, err
	}
	return presentation.OwnerID, nil
}

func (s *GormStore) CollaboratorLevel(ctx context.Context, presentationID uint64, userID uint64) (string, error) {
	var collaborator domain.Collaborator
	err := s.db.WithContext(ctx).
		Where("presentation_id = ? AND user_id = ?", presentationID, userID).
		First(&collaborator).Error
	if err != nil {
		return "", err
	}
	return collaborator.PermissionLevel, nil
}
