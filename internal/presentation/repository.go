package presentation

import (
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/permission"
	"context"
	"time"

	"gorm.io/gorm"
)

// CollaboratorRow is a collaborator joined with its user record
type CollaboratorRow struct {
	UserID          uint64    `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PermissionLevel string    `json:"permission_level"`
	JoinedAt        time.Time `json:"joined_at"`
}

type PresentationsMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type PresentationRepository interface {
	Create(ctx context.Context, ownerID uint64, presentation *domain.Presentation) error
	FindByID(ctx context.Context, id uint64) (*domain.Presentation, error)
	ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]domain.Presentation, PresentationsMeta, error)
	ListShared(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Presentation, PresentationsMeta, error)
	Delete(ctx context.Context, id uint64) error
	ListCollaborators(ctx context.Context, presentationID uint64) ([]CollaboratorRow, error)
	GetCollaborator(ctx context.Context, presentationID uint64, userID uint64) (*domain.Collaborator, error)
	UpdateCollaboratorLevel(ctx context.Context, presentationID uint64, userID uint64, level string) (*domain.Collaborator, error)
	RemoveCollaborator(ctx context.Context, presentationID uint64, userID uint64) error
}

type PresentationRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new presentation repository
func NewRepository(db *gorm.DB) PresentationRepository {
	return &PresentationRepositoryImpl{db: db}
}

// Create inserts the presentation, enrolls the owner as an admin
// collaborator and seeds the first version on the default branch, all in
// one transaction.
func (r *PresentationRepositoryImpl) Create(ctx context.Context, ownerID uint64, presentation *domain.Presentation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		presentation.OwnerID = ownerID
		presentation.CreatedAt = now
		presentation.UpdatedAt = now
		presentation.Collaborators = []domain.Collaborator{
			{
				UserID:          ownerID,
				PermissionLevel: permission.LevelAdmin.String(),
				JoinedAt:        now,
				LastSeen:        now,
			},
		}
		if err := tx.Create(presentation).Error; err != nil {
			return err
		}

		initial := domain.Version{
			PresentationID: presentation.ID,
			BranchName:     domain.DefaultBranch,
			VersionNumber:  1,
			IsCurrent:      true,
			CreatedByID:    ownerID,
			ChangeSummary:  "Initial version",
			Snapshot:       []byte("{}"),
			CreatedAt:      now,
		}
		return tx.Create(&initial).Error
	})
}

func (r *PresentationRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Presentation, error) {
	var presentation domain.Presentation
	err := r.db.WithContext(ctx).First(&presentation, id).Error
	if err != nil {
		return nil, err
	}
	return &presentation, nil
}

func (r *PresentationRepositoryImpl) ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]domain.Presentation, PresentationsMeta, error) {
	var presentations []domain.Presentation
	var totalRecords int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&domain.Presentation{}).
		Where("owner_id = ?", ownerID).
		Count(&totalRecords).Error; err != nil {
		return presentations, PresentationsMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&presentations).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return presentations, PresentationsMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *PresentationRepositoryImpl) ListShared(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Presentation, PresentationsMeta, error) {
	var presentations []domain.Presentation
	var totalRecords int64

	base := r.db.WithContext(ctx).Model(&domain.Presentation{}).
		Joins("JOIN collaborators ON collaborators.presentation_id = presentations.id").
		Where("collaborators.user_id = ? AND presentations.owner_id <> ?", userID, userID)

	if err := base.Count(&totalRecords).Error; err != nil {
		return presentations, PresentationsMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := base.
		Order("presentations.updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&presentations).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return presentations, PresentationsMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

// Delete removes the presentation and everything it owns
func (r *PresentationRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("presentation_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("presentation_id = ?", id).Delete(&domain.Version{}).Error; err != nil {
			return err
		}
		if err := tx.Where("presentation_id = ?", id).Delete(&domain.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("presentation_id = ?", id).Delete(&domain.Collaborator{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Presentation{}, id).Error
	})
}

func (r *PresentationRepositoryImpl) ListCollaborators(ctx context.Context, presentationID uint64) ([]CollaboratorRow, error) {
	var rows []CollaboratorRow
	err := r.db.WithContext(ctx).
		Model(&domain.Collaborator{}).
		Select("collaborators.user_id, users.name, users.email, collaborators.permission_level, collaborators.joined_at").
		Joins("JOIN users ON users.id = collaborators.user_id").
		Where("collaborators.presentation_id = ?", presentationID).
		Order("collaborators.joined_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *PresentationRepositoryImpl) GetCollaborator(ctx context.Context, presentationID uint64, userID uint64) (*domain.Collaborator, error) {
	var collaborator domain.Collaborator
	err := r.db.WithContext(ctx).
		Where("presentation_id = ? AND user_id = ?", presentationID, userID).
		First(&collaborator).Error
	if err != nil {
		return nil, err
	}
	return &collaborator, nil
}

func (r *PresentationRepositoryImpl) UpdateCollaboratorLevel(ctx context.Context, presentationID uint64, userID uint64, level string) (*domain.Collaborator, error) {
	var collaborator domain.Collaborator
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("presentation_id = ? AND user_id = ?", presentationID, userID).
			First(&collaborator).Error; err != nil {
			return err
		}
		collaborator.PermissionLevel = level
		return tx.Save(&collaborator).Error
	})
	if err != nil {
		return nil, err
	}
	return &collaborator, nil
}

func (r *PresentationRepositoryImpl) RemoveCollaborator(ctx context.Context, presentationID uint64, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("presentation_id = ? AND user_id = ?", presentationID, userID).
		Delete(&domain.Collaborator{}).Error
}
