package invitation

import (
	"collaborative-presentation-server/internal/domain"
	"context"
	"time"

	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.Invitation) error
	FindByID(ctx context.Context, id uint64) (*domain.Invitation, error)
	FindByToken(ctx context.Context, token string) (*domain.Invitation, error)
	HasLivePending(ctx context.Context, presentationID uint64, email string, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uint64, from string, to string) (bool, error)
	ListPending(ctx context.Context, presentationID uint64) ([]domain.Invitation, error)
	Accept(ctx context.Context, invitationID uint64, userID uint64, level string) (*domain.Collaborator, error)
}

type InvitationRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new invitation repository
func NewRepository(db *gorm.DB) InvitationRepository {
	return &InvitationRepositoryImpl{db: db}
}

func (r *InvitationRepositoryImpl) Create(ctx context.Context, invitation *domain.Invitation) error {
	now := time.Now().UTC()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *InvitationRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).First(&invitation, id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InvitationRepositoryImpl) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InvitationRepositoryImpl) HasLivePending(ctx context.Context, presentationID uint64, email string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("presentation_id = ? AND invitee_email = ? AND status = ? AND expires_at > ?",
			presentationID, email, domain.InvitationPending, now).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus flips status only when the stored status still matches
// `from`. Returns false when the guard failed, which callers map to
// InvitationNotPending. The guard is what makes token replay safe.
func (r *InvitationRepositoryImpl) UpdateStatus(ctx context.Context, id uint64, from string, to string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *InvitationRepositoryImpl) ListPending(ctx context.Context, presentationID uint64) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("presentation_id = ? AND status = ?", presentationID, domain.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

// Accept commits the status flip and the collaborator upsert in one
// transaction: a replica applying the same event twice, or a replayed
// token, can never double-create the collaborator row.
func (r *InvitationRepositoryImpl) Accept(ctx context.Context, invitationID uint64, userID uint64, level string) (*domain.Collaborator, error) {
	var collaborator domain.Collaborator

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		result := tx.Model(&domain.Invitation{}).
			Where("id = ? AND status = ?", invitationID, domain.InvitationPending).
			Updates(map[string]any{"status": domain.InvitationAccepted, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var invitation domain.Invitation
		if err := tx.First(&invitation, invitationID).Error; err != nil {
			return err
		}

		err := tx.Where("presentation_id = ? AND user_id = ?", invitation.PresentationID, userID).
			First(&collaborator).Error
		if err == nil {
			// already a collaborator; adopt the invitation's level
			collaborator.PermissionLevel = level
			collaborator.LastSeen = now
			return tx.Save(&collaborator).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		collaborator = domain.Collaborator{
			PresentationID:  invitation.PresentationID,
			UserID:          userID,
			PermissionLevel: level,
			JoinedAt:        now,
			LastSeen:        now,
		}
		return tx.Create(&collaborator).Error
	})
	if err != nil {
		return nil, err
	}
	return &collaborator, nil
}
