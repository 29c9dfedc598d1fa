package version

import (
	"collaborative-presentation-server/internal/domain"
	"context"
	"time"

	"gorm.io/gorm"
)

type VersionRepository interface {
	Append(ctx context.Context, version *domain.Version) error
	FindByID(ctx context.Context, presentationID uint64, versionID uint64) (*domain.Version, error)
	BranchExists(ctx context.Context, presentationID uint64, branchName string) (bool, error)
	ListChain(ctx context.Context, presentationID uint64, branchName string) ([]domain.Version, error)
	ListBranches(ctx context.Context, presentationID uint64) ([]string, error)
	CurrentVersion(ctx context.Context, presentationID uint64, branchName string) (*domain.Version, error)
}

type VersionRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new version repository
func NewRepository(db *gorm.DB) VersionRepository {
	return &VersionRepositoryImpl{db: db}
}

// Append adds a version to the tip of its branch in one transaction:
// the branch-local version number is the chain length + 1, the previous
// current row loses its flag, and the new row gains it. Exactly one
// version per branch is current at all times. When ParentVersionID is
// preset (branch creation, fork links) it is kept; otherwise the version
// is linked to the branch's previous tip.
func (r *VersionRepositoryImpl) Append(ctx context.Context, version *domain.Version) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chainLength int64
		if err := tx.Model(&domain.Version{}).
			Where("presentation_id = ? AND branch_name = ?", version.PresentationID, version.BranchName).
			Count(&chainLength).Error; err != nil {
			return err
		}
		version.VersionNumber = uint64(chainLength) + 1

		if version.ParentVersionID == nil && chainLength > 0 {
			var tip domain.Version
			if err := tx.Where("presentation_id = ? AND branch_name = ?", version.PresentationID, version.BranchName).
				Order("version_number DESC").
				First(&tip).Error; err != nil {
				return err
			}
			version.ParentVersionID = &tip.ID
		}

		if err := tx.Model(&domain.Version{}).
			Where("presentation_id = ? AND branch_name = ? AND is_current = ?",
				version.PresentationID, version.BranchName, true).
			Update("is_current", false).Error; err != nil {
			return err
		}

		version.IsCurrent = true
		version.CreatedAt = time.Now().UTC()
		return tx.Create(version).Error
	})
}

func (r *VersionRepositoryImpl) FindByID(ctx context.Context, presentationID uint64, versionID uint64) (*domain.Version, error) {
	var version domain.Version
	err := r.db.WithContext(ctx).
		Where("presentation_id = ?", presentationID).
		First(&version, versionID).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *VersionRepositoryImpl) BranchExists(ctx context.Context, presentationID uint64, branchName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Version{}).
		Where("presentation_id = ? AND branch_name = ?", presentationID, branchName).
		Count(&count).Error
	return count > 0, err
}

func (r *VersionRepositoryImpl) ListChain(ctx context.Context, presentationID uint64, branchName string) ([]domain.Version, error) {
	var versions []domain.Version
	err := r.db.WithContext(ctx).
		Where("presentation_id = ? AND branch_name = ?", presentationID, branchName).
		Order("version_number ASC").
		Find(&versions).Error
	return versions, err
}

func (r *VersionRepositoryImpl) ListBranches(ctx context.Context, presentationID uint64) ([]string, error) {
	var branches []string
	err := r.db.WithContext(ctx).
		Model(&domain.Version{}).
		Where("presentation_id = ?", presentationID).
		Distinct("branch_name").
		Order("branch_name ASC").
		Pluck("branch_name", &branches).Error
	return branches, err
}

// CurrentVersion returns the branch's current version. When replay
// anomalies left more than one row flagged, the highest version number
// wins and the extras are cleared in the same transaction.
func (r *VersionRepositoryImpl) CurrentVersion(ctx context.Context, presentationID uint64, branchName string) (*domain.Version, error) {
	var current domain.Version

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flagged []domain.Version
		if err := tx.Where("presentation_id = ? AND branch_name = ? AND is_current = ?",
			presentationID, branchName, true).
			Order("version_number DESC").
			Find(&flagged).Error; err != nil {
			return err
		}

		if len(flagged) == 0 {
			return gorm.ErrRecordNotFound
		}

		current = flagged[0]
		if len(flagged) == 1 {
			return nil
		}

		// self-heal: clear every current flag except the winner's
		return tx.Model(&domain.Version{}).
			Where("presentation_id = ? AND branch_name = ? AND is_current = ? AND id <> ?",
				presentationID, branchName, true, current.ID).
			Update("is_current", false).Error
	})
	if err != nil {
		return nil, err
	}
	return &current, nil
}
