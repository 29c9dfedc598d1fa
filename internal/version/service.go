package version

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

type Service interface {
	CreateVersion(ctx context.Context, presentationID uint64, branchName string, authorID uint64, snapshot []byte, changeSummary string) (*domain.Version, error)
	CreateBranch(ctx context.Context, presentationID uint64, fromVersionID uint64, newBranchName string, authorID uint64) (*domain.Version, error)
	Restore(ctx context.Context, presentationID uint64, branchName string, versionID uint64, authorID uint64) (*domain.Version, error)
	ListChain(ctx context.Context, presentationID uint64, callerID uint64, branchName string) ([]domain.Version, error)
	ListBranches(ctx context.Context, presentationID uint64, callerID uint64) ([]string, error)
	CurrentVersion(ctx context.Context, presentationID uint64, callerID uint64, branchName string) (*domain.Version, error)
}

type DefaultService struct {
	repository VersionRepository
	authorizer permission.Authorizer
	bus        realtime.Bus
}

func NewService(repository VersionRepository, authorizer permission.Authorizer, bus realtime.Bus) Service {
	return &DefaultService{
		repository: repository,
		authorizer: authorizer,
		bus:        bus,
	}
}

// CreateVersion appends a snapshot to the branch's chain and makes it the
// branch's current version.
func (s *DefaultService) CreateVersion(ctx context.Context, presentationID uint64, branchName string, authorID uint64, snapshot []byte, changeSummary string) (*domain.Version, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, authorID, permission.LevelEdit); err != nil {
		return nil, err
	}
	if branchName == "" {
		branchName = domain.DefaultBranch
	}

	version := &domain.Version{
		PresentationID: presentationID,
		BranchName:     branchName,
		CreatedByID:    authorID,
		ChangeSummary:  changeSummary,
		Snapshot:       snapshot,
	}

	if err := s.repository.Append(ctx, version); err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventVersionCreated, version)
	return version, nil
}

// CreateBranch forks a new branch off an existing version. The branch's
// first version copies the fork point's snapshot and links back to it via
// ParentVersionID; the source branch's current flag is untouched.
func (s *DefaultService) CreateBranch(ctx context.Context, presentationID uint64, fromVersionID uint64, newBranchName string, authorID uint64) (*domain.Version, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, authorID, permission.LevelEdit); err != nil {
		return nil, err
	}
	if newBranchName == "" {
		return nil, errors.Validation("Branch name cannot be empty", nil)
	}

	taken, err := s.repository.BranchExists(ctx, presentationID, newBranchName)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if taken {
		return nil, errors.BranchNameTaken(fmt.Sprintf("Branch %q already exists", newBranchName))
	}

	source, err := s.findVersion(ctx, presentationID, fromVersionID)
	if err != nil {
		return nil, err
	}

	forkPoint := source.ID
	version := &domain.Version{
		PresentationID:  presentationID,
		BranchName:      newBranchName,
		ParentVersionID: &forkPoint,
		CreatedByID:     authorID,
		ChangeSummary:   fmt.Sprintf("Branched from %s v%d", source.BranchName, source.VersionNumber),
		Snapshot:        source.Snapshot,
	}

	if err := s.repository.Append(ctx, version); err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventVersionCreated, version)
	return version, nil
}

// Restore never rewrites history: it appends a new version on the branch
// whose snapshot equals the restored version's, which becomes the new
// current version. The restored-from version stays addressable unchanged.
func (s *DefaultService) Restore(ctx context.Context, presentationID uint64, branchName string, versionID uint64, authorID uint64) (*domain.Version, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, authorID, permission.LevelEdit); err != nil {
		return nil, err
	}
	if branchName == "" {
		branchName = domain.DefaultBranch
	}

	exists, err := s.repository.BranchExists(ctx, presentationID, branchName)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !exists {
		return nil, errors.NotFound(fmt.Sprintf("Branch %q does not exist", branchName), nil)
	}

	source, err := s.findVersion(ctx, presentationID, versionID)
	if err != nil {
		return nil, err
	}

	version := &domain.Version{
		PresentationID: presentationID,
		BranchName:     branchName,
		CreatedByID:    authorID,
		ChangeSummary:  fmt.Sprintf("Restored from %s v%d", source.BranchName, source.VersionNumber),
		Snapshot:       source.Snapshot,
	}

	if err := s.repository.Append(ctx, version); err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventVersionCreated, version)
	return version, nil
}

// ListChain returns the branch's versions oldest first
func (s *DefaultService) ListChain(ctx context.Context, presentationID uint64, callerID uint64, branchName string) ([]domain.Version, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, callerID, permission.LevelView); err != nil {
		return nil, err
	}
	if branchName == "" {
		branchName = domain.DefaultBranch
	}

	versions, err := s.repository.ListChain(ctx, presentationID, branchName)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return versions, nil
}

func (s *DefaultService) ListBranches(ctx context.Context, presentationID uint64, callerID uint64) ([]string, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, callerID, permission.LevelView); err != nil {
		return nil, err
	}

	branches, err := s.repository.ListBranches(ctx, presentationID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return branches, nil
}

// CurrentVersion returns the branch's current version; duplicate current
// flags left by replayed writes are healed as part of the read.
func (s *DefaultService) CurrentVersion(ctx context.Context, presentationID uint64, callerID uint64, branchName string) (*domain.Version, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, callerID, permission.LevelView); err != nil {
		return nil, err
	}
	if branchName == "" {
		branchName = domain.DefaultBranch
	}

	current, err := s.repository.CurrentVersion(ctx, presentationID, branchName)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.VersionNotFound("Branch has no current version", err)
		}
		return nil, errors.Internal(err)
	}
	return current, nil
}

func (s *DefaultService) findVersion(ctx context.Context, presentationID uint64, versionID uint64) (*domain.Version, error) {
	version, err := s.repository.FindByID(ctx, presentationID, versionID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.VersionNotFound("Version not found in this presentation", err)
		}
		return nil, errors.Internal(err)
	}
	return version, nil
}
