package presentation

import (
	"collaborative-presentation-server/internal/cache"
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/realtime"
	"context"
	defError "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type PresentationShowResponse struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	OwnerID         uint64    `json:"owner_id"`
	PermissionLevel string    `json:"permission_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PaginatedPresentations struct {
	Data []domain.Presentation `json:"data"`
	Meta PresentationsMeta     `json:"meta"`
}

type Service interface {
	CreatePresentation(ctx context.Context, ownerID uint64, presentation *domain.Presentation) error
	GetUserPresentations(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedPresentations, error)
	GetSharedPresentations(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedPresentations, error)
	GetPresentationByID(ctx context.Context, presentationID uint64, userID uint64) (*PresentationShowResponse, error)
	DeletePresentation(ctx context.Context, presentationID uint64, userID uint64) error
	ListCollaborators(ctx context.Context, presentationID uint64, requesterID uint64) ([]CollaboratorRow, error)
	SetPermission(ctx context.Context, presentationID uint64, requesterID uint64, targetUserID uint64, level string) (*domain.Collaborator, error)
	RemoveCollaborator(ctx context.Context, presentationID uint64, requesterID uint64, targetUserID uint64) error
	FetchPermissionLevel(ctx context.Context, presentationID uint64, userID uint64) (string, error)
}

type DefaultService struct {
	repository PresentationRepository
	authorizer permission.Authorizer
	bus        realtime.Bus
	cache      *cache.Cache
}

func NewService(
	repository PresentationRepository,
	authorizer permission.Authorizer,
	bus realtime.Bus,
	c *cache.Cache,
) Service {
	return &DefaultService{
		repository: repository,
		authorizer: authorizer,
		bus:        bus,
		cache:      c,
	}
}

func (s *DefaultService) CreatePresentation(ctx context.Context, ownerID uint64, presentation *domain.Presentation) error {
	if presentation.Title == "" {
		return errors.Validation("Title cannot be empty", nil)
	}

	err := s.repository.Create(ctx, ownerID, presentation)
	if err == nil {
		// bump cache key, so any new fetch will get new version
		versionKey := fmt.Sprintf("user:%d:presentations:version", ownerID)
		s.cache.IncrementVersion(ctx, versionKey)
	}
	return err
}

func (s *DefaultService) GetUserPresentations(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedPresentations, error) {
	// Get the current data version for this user's presentations
	versionKey := fmt.Sprintf("user:%d:presentations:version", userID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("presentations:u:%d:v:%d:p:%d:ps:%d", userID, v, page, pageSize)

	var result PaginatedPresentations
	// get data from cache
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	presentations, meta, err := s.repository.ListByOwner(ctx, userID, page, pageSize)
	if err != nil {
		return nil, errors.Internal(err)
	}
	result = PaginatedPresentations{Data: presentations, Meta: meta}
	// set value to cache
	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return &result, nil
}

func (s *DefaultService) GetSharedPresentations(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedPresentations, error) {
	presentations, meta, err := s.repository.ListShared(ctx, userID, page, pageSize)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &PaginatedPresentations{Data: presentations, Meta: meta}, nil
}

func (s *DefaultService) GetPresentationByID(ctx context.Context, presentationID uint64, userID uint64) (*PresentationShowResponse, error) {
	level, err := s.authorizer.Resolve(ctx, presentationID, userID)
	if err != nil {
		return nil, err
	}

	presentation, err := s.repository.FindByID(ctx, presentationID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Presentation not found", err)
		}
		return nil, errors.Internal(err)
	}

	return &PresentationShowResponse{
		ID:              presentation.ID,
		Title:           presentation.Title,
		OwnerID:         presentation.OwnerID,
		PermissionLevel: level.String(),
		CreatedAt:       presentation.CreatedAt,
		UpdatedAt:       presentation.UpdatedAt,
	}, nil
}

func (s *DefaultService) DeletePresentation(ctx context.Context, presentationID uint64, userID uint64) error {
	presentation, err := s.repository.FindByID(ctx, presentationID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Presentation not found", err)
		}
		return errors.Internal(err)
	}

	if presentation.OwnerID != userID {
		return errors.PermissionDenied("Only the owner can delete a presentation", nil)
	}

	if err := s.repository.Delete(ctx, presentationID); err != nil {
		return errors.Internal(err)
	}

	// bump cache key, so any new fetch will get new version
	versionKey := fmt.Sprintf("user:%d:presentations:version", userID)
	s.cache.IncrementVersion(ctx, versionKey)

	return nil
}

func (s *DefaultService) ListCollaborators(ctx context.Context, presentationID uint64, requesterID uint64) ([]CollaboratorRow, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, requesterID, permission.LevelView); err != nil {
		return nil, err
	}

	rows, err := s.repository.ListCollaborators(ctx, presentationID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return rows, nil
}

// SetPermission changes a collaborator's level. Admin only; the owner's
// level cannot be changed (ownership resolves to admin regardless).
func (s *DefaultService) SetPermission(ctx context.Context, presentationID uint64, requesterID uint64, targetUserID uint64, level string) (*domain.Collaborator, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, requesterID, permission.LevelAdmin); err != nil {
		return nil, err
	}

	if _, ok := permission.ParseLevel(level); !ok {
		return nil, errors.Validation("Unknown permission level", nil)
	}

	presentation, err := s.repository.FindByID(ctx, presentationID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if presentation.OwnerID == targetUserID {
		return nil, errors.Validation("The owner's permission cannot be changed", nil)
	}
	if requesterID == targetUserID {
		return nil, errors.Validation("You cannot change your own permission", nil)
	}

	collaborator, err := s.repository.UpdateCollaboratorLevel(ctx, presentationID, targetUserID, level)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Collaborator not found", err)
		}
		return nil, errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventCollaboratorUpdated, collaborator)
	return collaborator, nil
}

// FetchPermissionLevel resolves a user's effective level for internal
// callers (the websocket sync peer gates edits with it).
func (s *DefaultService) FetchPermissionLevel(ctx context.Context, presentationID uint64, userID uint64) (string, error) {
	level, err := s.authorizer.Resolve(ctx, presentationID, userID)
	if err != nil {
		return "", err
	}
	return level.String(), nil
}

func (s *DefaultService) RemoveCollaborator(ctx context.Context, presentationID uint64, requesterID uint64, targetUserID uint64) error {
	if _, err := s.authorizer.Authorize(ctx, presentationID, requesterID, permission.LevelAdmin); err != nil {
		return err
	}

	presentation, err := s.repository.FindByID(ctx, presentationID)
	if err != nil {
		return errors.Internal(err)
	}
	if presentation.OwnerID == targetUserID {
		return errors.Validation("The owner cannot be removed", nil)
	}
	if requesterID == targetUserID {
		return errors.Validation("You cannot remove yourself", nil)
	}

	collaborator, err := s.repository.GetCollaborator(ctx, presentationID, targetUserID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Collaborator not found", err)
		}
		return errors.Internal(err)
	}

	if err := s.repository.RemoveCollaborator(ctx, presentationID, targetUserID); err != nil {
		return errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventCollaboratorRemoved, collaborator)
	return nil
}
