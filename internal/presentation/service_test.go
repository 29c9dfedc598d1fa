package presentation

import (
	"collaborative-presentation-server/internal/cache"
	"collaborative-presentation-server/internal/domain"
	apiError "collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/realtime"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

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

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(NewRepository(newTestDB(t)), allowAll{}, nopBus{}, cache.NewCache(nil))
}

func TestCreatePresentation_EmptyTitle(t *testing.T) {
	service := newTestService(t)

	err := service.CreatePresentation(context.Background(), 1, &domain.Presentation{})

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindValidation, apiErr.Kind)
}

func TestDeletePresentation_OwnerOnly(t *testing.T) {
	service := newTestService(t)

	presentation := &domain.Presentation{Title: "Mine"}
	assert.NoError(t, service.CreatePresentation(context.Background(), 1, presentation))

	err := service.DeletePresentation(context.Background(), presentation.ID, 2)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindPermissionDenied, apiErr.Kind)

	assert.NoError(t, service.DeletePresentation(context.Background(), presentation.ID, 1))
}

// The owner resolves to admin through ownership, so their stored level is
// never touched
func TestSetPermission_OwnerUnchangeable(t *testing.T) {
	service := newTestService(t)

	presentation := &domain.Presentation{Title: "Shared"}
	assert.NoError(t, service.CreatePresentation(context.Background(), 1, presentation))

	_, err := service.SetPermission(context.Background(), presentation.ID, 2, 1, "view")

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindValidation, apiErr.Kind)
}

func TestSetPermission_NoSelfChange(t *testing.T) {
	service := newTestService(t)

	presentation := &domain.Presentation{Title: "Shared"}
	assert.NoError(t, service.CreatePresentation(context.Background(), 1, presentation))

	_, err := service.SetPermission(context.Background(), presentation.ID, 2, 2, "view")

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindValidation, apiErr.Kind)
}

func TestRemoveCollaborator_OwnerProtected(t *testing.T) {
	service := newTestService(t)

	presentation := &domain.Presentation{Title: "Shared"}
	assert.NoError(t, service.CreatePresentation(context.Background(), 1, presentation))

	err := service.RemoveCollaborator(context.Background(), presentation.ID, 2, 1)

	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiError.KindValidation, apiErr.Kind)
}

// Creating a presentation bumps the owner's list version so cached pages
// go stale immediately
func TestGetUserPresentations_CacheInvalidatedOnCreate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	service := NewService(NewRepository(newTestDB(t)), allowAll{}, nopBus{}, cache.NewCache(client))

	assert.NoError(t, service.CreatePresentation(context.Background(), 1, &domain.Presentation{Title: "First"}))

	result, err := service.GetUserPresentations(context.Background(), 1, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, result.Data, 1)

	assert.NoError(t, service.CreatePresentation(context.Background(), 1, &domain.Presentation{Title: "Second"}))

	result, err = service.GetUserPresentations(context.Background(), 1, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, result.Data, 2)
}
