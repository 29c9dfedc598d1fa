package permission

import (
	"collaborative-presentation-server/internal/errors"
	defError "errors"

	"context"

	"gorm.io/gorm"
)

// Authorizer is what the other services depend on. Every mutating
// operation resolves the caller's level and authorizes it before touching
// state.
type Authorizer interface {
	Resolve(ctx context.Context, presentationID uint64, userID uint64) (Level, error)
	Authorize(ctx context.Context, presentationID uint64, userID uint64, required Level) (Level, error)
}

// Store is the minimal read surface the resolver needs
type Store interface {
	PresentationOwner(ctx context.Context, presentationID uint64) (uint64, error)
	CollaboratorLevel(ctx context.Context, presentationID uint64, userID uint64) (string, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve computes a user's effective level on a presentation. The owner
// is always admin. A user with no collaborator row gets a NotFound error,
// never a default level.
func (r *Resolver) Resolve(ctx context.Context, presentationID uint64, userID uint64) (Level, error) {
	ownerID, err := r.store.PresentationOwner(ctx, presentationID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.NotFound("Presentation not found", err)
		}
		return 0, errors.Internal(err)
	}

	if ownerID == userID {
		return LevelAdmin, nil
	}

	stored, err := r.store.CollaboratorLevel(ctx, presentationID, userID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.NotFound("No access to this presentation", err)
		}
		return 0, errors.Internal(err)
	}

	level, ok := ParseLevel(stored)
	if !ok {
		return 0, errors.NotFound("No access to this presentation", nil)
	}

	return level, nil
}

// Authorize resolves the caller's level and fails with PermissionDenied
// when it is below the required one. Returns the resolved level so callers
// can branch on it without a second lookup.
func (r *Resolver) Authorize(ctx context.Context, presentationID uint64, userID uint64, required Level) (Level, error) {
	level, err := r.Resolve(ctx, presentationID, userID)
	if err != nil {
		return 0, err
	}
	if !level.AtLeast(required) {
		return 0, errors.PermissionDenied("Requires "+required.String()+" access", nil)
	}
	return level, nil
}
