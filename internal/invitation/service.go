package invitation

import (
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/realtime"
	"context"
	defError "errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

type InviteInput struct {
	InviteeEmail    string
	PermissionLevel string
	Message         *string
}

// InviteResult carries the created invitation together with the link the
// invitee receives.
type InviteResult struct {
	Invitation *domain.Invitation `json:"invitation"`
	InviteLink string             `json:"invite_link"`
}

// AcceptResult reports which presentation an accepted token unlocked.
type AcceptResult struct {
	Collaborator   *domain.Collaborator `json:"collaborator"`
	PresentationID uint64               `json:"presentation_id"`
}

type Service interface {
	Invite(ctx context.Context, presentationID uint64, inviterID uint64, input InviteInput) (*InviteResult, error)
	Accept(ctx context.Context, token string, acceptingUserID uint64) (*AcceptResult, error)
	Decline(ctx context.Context, token string, userID uint64) error
	Cancel(ctx context.Context, invitationID uint64, callerID uint64) error
	ListPending(ctx context.Context, presentationID uint64, callerID uint64) ([]domain.Invitation, error)
}

type DefaultService struct {
	repository      InvitationRepository
	authorizer      permission.Authorizer
	bus             realtime.Bus
	invitationTTL   time.Duration
	frontendAddress string
}

func NewService(
	repository InvitationRepository,
	authorizer permission.Authorizer,
	bus realtime.Bus,
	invitationTTL time.Duration,
	frontendAddress string,
) Service {
	return &DefaultService{
		repository:      repository,
		authorizer:      authorizer,
		bus:             bus,
		invitationTTL:   invitationTTL,
		frontendAddress: frontendAddress,
	}
}

// Invite issues a time-bounded single-use invitation. Only admins may
// invite; a live pending invite for the same (presentation, email) blocks
// a second one.
func (s *DefaultService) Invite(ctx context.Context, presentationID uint64, inviterID uint64, input InviteInput) (*InviteResult, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, inviterID, permission.LevelAdmin); err != nil {
		return nil, err
	}

	if _, ok := permission.ParseLevel(input.PermissionLevel); !ok {
		return nil, errors.Validation("Unknown permission level", nil)
	}

	now := time.Now().UTC()
	duplicate, err := s.repository.HasLivePending(ctx, presentationID, input.InviteeEmail, now)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if duplicate {
		return nil, errors.DuplicatePendingInvite("A pending invitation already exists for this email")
	}

	invitation := &domain.Invitation{
		PresentationID:  presentationID,
		InviterID:       inviterID,
		InviteeEmail:    input.InviteeEmail,
		PermissionLevel: input.PermissionLevel,
		Status:          domain.InvitationPending,
		Token:           NewToken(),
		Message:         input.Message,
		ExpiresAt:       now.Add(s.invitationTTL),
	}

	if err := s.repository.Create(ctx, invitation); err != nil {
		return nil, errors.Internal(err)
	}

	s.bus.Publish(presentationID, realtime.EventInvitationCreated, invitation)

	return &InviteResult{
		Invitation: invitation,
		InviteLink: fmt.Sprintf("%s/invite/%s", s.frontendAddress, invitation.Token),
	}, nil
}

// Accept redeems a token and enrolls the accepting user as a
// collaborator. Expiry is checked first, regardless of stored status, and
// persisted lazily as a side effect of this read. Replaying an accepted
// token fails InvitationNotPending and never duplicates the collaborator.
func (s *DefaultService) Accept(ctx context.Context, token string, acceptingUserID uint64) (*AcceptResult, error) {
	invitation, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if invitation.Expired(time.Now().UTC()) {
		s.lazyExpire(ctx, invitation)
		return nil, errors.InvitationExpired("This invitation has expired")
	}

	if invitation.Status != domain.InvitationPending {
		return nil, errors.InvitationNotPending("This invitation was already " + invitation.Status)
	}

	collaborator, err := s.repository.Accept(ctx, invitation.ID, acceptingUserID, invitation.PermissionLevel)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			// lost the race with another accept/cancel
			return nil, errors.InvitationNotPending("This invitation is no longer pending")
		}
		return nil, errors.Internal(err)
	}

	s.bus.Publish(invitation.PresentationID, realtime.EventCollaboratorJoined, collaborator)

	return &AcceptResult{
		Collaborator:   collaborator,
		PresentationID: invitation.PresentationID,
	}, nil
}

// Decline marks a pending invitation declined
func (s *DefaultService) Decline(ctx context.Context, token string, userID uint64) error {
	invitation, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}

	if invitation.Expired(time.Now().UTC()) {
		s.lazyExpire(ctx, invitation)
		return errors.InvitationExpired("This invitation has expired")
	}

	flipped, err := s.repository.UpdateStatus(ctx, invitation.ID, domain.InvitationPending, domain.InvitationDeclined)
	if err != nil {
		return errors.Internal(err)
	}
	if !flipped {
		return errors.InvitationNotPending("This invitation is no longer pending")
	}
	return nil
}

// Cancel withdraws a pending invitation. Admin only.
func (s *DefaultService) Cancel(ctx context.Context, invitationID uint64, callerID uint64) error {
	invitation, err := s.repository.FindByID(ctx, invitationID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Invitation not found", err)
		}
		return errors.Internal(err)
	}

	if _, err := s.authorizer.Authorize(ctx, invitation.PresentationID, callerID, permission.LevelAdmin); err != nil {
		return err
	}

	flipped, err := s.repository.UpdateStatus(ctx, invitationID, domain.InvitationPending, domain.InvitationCancelled)
	if err != nil {
		return errors.Internal(err)
	}
	if !flipped {
		return errors.InvitationNotPending("Only pending invitations can be cancelled")
	}

	s.bus.Publish(invitation.PresentationID, realtime.EventInvitationCancelled, invitation)
	return nil
}

// ListPending returns the presentation's live pending invitations.
// Invitations found expired on the way out are filtered and their status
// persisted lazily.
func (s *DefaultService) ListPending(ctx context.Context, presentationID uint64, callerID uint64) ([]domain.Invitation, error) {
	if _, err := s.authorizer.Authorize(ctx, presentationID, callerID, permission.LevelAdmin); err != nil {
		return nil, err
	}

	invitations, err := s.repository.ListPending(ctx, presentationID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := time.Now().UTC()
	live := make([]domain.Invitation, 0, len(invitations))
	for i := range invitations {
		if invitations[i].Expired(now) {
			s.lazyExpire(ctx, &invitations[i])
			continue
		}
		live = append(live, invitations[i])
	}
	return live, nil
}

func (s *DefaultService) findByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	invitation, err := s.repository.FindByToken(ctx, token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Invitation not found", err)
		}
		return nil, errors.Internal(err)
	}
	return invitation, nil
}

func (s *DefaultService) lazyExpire(ctx context.Context, invitation *domain.Invitation) {
	if invitation.Status != domain.InvitationPending {
		return
	}
	if _, err := s.repository.UpdateStatus(ctx, invitation.ID, domain.InvitationPending, domain.InvitationExpired); err != nil {
		log.Printf("[INVITATION] failed to persist expiry of %d: %v", invitation.ID, err)
	}
}
