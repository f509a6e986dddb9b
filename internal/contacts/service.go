package contacts

import (
	"context"
	"errors"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

var ErrSelfContact = errors.New("cannot add yourself as a contact")

// Service applies the contact request state machine over the ordered pair
// (owner, peer): none -> pending on Request, pending -> accepted on Accept,
// pending -> gone on Reject.
type Service struct {
	contacts repositories.ContactRepository
}

// NewService constructs the workflow service.
func NewService(contacts repositories.ContactRepository) *Service {
	return &Service{contacts: contacts}
}

// Request creates a pending edge owner->peer. Fails with ErrSelfContact when
// owner and peer are the same account and with
// repositories.ErrContactExists on a duplicate request in either state.
func (s *Service) Request(ctx context.Context, ownerID int, peerID int, customName string) (models.Contact, error) {
	if ownerID == peerID {
		return models.Contact{}, ErrSelfContact
	}
	return s.contacts.Create(ctx, ownerID, peerID, customName)
}

// Accept is performed by the peer of a pending request. It accepts the
// original edge requester->acceptor and materializes the reciprocal accepted
// edge in one store transaction, so a friendship can never be half-applied.
func (s *Service) Accept(ctx context.Context, acceptorID int, requesterID int) error {
	return s.contacts.EstablishFriendship(ctx, requesterID, acceptorID)
}

// Reject removes the pending edge requester->acceptor entirely, leaving no
// trace in either direction.
func (s *Service) Reject(ctx context.Context, acceptorID int, requesterID int) error {
	return s.contacts.DeletePending(ctx, requesterID, acceptorID)
}

// CanMessage reports whether sender holds an accepted edge toward receiver.
func (s *Service) CanMessage(ctx context.Context, senderID int, receiverID int) (bool, error) {
	return s.contacts.HasAccepted(ctx, senderID, receiverID)
}

// List returns the account's contact relations: accepted edges plus pending
// requests in both directions.
func (s *Service) List(ctx context.Context, accountID int) ([]models.ContactEntry, error) {
	return s.contacts.ListEntries(ctx, accountID)
}
