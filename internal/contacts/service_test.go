package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

func TestRequestCreatesPendingEdge(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	repo.On("Create", mock.Anything, 1, 2, "Bob").
		Return(models.Contact{ID: 10, OwnerID: 1, PeerID: 2, CustomName: "Bob"}, nil).Once()

	contact, err := service.Request(context.Background(), 1, 2, "Bob")
	require.NoError(t, err)
	require.Equal(t, 1, contact.OwnerID)
	require.Equal(t, 2, contact.PeerID)
	require.False(t, contact.Accepted)
	repo.AssertExpectations(t)
}

func TestRequestRejectsSelf(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	_, err := service.Request(context.Background(), 1, 1, "me")
	require.ErrorIs(t, err, ErrSelfContact)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestDuplicate(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	repo.On("Create", mock.Anything, 1, 2, "Bob").
		Return(models.Contact{}, repositories.ErrContactExists).Once()

	_, err := service.Request(context.Background(), 1, 2, "Bob")
	require.ErrorIs(t, err, repositories.ErrContactExists)
}

func TestAcceptEstablishesFriendshipForOriginalEdge(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	// Account 1 requested, account 2 accepts: the original edge is 1->2.
	repo.On("EstablishFriendship", mock.Anything, 1, 2).Return(nil).Once()

	require.NoError(t, service.Accept(context.Background(), 2, 1))
	repo.AssertExpectations(t)
}

func TestAcceptWithoutPendingRequest(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	repo.On("EstablishFriendship", mock.Anything, 1, 2).Return(repositories.ErrContactNotFound).Once()

	err := service.Accept(context.Background(), 2, 1)
	require.ErrorIs(t, err, repositories.ErrContactNotFound)
}

func TestRejectDeletesPendingEdge(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	repo.On("DeletePending", mock.Anything, 1, 2).Return(nil).Once()

	require.NoError(t, service.Reject(context.Background(), 2, 1))
	repo.AssertExpectations(t)
}

func TestCanMessageChecksDirectedEdge(t *testing.T) {
	repo := new(mocks.ContactRepositoryMock)
	service := NewService(repo)

	repo.On("HasAccepted", mock.Anything, 1, 2).Return(true, nil).Once()
	repo.On("HasAccepted", mock.Anything, 2, 1).Return(false, nil).Once()

	allowed, err := service.CanMessage(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = service.CanMessage(context.Background(), 2, 1)
	require.NoError(t, err)
	require.False(t, allowed)
}
