package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type fakeChecker struct {
	allowed bool
	err     error
	calls   int
}

func (f *fakeChecker) CanMessage(_ context.Context, _ int, _ int) (bool, error) {
	f.calls++
	return f.allowed, f.err
}

func newTestHandler(accounts *mocks.AccountRepositoryMock, checker ContactChecker, messages *mocks.MessageRepositoryMock) *ChatWebSocketHandler {
	return NewChatWebSocketHandler(NewHub(&fakePresence{}), accounts, checker, messages, 30*time.Second, 20, 40)
}

func TestDispatchSendMessageStoresAndUsesLiveTTL(t *testing.T) {
	accounts := new(mocks.AccountRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	checker := &fakeChecker{allowed: true}
	handler := newTestHandler(accounts, checker, messages)

	accounts.On("GetByPlatformID", mock.Anything, int64(100)).Return(models.Account{ID: 1, PlatformID: 100}, nil).Once()
	accounts.On("GetByID", mock.Anything, 2).Return(models.Account{ID: 2, PlatformID: 200}, nil).Once()
	messages.On("Create", mock.Anything, 1, 2, "hi", 30*time.Second).
		Return(models.Message{ID: 5, SenderID: 1, ReceiverID: 2, Body: "hi", CreatedAt: time.Now()}, nil).Once()

	handler.dispatch(context.Background(), 100, []byte(`{"type":"send_message","to_user_id":2,"message":"hi","message_id":1}`))

	accounts.AssertExpectations(t)
	messages.AssertExpectations(t)
	require.Equal(t, 1, checker.calls)
}

func TestDispatchSendMessageDroppedWithoutAcceptedEdge(t *testing.T) {
	accounts := new(mocks.AccountRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	checker := &fakeChecker{allowed: false}
	handler := newTestHandler(accounts, checker, messages)

	accounts.On("GetByPlatformID", mock.Anything, int64(100)).Return(models.Account{ID: 1, PlatformID: 100}, nil).Once()
	accounts.On("GetByID", mock.Anything, 2).Return(models.Account{ID: 2, PlatformID: 200}, nil).Once()

	handler.dispatch(context.Background(), 100, []byte(`{"type":"send_message","to_user_id":2,"message":"hi","message_id":1}`))

	// No accepted edge: nothing may be written to the store.
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	accounts.AssertExpectations(t)
}

func TestDispatchSendMessageUnknownSenderIsNonFatal(t *testing.T) {
	accounts := new(mocks.AccountRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newTestHandler(accounts, &fakeChecker{allowed: true}, messages)

	accounts.On("GetByPlatformID", mock.Anything, int64(100)).Return(models.Account{}, repositories.ErrAccountNotFound).Once()

	handler.dispatch(context.Background(), 100, []byte(`{"type":"send_message","to_user_id":2,"message":"hi","message_id":1}`))

	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchContactRequestResolvesTarget(t *testing.T) {
	accounts := new(mocks.AccountRepositoryMock)
	handler := newTestHandler(accounts, &fakeChecker{}, new(mocks.MessageRepositoryMock))

	accounts.On("GetByID", mock.Anything, 3).Return(models.Account{ID: 3, PlatformID: 300}, nil).Once()

	handler.dispatch(context.Background(), 100, []byte(`{"type":"contact_request","to_user_id":3,"custom_name":"Bob"}`))

	accounts.AssertExpectations(t)
}

func TestDispatchAcceptContactResolvesRequester(t *testing.T) {
	accounts := new(mocks.AccountRepositoryMock)
	handler := newTestHandler(accounts, &fakeChecker{}, new(mocks.MessageRepositoryMock))

	accounts.On("GetByID", mock.Anything, 9).Return(models.Account{ID: 9, PlatformID: 900}, nil).Once()

	handler.dispatch(context.Background(), 100, []byte(`{"type":"accept_contact","from_user_id":9}`))

	accounts.AssertExpectations(t)
}

func TestDispatchIgnoresUnknownAndMalformedFrames(t *testing.T) {
	accounts := new(mocks.AccountRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newTestHandler(accounts, &fakeChecker{}, messages)

	handler.dispatch(context.Background(), 100, []byte(`{"type":"typing_indicator"}`))
	handler.dispatch(context.Background(), 100, []byte(`{"type":"send_message","to_user_id":2}`))
	handler.dispatch(context.Background(), 100, []byte(`not json`))

	accounts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
