package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type AccountRepositoryMock struct {
	mock.Mock
}

func (m *AccountRepositoryMock) GetByID(ctx context.Context, id int) (models.Account, error) {
	args := m.Called(ctx, id)
	var account models.Account
	if val := args.Get(0); val != nil {
		account = val.(models.Account)
	}
	return account, args.Error(1)
}

func (m *AccountRepositoryMock) GetByPlatformID(ctx context.Context, platformID int64) (models.Account, error) {
	args := m.Called(ctx, platformID)
	var account models.Account
	if val := args.Get(0); val != nil {
		account = val.(models.Account)
	}
	return account, args.Error(1)
}

func (m *AccountRepositoryMock) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	args := m.Called(ctx, username)
	var account models.Account
	if val := args.Get(0); val != nil {
		account = val.(models.Account)
	}
	return account, args.Error(1)
}

func (m *AccountRepositoryMock) SetOnline(ctx context.Context, platformID int64, online bool) error {
	args := m.Called(ctx, platformID, online)
	return args.Error(0)
}

func (m *AccountRepositoryMock) IsOnline(ctx context.Context, platformID int64) (bool, error) {
	args := m.Called(ctx, platformID)
	return args.Bool(0), args.Error(1)
}

type ContactRepositoryMock struct {
	mock.Mock
}

func (m *ContactRepositoryMock) Create(ctx context.Context, ownerID int, peerID int, customName string) (models.Contact, error) {
	args := m.Called(ctx, ownerID, peerID, customName)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

func (m *ContactRepositoryMock) EstablishFriendship(ctx context.Context, ownerID int, peerID int) error {
	args := m.Called(ctx, ownerID, peerID)
	return args.Error(0)
}

func (m *ContactRepositoryMock) DeletePending(ctx context.Context, ownerID int, peerID int) error {
	args := m.Called(ctx, ownerID, peerID)
	return args.Error(0)
}

func (m *ContactRepositoryMock) HasAccepted(ctx context.Context, ownerID int, peerID int) (bool, error) {
	args := m.Called(ctx, ownerID, peerID)
	return args.Bool(0), args.Error(1)
}

func (m *ContactRepositoryMock) ListEntries(ctx context.Context, accountID int) ([]models.ContactEntry, error) {
	args := m.Called(ctx, accountID)
	var entries []models.ContactEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.ContactEntry)
	}
	return entries, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID int, receiverID int, body string, ttl time.Duration) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body, ttl)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListBetween(ctx context.Context, accountID int, contactID int) ([]models.Message, error) {
	args := m.Called(ctx, accountID, contactID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ repositories.AccountRepository = (*AccountRepositoryMock)(nil)
var _ repositories.ContactRepository = (*ContactRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
