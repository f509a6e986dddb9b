package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/contacts"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/messages", handler.SendMessage)
	r.GET("/messages/:contact_id", handler.GetMessages)
	return r
}

func TestSendMessageSuccessUsesDefaultTTL(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(contacts.NewService(contactRepo), messageRepo, 24*time.Hour)
	router := setupMessageRouter(handler)

	contactRepo.On("HasAccepted", mock.Anything, 1, 2).Return(true, nil).Once()
	messageRepo.On("Create", mock.Anything, 1, 2, "hi", 24*time.Hour).
		Return(models.Message{ID: 7, SenderID: 1, ReceiverID: 2, Body: "hi"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to_user_id":2,"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	contactRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestSendMessageCustomExpiry(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(contacts.NewService(contactRepo), messageRepo, 24*time.Hour)
	router := setupMessageRouter(handler)

	contactRepo.On("HasAccepted", mock.Anything, 1, 2).Return(true, nil).Once()
	messageRepo.On("Create", mock.Anything, 1, 2, "hi", 5*time.Second).
		Return(models.Message{ID: 8}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to_user_id":2,"content":"hi","expire_seconds":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestSendMessageRejectedWithoutAcceptedEdge(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(contacts.NewService(contactRepo), messageRepo, 24*time.Hour)
	router := setupMessageRouter(handler)

	contactRepo.On("HasAccepted", mock.Anything, 1, 2).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to_user_id":2,"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageMissingFields(t *testing.T) {
	handler := NewMessageHandler(contacts.NewService(new(mocks.ContactRepositoryMock)), new(mocks.MessageRepositoryMock), 24*time.Hour)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to_user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(contacts.NewService(new(mocks.ContactRepositoryMock)), messageRepo, 24*time.Hour)
	router := setupMessageRouter(handler)

	messageRepo.On("ListBetween", mock.Anything, 1, 2).
		Return([]models.Message{{ID: 1, SenderID: 1, ReceiverID: 2, Body: "hi"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["messages"], 1)
	messageRepo.AssertExpectations(t)
}

func TestGetMessagesInvalidID(t *testing.T) {
	handler := NewMessageHandler(contacts.NewService(new(mocks.ContactRepositoryMock)), new(mocks.MessageRepositoryMock), 24*time.Hour)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/messages/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
