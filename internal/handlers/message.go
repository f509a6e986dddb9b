package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/contacts"
	"messenger-service/internal/repositories"
)

// MessageHandler serves the REST messaging surface: sends with a
// configurable TTL and expiry-filtered history reads.
type MessageHandler struct {
	contacts   *contacts.Service
	messages   repositories.MessageRepository
	defaultTTL time.Duration
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(contactService *contacts.Service, messages repositories.MessageRepository, defaultTTL time.Duration) *MessageHandler {
	return &MessageHandler{contacts: contactService, messages: messages, defaultTTL: defaultTTL}
}

// SendMessage stores a message for an accepted contact. expire_seconds
// overrides the default TTL; sends toward a non-contact are rejected before
// any store write.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		ToUserID      int    `json:"to_user_id" binding:"required"`
		Content       string `json:"content" binding:"required"`
		ExpireSeconds int    `json:"expire_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	allowed, err := h.contacts.CanMessage(c.Request.Context(), userID, req.ToUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify contact"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a contact"})
		return
	}

	ttl := h.defaultTTL
	if req.ExpireSeconds > 0 {
		ttl = time.Duration(req.ExpireSeconds) * time.Second
	}

	msg, err := h.messages.Create(c.Request.Context(), userID, req.ToUserID, req.Content, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GetMessages returns the live messages exchanged with one contact in
// creation order. Expired rows are purged from the store as a side effect of
// the read.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	contactID, err := strconv.Atoi(c.Param("contact_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	userID := c.GetInt("userID")
	msgs, err := h.messages.ListBetween(c.Request.Context(), userID, contactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
