package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/contacts"
	"messenger-service/internal/repositories"
)

// ContactHandler manages the contact request workflow endpoints.
type ContactHandler struct {
	accounts repositories.AccountRepository
	contacts *contacts.Service
}

// NewContactHandler builds a ContactHandler.
func NewContactHandler(accounts repositories.AccountRepository, contactService *contacts.Service) *ContactHandler {
	return &ContactHandler{accounts: accounts, contacts: contactService}
}

// AddContact sends a contact request to the account behind a username.
func (h *ContactHandler) AddContact(c *gin.Context) {
	var req struct {
		Username   string `json:"username" binding:"required"`
		CustomName string `json:"custom_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	username := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")

	peer, err := h.accounts.GetByUsername(c.Request.Context(), username)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	customName := req.CustomName
	if customName == "" {
		customName = peer.FirstName
	}

	contact, err := h.contacts.Request(c.Request.Context(), userID, peer.ID, customName)
	if err != nil {
		switch {
		case errors.Is(err, contacts.ErrSelfContact):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add yourself"})
		case errors.Is(err, repositories.ErrContactExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "contact request already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create contact request"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"contact": gin.H{
			"id":         peer.ID,
			"name":       contact.CustomName,
			"username":   peer.Username,
			"first_name": peer.FirstName,
		},
	})
}

// AcceptContact accepts a pending request sent to the caller, establishing a
// mutual friendship.
func (h *ContactHandler) AcceptContact(c *gin.Context) {
	var req struct {
		FromUserID int `json:"from_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.contacts.Accept(c.Request.Context(), userID, req.FromUserID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrContactNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "contact request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact accepted"})
}

// RejectContact removes a pending request sent to the caller.
func (h *ContactHandler) RejectContact(c *gin.Context) {
	var req struct {
		FromUserID int `json:"from_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.contacts.Reject(c.Request.Context(), userID, req.FromUserID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrContactNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "contact request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact request rejected"})
}

// ListContacts returns accepted contacts plus pending requests in both
// directions.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID := c.GetInt("userID")

	entries, err := h.contacts.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": entries})
}
