package models

import "time"

// Message represents a direct message with an absolute expiry deadline.
// A message is visible only while now < expires_at; past the deadline it is
// deleted outright, there is no soft-delete.
type Message struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"content"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
}
