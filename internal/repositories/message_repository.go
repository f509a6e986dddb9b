package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// MessageRepository defines interactions for direct messages. Every read path
// purges expired rows first, so callers never observe a message at or past
// its expiry deadline.
type MessageRepository interface {
	Create(ctx context.Context, senderID int, receiverID int, body string, ttl time.Duration) (models.Message, error)
	ListBetween(ctx context.Context, accountID int, contactID int) ([]models.Message, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a message expiring ttl from now.
func (r *MessageRepo) Create(ctx context.Context, senderID int, receiverID int, body string, ttl time.Duration) (models.Message, error) {
	var msg models.Message
	err := withRetry(func() error {
		return r.db.QueryRowxContext(ctx,
			`INSERT INTO messages (sender_id, receiver_id, body, expires_at)
             VALUES ($1, $2, $3, NOW() + make_interval(secs => $4))
             RETURNING id, sender_id, receiver_id, body, is_read, created_at, expires_at`,
			senderID, receiverID, body, ttl.Seconds()).
			Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.IsRead, &msg.CreatedAt, &msg.ExpiresAt)
	})
	return msg, err
}

// ListBetween returns the live messages exchanged between two accounts in
// creation order, deleting any expired rows first. The expiry boundary is
// exclusive: a row with expires_at == now is already gone.
func (r *MessageRepo) ListBetween(ctx context.Context, accountID int, contactID int) ([]models.Message, error) {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM messages
         WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
         AND expires_at <= NOW()`, accountID, contactID); err != nil {
		return nil, err
	}

	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, sender_id, receiver_id, body, is_read, created_at, expires_at
         FROM messages
         WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
         AND expires_at > NOW()
         ORDER BY created_at ASC`, accountID, contactID)
	return msgs, err
}

// DeleteExpired purges every message past its deadline and reports how many
// rows went away.
func (r *MessageRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var purged int64
	err := withRetry(func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE expires_at <= NOW()`)
		if err != nil {
			return err
		}
		purged, err = res.RowsAffected()
		return err
	})
	return purged, err
}
