package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrContactNotFound = errors.New("contact request not found")
	ErrContactExists   = errors.New("contact already exists")
)

// ContactRepository abstracts contact edge persistence. An edge owner->peer
// is unique per ordered pair.
type ContactRepository interface {
	Create(ctx context.Context, ownerID int, peerID int, customName string) (models.Contact, error)
	EstablishFriendship(ctx context.Context, ownerID int, peerID int) error
	DeletePending(ctx context.Context, ownerID int, peerID int) error
	HasAccepted(ctx context.Context, ownerID int, peerID int) (bool, error)
	ListEntries(ctx context.Context, accountID int) ([]models.ContactEntry, error)
}

// ContactRepo is a sqlx implementation of ContactRepository.
type ContactRepo struct {
	db *sqlx.DB
}

// NewContactRepo constructs a ContactRepo.
func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// Create inserts a pending edge owner->peer. Returns ErrContactExists when an
// edge for the ordered pair already exists, pending or accepted.
func (r *ContactRepo) Create(ctx context.Context, ownerID int, peerID int, customName string) (models.Contact, error) {
	var contact models.Contact
	err := withRetry(func() error {
		return r.db.QueryRowxContext(ctx,
			`INSERT INTO contacts (owner_id, peer_id, custom_name) VALUES ($1, $2, $3)
             RETURNING id, owner_id, peer_id, custom_name, accepted, created_at, accepted_at`,
			ownerID, peerID, customName).
			Scan(&contact.ID, &contact.OwnerID, &contact.PeerID, &contact.CustomName, &contact.Accepted, &contact.CreatedAt, &contact.AcceptedAt)
	})
	if isUniqueViolation(err) {
		return models.Contact{}, ErrContactExists
	}
	return contact, err
}

// EstablishFriendship atomically accepts the pending edge owner->peer and
// creates (or re-accepts) the reciprocal edge peer->owner, so that one accept
// yields a symmetric friendship. The reciprocal edge is named after the
// requester. Returns ErrContactNotFound when no pending edge exists.
func (r *ContactRepo) EstablishFriendship(ctx context.Context, ownerID int, peerID int) error {
	return withRetry(func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`UPDATE contacts SET accepted=TRUE, accepted_at=NOW() WHERE owner_id=$1 AND peer_id=$2 AND accepted=FALSE`,
			ownerID, peerID)
		if err != nil {
			return err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrContactNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (owner_id, peer_id, custom_name, accepted, accepted_at)
             SELECT $1, $2, first_name, TRUE, NOW() FROM accounts WHERE id=$2
             ON CONFLICT (owner_id, peer_id)
             DO UPDATE SET accepted=TRUE, accepted_at=COALESCE(contacts.accepted_at, NOW())`,
			peerID, ownerID); err != nil {
			return err
		}

		return tx.Commit()
	})
}

// DeletePending removes the pending edge owner->peer entirely.
func (r *ContactRepo) DeletePending(ctx context.Context, ownerID int, peerID int) error {
	return withRetry(func() error {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM contacts WHERE owner_id=$1 AND peer_id=$2 AND accepted=FALSE`, ownerID, peerID)
		if err != nil {
			return err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrContactNotFound
		}
		return nil
	})
}

// HasAccepted reports whether the accepted edge owner->peer exists. This is
// the messaging eligibility check and is asymmetric by construction.
func (r *ContactRepo) HasAccepted(ctx context.Context, ownerID int, peerID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM contacts WHERE owner_id=$1 AND peer_id=$2 AND accepted=TRUE)`,
		ownerID, peerID)
	return exists, err
}

type contactEntryRow struct {
	AccountID  int          `db:"account_id"`
	PlatformID int64        `db:"platform_id"`
	FirstName  string       `db:"first_name"`
	Username   string       `db:"username"`
	CustomName string       `db:"custom_name"`
	IsOnline   bool         `db:"is_online"`
	LastSeen   sql.NullTime `db:"last_seen"`
}

// ListEntries returns the account's accepted contacts followed by pending
// requests received and pending requests sent, each joined with the account
// on the far side of the edge.
func (r *ContactRepo) ListEntries(ctx context.Context, accountID int) ([]models.ContactEntry, error) {
	entries := []models.ContactEntry{}

	accepted, err := r.queryEntries(ctx,
		`SELECT a.id AS account_id, a.platform_id, a.first_name, a.username, c.custom_name, a.is_online, a.last_seen
         FROM contacts c JOIN accounts a ON a.id = c.peer_id
         WHERE c.owner_id=$1 AND c.accepted=TRUE
         ORDER BY c.accepted_at DESC`, accountID, true, false)
	if err != nil {
		return nil, err
	}
	entries = append(entries, accepted...)

	received, err := r.queryEntries(ctx,
		`SELECT a.id AS account_id, a.platform_id, a.first_name, a.username, c.custom_name, a.is_online, a.last_seen
         FROM contacts c JOIN accounts a ON a.id = c.owner_id
         WHERE c.peer_id=$1 AND c.accepted=FALSE
         ORDER BY c.created_at DESC`, accountID, false, true)
	if err != nil {
		return nil, err
	}
	entries = append(entries, received...)

	sent, err := r.queryEntries(ctx,
		`SELECT a.id AS account_id, a.platform_id, a.first_name, a.username, c.custom_name, a.is_online, a.last_seen
         FROM contacts c JOIN accounts a ON a.id = c.peer_id
         WHERE c.owner_id=$1 AND c.accepted=FALSE
         ORDER BY c.created_at DESC`, accountID, false, false)
	if err != nil {
		return nil, err
	}
	entries = append(entries, sent...)

	return entries, nil
}

func (r *ContactRepo) queryEntries(ctx context.Context, query string, accountID int, accepted bool, pendingFromThem bool) ([]models.ContactEntry, error) {
	rows, err := r.db.QueryxContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ContactEntry
	for rows.Next() {
		var row contactEntryRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		name := row.CustomName
		if name == "" {
			name = row.FirstName
		}
		entry := models.ContactEntry{
			AccountID:       row.AccountID,
			PlatformID:      row.PlatformID,
			Name:            name,
			Username:        row.Username,
			IsOnline:        row.IsOnline,
			Accepted:        accepted,
			PendingFromThem: pendingFromThem,
		}
		if row.LastSeen.Valid {
			seen := row.LastSeen.Time
			entry.LastSeen = &seen
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
