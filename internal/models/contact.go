package models

import "time"

// Contact is a directed edge from owner to peer. A pending edge is a contact
// request; an accepted edge grants owner permission to message peer. A mutual
// friendship is two accepted edges, one per direction.
type Contact struct {
	ID         int        `db:"id" json:"id"`
	OwnerID    int        `db:"owner_id" json:"owner_id"`
	PeerID     int        `db:"peer_id" json:"peer_id"`
	CustomName string     `db:"custom_name" json:"custom_name,omitempty"`
	Accepted   bool       `db:"accepted" json:"accepted"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	AcceptedAt *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
}

// ContactEntry is the API-friendly view of one contact relation, joined with
// the account on the far side of the edge.
type ContactEntry struct {
	AccountID       int        `json:"id"`
	PlatformID      int64      `json:"platform_id"`
	Name            string     `json:"name"`
	Username        string     `json:"username,omitempty"`
	IsOnline        bool       `json:"is_online"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
	Accepted        bool       `json:"is_accepted"`
	PendingFromThem bool       `json:"pending_from_them"`
}
