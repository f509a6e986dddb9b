package models

import "time"

// Account represents a registered user. The platform id is the immutable
// external identity; everything else is mutable profile or presence state.
type Account struct {
	ID         int       `db:"id" json:"id"`
	PlatformID int64     `db:"platform_id" json:"platform_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name,omitempty"`
	Username   string    `db:"username" json:"username,omitempty"`
	Bio        string    `db:"bio" json:"bio,omitempty"`
	IsOnline   bool      `db:"is_online" json:"is_online"`
	LastSeen   time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
