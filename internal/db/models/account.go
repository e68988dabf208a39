package models

import "time"

// Account is the local user record, created on the first successful connect
// for a previously unseen provider identity. OpenID is unique across accounts.
type Account struct {
	ID        string    `gorm:"primaryKey" json:"id"` // UUID
	OpenID    string    `gorm:"uniqueIndex;not null" json:"open_id"`
	Email     string    `json:"email"` // placeholder; TikTok does not supply email
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
