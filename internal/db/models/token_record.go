package models

import "time"

// TokenRecord stores the provider credentials for an account, one row per
// account, overwritten on every connect. ExpiresAt is nil when the provider
// omitted expires_in; such tokens are treated as non-expiring.
type TokenRecord struct {
	AccountID    string `gorm:"primaryKey"`
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	TokenType    string
	Scope        string
	UpdatedAt    time.Time
}
