package models

import "time"

// Profile mirrors the latest fetched TikTok profile, one row per account,
// overwritten on every successful sync. The counts are a denormalized copy of
// the newest stats snapshot.
type Profile struct {
	AccountID      string    `gorm:"primaryKey" json:"account_id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	Bio            string    `json:"bio"`
	Verified       bool      `json:"verified"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	VideoCount     int64     `json:"video_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}
