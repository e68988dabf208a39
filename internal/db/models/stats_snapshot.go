package models

import "time"

// StatsSnapshot is an append-only capture of account statistics, one row per
// sync event. Rows are never updated or deleted; the newest RecordedAt is the
// authoritative current view.
type StatsSnapshot struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID      string    `gorm:"index;not null" json:"account_id"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	VideoCount     int64     `json:"video_count"`
	TotalLikes     int64     `json:"total_likes"`
	RecordedAt     time.Time `gorm:"index" json:"recorded_at"`
}
