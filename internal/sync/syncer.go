// Package sync re-fetches provider data for connected accounts and writes the
// results back through the store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/collabtok/collabtok/internal/db/models"
	"github.com/collabtok/collabtok/internal/store"
	"github.com/collabtok/collabtok/internal/tiktok"
)

// expiryBuffer is how close to expiry a token may get before it is treated as
// stale and unusable.
const expiryBuffer = 5 * time.Minute

var (
	// ErrNoToken means the account has no stored credentials; the user must
	// reconnect.
	ErrNoToken = errors.New("sync: no access token stored, reconnect required")

	// ErrTokenExpired means the stored token is stale. Refresh-token exchange
	// is not implemented, so the user must reconnect.
	ErrTokenExpired = errors.New("sync: access token expired, reconnect required")
)

// Syncer is the sync orchestrator.
type Syncer struct {
	store  *store.Store
	client *tiktok.Client
}

func New(st *store.Store, client *tiktok.Client) *Syncer {
	return &Syncer{store: st, client: client}
}

// SyncAccount refreshes the profile and appends a stats snapshot for one
// account. A single best-effort attempt: provider errors come back verbatim,
// with no retry.
func (s *Syncer) SyncAccount(ctx context.Context, accountID string) error {
	tok, err := s.store.GetToken(accountID)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if tok == nil {
		return ErrNoToken
	}
	// nil ExpiresAt means the provider never reported one; treat as non-expiring.
	if tok.ExpiresAt != nil && time.Until(*tok.ExpiresAt) < expiryBuffer {
		// TODO: exchange the refresh token here instead of forcing a reconnect.
		return ErrTokenExpired
	}

	info, err := s.client.FetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return err
	}

	return WriteUserInfo(s.store, accountID, info)
}

// WriteUserInfo upserts the profile and appends a stats snapshot from fetched
// user info. Counts the provider omitted default to zero at this write
// boundary. The profile can land without its snapshot when the second write
// fails; callers report that as a failed sync and the next run repairs it.
func WriteUserInfo(st *store.Store, accountID string, info *tiktok.UserInfo) error {
	if err := st.UpsertProfile(&models.Profile{
		AccountID:      accountID,
		Username:       info.Username,
		DisplayName:    info.DisplayName,
		AvatarURL:      info.AvatarURL,
		Bio:            info.BioDescription,
		Verified:       boolValue(info.IsVerified),
		FollowerCount:  countValue(info.FollowerCount),
		FollowingCount: countValue(info.FollowingCount),
		VideoCount:     countValue(info.VideoCount),
	}); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if err := st.AppendStats(&models.StatsSnapshot{
		AccountID:      accountID,
		FollowerCount:  countValue(info.FollowerCount),
		FollowingCount: countValue(info.FollowingCount),
		VideoCount:     countValue(info.VideoCount),
		TotalLikes:     countValue(info.LikesCount),
		RecordedAt:     time.Now(),
	}); err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}

	return nil
}

// Result tallies one batch run.
type Result struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// SyncAll syncs every account holding a token record, strictly sequentially.
// One account's failure never aborts the batch; the tally is always complete.
func (s *Syncer) SyncAll(ctx context.Context) Result {
	res := Result{Errors: []string{}}

	ids, err := s.store.TokenAccountIDs()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("list token accounts: %v", err))
		return res
	}

	for _, id := range ids {
		if err := s.SyncAccount(ctx, id); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		res.Synced++
	}

	return res
}

// StartLoop runs SyncAll on a fixed interval in the background.
func (s *Syncer) StartLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			res := s.SyncAll(context.Background())
			log.Printf("🔄 Periodic sync finished: %d synced, %d failed", res.Synced, res.Failed)
		}
	}()
	log.Printf("🔄 Sync loop started (interval: %s)", interval)
}

func countValue(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func boolValue(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}
