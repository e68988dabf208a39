package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/collabtok/collabtok/internal/session"
	"github.com/collabtok/collabtok/internal/sync"
)

// CronSync runs the batch resync. When a cron secret is configured, the
// request must carry it as a bearer token.
func CronSync(syncer *sync.Syncer, cronSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cronSecret != "" && r.Header.Get("Authorization") != "Bearer "+cronSecret {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}

		log.Println("Starting TikTok sync for all users...")
		res := syncer.SyncAll(r.Context())
		log.Printf("TikTok sync completed: %d synced, %d failed", res.Synced, res.Failed)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"synced":    res.Synced,
			"failed":    res.Failed,
			"errors":    res.Errors,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Refresh syncs the caller's own account immediately.
func Refresh(syncer *sync.Syncer, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := sessions.AccountID(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "Not authenticated",
			})
			return
		}

		log.Printf("Manual refresh requested for account: %s", accountID)
		if err := syncer.SyncAccount(r.Context(), accountID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Data refreshed successfully",
		})
	}
}
