package handlers

import (
	"net/http"

	"github.com/collabtok/collabtok/internal/session"
	"github.com/collabtok/collabtok/internal/store"
)

// Me returns the caller's stored profile and latest stats snapshot as JSON.
// This is the read path the dashboard renders from.
func Me(st *store.Store, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := sessions.AccountID(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "Not authenticated",
			})
			return
		}

		profile, err := st.GetProfile(accountID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		stats, err := st.LatestStats(accountID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"profile": profile,
			"stats":   stats,
		})
	}
}
