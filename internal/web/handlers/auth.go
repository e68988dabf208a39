package handlers

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/collabtok/collabtok/internal/db/models"
	"github.com/collabtok/collabtok/internal/session"
	"github.com/collabtok/collabtok/internal/store"
	"github.com/collabtok/collabtok/internal/sync"
	"github.com/collabtok/collabtok/internal/tiktok"
)

// StartAuth redirects the browser to the provider's authorization page.
func StartAuth(client *tiktok.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// State is generated and sent but not yet validated in the callback;
		// TODO: persist it in a short-lived cookie and verify it on return.
		authURL, err := client.AuthorizeURL("")
		if err != nil {
			log.Printf("TikTok auth start failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   err.Error(),
				"details": "Check that TIKTOK_CLIENT_KEY and TIKTOK_REDIRECT_URI are set",
			})
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// Callback handles the provider redirect and runs the connect transaction:
// exchange the code, fetch user info, reconcile the account, store the token,
// establish the session. Fatal failures redirect home with a machine-readable
// error code; nothing propagates past this handler.
func Callback(st *store.Store, client *tiktok.Client, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			log.Println("TikTok callback missing authorization code")
			http.Redirect(w, r, "/?error=missing_code", http.StatusFound)
			return
		}

		tok, err := client.ExchangeCode(r.Context(), code, "")
		if err != nil {
			redirectError(w, r, "exchange_failed", err)
			return
		}

		info, err := client.FetchUserInfo(r.Context(), tok.AccessToken)
		if err != nil {
			redirectError(w, r, "userinfo_failed", err)
			return
		}

		acc, err := st.FindAccountByOpenID(info.OpenID)
		if err != nil {
			redirectError(w, r, "account_lookup_failed", err)
			return
		}
		if acc == nil {
			acc, err = st.CreateAccount(info.OpenID, store.PlaceholderEmail(info.OpenID))
			if err != nil {
				redirectError(w, r, "account_create_failed", err)
				return
			}
		}

		if err := sync.WriteUserInfo(st, acc.ID, info); err != nil {
			redirectError(w, r, "sync_write_failed", err)
			return
		}

		var expiresAt *time.Time
		if tok.ExpiresIn > 0 {
			t := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
			expiresAt = &t
		}
		if err := st.UpsertToken(&models.TokenRecord{
			AccountID:    acc.ID,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    expiresAt,
			TokenType:    tok.TokenType,
			Scope:        tok.Scope,
		}); err != nil {
			// The user is already connected; a failed token write only means the
			// next sync reports no usable token until they reconnect.
			log.Printf("⚠️ Failed to store token for account %s: %v", acc.ID, err)
		}

		if err := sessions.Issue(w, acc.ID); err != nil {
			redirectError(w, r, "session_failed", err)
			return
		}

		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// Logout clears the session cookie and sends the browser home.
func Logout(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Clear(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func redirectError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Printf("TikTok callback error (%s): %v", code, err)
	q := url.Values{}
	q.Set("error", code)
	q.Set("details", err.Error())
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusFound)
}
