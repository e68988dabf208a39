package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/collabtok/collabtok/internal/db/models"
)

func seedConnectedAccount(t *testing.T, env *testEnv, accountID, accessToken string) {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	if err := env.store.UpsertToken(&models.TokenRecord{
		AccountID:   accountID,
		AccessToken: accessToken,
		ExpiresAt:   &exp,
		TokenType:   "Bearer",
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

// authedRequest builds a request carrying a valid session cookie.
func authedRequest(t *testing.T, env *testEnv, method, target string) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := env.sessions.Issue(rr, "acc-1"); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestCronSync_RejectsBadSecret(t *testing.T) {
	env := newTestEnv(t, true)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cron/sync", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	CronSync(env.syncer, "s3cret")(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestCronSync_NoSecretConfiguredAllowsAll(t *testing.T) {
	env := newTestEnv(t, true)

	rr := httptest.NewRecorder()
	CronSync(env.syncer, "")(rr, httptest.NewRequest(http.MethodGet, "/cron/sync", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestCronSync_Tally(t *testing.T) {
	env := newTestEnv(t, true)
	seedConnectedAccount(t, env, "acc-1", "tok-1")
	// acc-2's token is already inside the staleness buffer, so it fails.
	stale := time.Now().Add(time.Minute)
	env.store.UpsertToken(&models.TokenRecord{AccountID: "acc-2", AccessToken: "tok-2", ExpiresAt: &stale})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cron/sync", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	CronSync(env.syncer, "s3cret")(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Success   bool     `json:"success"`
		Synced    int      `json:"synced"`
		Failed    int      `json:"failed"`
		Errors    []string `json:"errors"`
		Timestamp string   `json:"timestamp"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Synced != 1 || body.Failed != 1 || len(body.Errors) != 1 {
		t.Errorf("unexpected tally: %+v", body)
	}
	if body.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestRefresh_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, true)

	rr := httptest.NewRecorder()
	Refresh(env.syncer, env.sessions)(rr, httptest.NewRequest(http.MethodPost, "/sync/refresh", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestRefresh_Success(t *testing.T) {
	env := newTestEnv(t, true)
	seedConnectedAccount(t, env, "acc-1", "tok-1")

	rr := httptest.NewRecorder()
	Refresh(env.syncer, env.sessions)(rr, authedRequest(t, env, http.MethodPost, "/sync/refresh"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if snap, _ := env.store.LatestStats("acc-1"); snap == nil {
		t.Error("refresh did not write a snapshot")
	}
}

func TestRefresh_NoTokenReportsError(t *testing.T) {
	env := newTestEnv(t, true)

	rr := httptest.NewRecorder()
	Refresh(env.syncer, env.sessions)(rr, authedRequest(t, env, http.MethodPost, "/sync/refresh"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	json.Unmarshal(rr.Body.Bytes(), &body)
	if body.Success || body.Error == "" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, true)

	rr := httptest.NewRecorder()
	Me(env.store, env.sessions)(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMe_ReturnsProfileAndStats(t *testing.T) {
	env := newTestEnv(t, true)
	seedConnectedAccount(t, env, "acc-1", "tok-1")
	if err := env.syncer.SyncAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("seed sync: %v", err)
	}

	rr := httptest.NewRecorder()
	Me(env.store, env.sessions)(rr, authedRequest(t, env, http.MethodGet, "/api/me"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Success bool                   `json:"success"`
		Profile map[string]interface{} `json:"profile"`
		Stats   map[string]interface{} `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Profile == nil || body.Stats == nil {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
	if body.Profile["username"] != "creator" {
		t.Errorf("username = %v", body.Profile["username"])
	}

	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health()(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
