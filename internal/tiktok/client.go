package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TikTok OAuth v2 (Login Kit for Web) endpoints.
const (
	AuthorizeEndpoint = "https://www.tiktok.com/v2/auth/authorize/"
	TokenEndpoint     = "https://open.tiktokapis.com/v2/oauth/token/"
	UserInfoEndpoint  = "https://open.tiktokapis.com/v2/user/info/"
)

// Scopes requested on every connect, joined with commas in the authorize URL.
var Scopes = []string{
	"user.info.basic",
	"user.info.profile",
	"user.info.stats",
}

// userInfoFields is the fixed field list requested from the user-info endpoint.
const userInfoFields = "open_id,union_id,username,display_name,avatar_url,bio_description,is_verified,follower_count,following_count,video_count,likes_count"

// Config carries the OAuth application credentials.
type Config struct {
	ClientKey    string
	ClientSecret string
	RedirectURI  string
}

// Client talks to the TikTok OAuth and user-info endpoints. The endpoint URLs
// are fields so tests can point them at a local server.
type Client struct {
	cfg        Config
	httpClient *http.Client

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// NewClient creates a provider client for the given credentials.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		AuthURL:     AuthorizeEndpoint,
		TokenURL:    TokenEndpoint,
		UserInfoURL: UserInfoEndpoint,
	}
}

// AuthorizeURL builds the provider authorization URL. When state is empty a
// random one is generated. Credential checks happen here, before any redirect
// is issued.
func (c *Client) AuthorizeURL(state string) (string, error) {
	if c.cfg.ClientKey == "" {
		return "", &ConfigError{Setting: "TIKTOK_CLIENT_KEY"}
	}
	if c.cfg.RedirectURI == "" {
		return "", &ConfigError{Setting: "TIKTOK_REDIRECT_URI"}
	}
	if state == "" {
		state = uuid.New().String()
	}

	q := url.Values{}
	q.Set("client_key", c.cfg.ClientKey)
	q.Set("scope", strings.Join(Scopes, ","))
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("state", state)
	return c.AuthURL + "?" + q.Encode(), nil
}

// TokenResponse is the decoded token-exchange response. ExpiresIn is relative
// seconds as the provider reported it; zero means the provider omitted it.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	Scope            string `json:"scope"`
	OpenID           string `json:"open_id"`
}

// ExchangeCode exchanges an authorization code for a token pair. verifier is
// the optional PKCE code verifier.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*TokenResponse, error) {
	if code == "" {
		return nil, errors.New("tiktok: authorization code is required")
	}
	if c.cfg.ClientKey == "" {
		return nil, &ConfigError{Setting: "TIKTOK_CLIENT_KEY"}
	}
	if c.cfg.ClientSecret == "" {
		return nil, &ConfigError{Setting: "TIKTOK_CLIENT_SECRET"}
	}
	if c.cfg.RedirectURI == "" {
		return nil, &ConfigError{Setting: "TIKTOK_REDIRECT_URI"}
	}

	form := url.Values{}
	form.Set("client_key", c.cfg.ClientKey)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.cfg.RedirectURI)
	if verifier != "" {
		form.Set("code_verifier", verifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, &ProtocolError{Reason: "undecodable token response"}
	}
	if tok.AccessToken == "" {
		return nil, &ProtocolError{Reason: "token response missing access_token"}
	}
	if tok.OpenID == "" {
		return nil, &ProtocolError{Reason: "token response missing open_id"}
	}
	return &tok, nil
}

// UserInfo is the decoded user-info payload. Counts and the verification flag
// are pointers: absent means unknown, not zero. Zero-defaulting happens at
// write time, not here.
type UserInfo struct {
	OpenID         string `json:"open_id"`
	UnionID        string `json:"union_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url"`
	BioDescription string `json:"bio_description"`
	IsVerified     *bool  `json:"is_verified"`
	FollowerCount  *int64 `json:"follower_count"`
	FollowingCount *int64 `json:"following_count"`
	VideoCount     *int64 `json:"video_count"`
	LikesCount     *int64 `json:"likes_count"`
}

// FetchUserInfo retrieves the profile and stats for the token's owner.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	if accessToken == "" {
		return nil, errors.New("tiktok: access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserInfoURL+"?fields="+url.QueryEscape(userInfoFields), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeUserInfo(body)
}

// decodeUserInfo resolves the user object across the response shapes the
// provider has been seen to emit, in order: data.user, then data, then the
// root object. The first candidate carrying an open_id wins.
func decodeUserInfo(body []byte) (*UserInfo, error) {
	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(body, &outer)

	var candidates [][]byte
	if len(outer.Data) > 0 && string(outer.Data) != "null" {
		var inner struct {
			User json.RawMessage `json:"user"`
		}
		_ = json.Unmarshal(outer.Data, &inner)
		if len(inner.User) > 0 && string(inner.User) != "null" {
			candidates = append(candidates, inner.User)
		}
		candidates = append(candidates, outer.Data)
	}
	candidates = append(candidates, body)

	for _, raw := range candidates {
		var info UserInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			continue
		}
		if info.OpenID != "" {
			return &info, nil
		}
	}
	return nil, &ProtocolError{Reason: "user payload missing open_id"}
}

// apiEnvelope is the provider's error envelope. The provider signals success
// with error.code == "ok", so only other codes are failures.
type apiEnvelope struct {
	Error *providerError `json:"error"`
}

type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

// UnmarshalJSON accepts both the object form and the bare-string form the
// provider has been seen to emit.
func (e *providerError) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		e.Code = s
		return nil
	}
	type alias providerError
	return json.Unmarshal(b, (*alias)(e))
}

// do performs the request and applies the two failure layers: non-2xx status,
// then a non-"ok" error envelope inside a 2xx body.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ProtocolError{Reason: "undecodable response body"}
	}
	if env.Error != nil && env.Error.Code != "" && env.Error.Code != "ok" {
		return nil, &APIError{Code: env.Error.Code, Message: env.Error.Message, LogID: env.Error.LogID}
	}
	return body, nil
}
