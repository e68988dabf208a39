package tiktok

import "fmt"

// errBodyMaxLen bounds how much of a provider response body is carried in an
// error string.
const errBodyMaxLen = 1024

// ConfigError reports a missing required setting, detected before any network
// call is made.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tiktok: %s is required", e.Setting)
}

// HTTPError is a non-2xx response from the provider. Body holds the raw
// response body.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tiktok: provider returned HTTP %d: %s", e.Status, truncate(e.Body, errBodyMaxLen))
}

// APIError is a 2xx response whose error envelope carries a code other than
// the provider's "ok" success sentinel.
type APIError struct {
	Code    string
	Message string
	LogID   string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tiktok: provider error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("tiktok: provider error %s", e.Code)
}

// ProtocolError is a success response missing a field the contract requires.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "tiktok: malformed provider response: " + e.Reason
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
