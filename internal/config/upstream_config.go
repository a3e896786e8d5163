package config

import "time"

// UpstreamConfig describes everything needed to talk to the Central
// platform: the OAuth hand-off endpoints, the client credentials, and the
// API bases the delegated proxy forwards to.
type UpstreamConfig interface {
	GetConnectURL() string
	GetTokenURL() string
	GetAPIBaseURL() string
	GetIntegrationsBaseURL() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetScope() string
	GetStateSecret() string
	GetStateTTL() time.Duration
	GetRequestTimeout() time.Duration
	GetUploadTimeout() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
	GetProviderStatusPaths() map[string]string
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

// GetConnectURL is the upstream's authorization UI page; the start handler
// redirects the merchant's browser here, out of the embedded iframe.
func (Upstream) GetConnectURL() string {
	return GetEnv("CENTRAL_CONNECT_URL", "")
}

func (Upstream) GetTokenURL() string {
	return GetEnv("CENTRAL_OAUTH_TOKEN_URL", "")
}

// GetAPIBaseURL is the base for chat-agent CRUD calls.
func (Upstream) GetAPIBaseURL() string {
	return GetEnv("CENTRAL_CSR_BACKEND_URL", "")
}

// GetIntegrationsBaseURL is the base for third-party integration status
// checks (calendar providers).
func (Upstream) GetIntegrationsBaseURL() string {
	return GetEnv("CENTRAL_BACKEND_API_URL", "")
}

func (Upstream) GetClientID() string {
	return GetEnv("CENTRAL_OAUTH_CLIENT_ID", "")
}

func (Upstream) GetClientSecret() string {
	return GetEnv("CENTRAL_OAUTH_CLIENT_SECRET", "")
}

func (Upstream) GetRedirectURI() string {
	return GetEnv("CENTRAL_OAUTH_REDIRECT_URI", "")
}

func (Upstream) GetScope() string {
	return GetEnv("CENTRAL_OAUTH_SCOPE", "read:workspaces")
}

func (Upstream) GetStateSecret() string {
	return GetEnv("CENTRAL_OAUTH_STATE_SECRET", "")
}

// GetStateTTL bounds how long a state nonce stays in the consumed set.
// Anything older than the expected callback latency is useless to an
// attacker and to us.
func (Upstream) GetStateTTL() time.Duration {
	return 15 * time.Minute
}

func (Upstream) GetRequestTimeout() time.Duration {
	return 15 * time.Second
}

// GetUploadTimeout covers multipart create/update calls, which may carry
// avatar images and knowledge-base files.
func (Upstream) GetUploadTimeout() time.Duration {
	return 60 * time.Second
}

func (Upstream) GetDefaultRefreshTokenExpiry() time.Duration {
	return 30 * 24 * time.Hour
}

// GetProviderStatusPaths maps a provider name from the request path to the
// upstream status endpoint it relays to. The three calendar providers are
// the same call with a different suffix.
func (Upstream) GetProviderStatusPaths() map[string]string {
	return map[string]string{
		"calendly":        "/calendly/status-unified",
		"google-calendar": "/google-calendar/google-calendar-status",
		"outlook":         "/outlook/status-unified",
	}
}
