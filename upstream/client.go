// Package upstream is the server-to-server client for the Central token
// endpoint. Both grant types are JSON POSTs with the client credentials in
// the body.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/internal/config"
)

// TokenSet is the upstream token endpoint response. UserID identifies the
// Central account that authorized the app, so the relay can link the shop
// to it. RefreshExpiresIn is optional; callers fall back to a configured
// default when it is absent.
type TokenSet struct {
	UserID           string `json:"user_id"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_token_expires_in"`
}

type Client struct {
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

func NewClient(cfg config.UpstreamConfig) (*Client, error) {
	if cfg.GetTokenURL() == "" {
		return nil, errors.New("[upstream NewClient] token URL is required")
	}
	if cfg.GetClientID() == "" || cfg.GetClientSecret() == "" {
		return nil, errors.New("[upstream NewClient] client credentials are required")
	}

	return &Client{
		tokenURL:     cfg.GetTokenURL(),
		clientID:     cfg.GetClientID(),
		clientSecret: cfg.GetClientSecret(),
		redirectURI:  cfg.GetRedirectURI(),
		httpClient:   &http.Client{Timeout: cfg.GetRequestTimeout()},
	}, nil
}

// Exchange swaps an authorization code for a token set. The shop domain
// rides along so the upstream can link its own account to this tenant.
func (c *Client) Exchange(ctx context.Context, code, shopDomain string) (*TokenSet, error) {
	body := map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  c.redirectURI,
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"shop_domain":   shopDomain,
	}

	set, err := c.post(ctx, body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamExchange, "%s", err.Error())
	}
	return set, nil
}

// Refresh swaps a refresh token for a new token set.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	body := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	}
	return c.post(ctx, body)
}

// ClientID returns the OAuth client id token records are scoped by.
func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) post(ctx context.Context, body map[string]string) (*TokenSet, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The raw error body stays in the server log; callers surface a
		// generic message.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Warn().
			Int("status", resp.StatusCode).
			Str("grant_type", body["grant_type"]).
			Str("detail", string(detail)).
			Msg("upstream token endpoint rejected request")
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var set TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if set.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	return &set, nil
}

// ExpiryTimes converts the relative lifetimes in a token set to absolute
// timestamps against now, applying defaultRefreshExpiry when the upstream
// omits a refresh lifetime.
func (ts *TokenSet) ExpiryTimes(now time.Time, defaultRefreshExpiry time.Duration) (access, refresh time.Time) {
	access = now.Add(time.Duration(ts.ExpiresIn) * time.Second)
	if ts.RefreshExpiresIn > 0 {
		refresh = now.Add(time.Duration(ts.RefreshExpiresIn) * time.Second)
	} else if ts.RefreshToken != "" {
		refresh = now.Add(defaultRefreshExpiry)
	}
	return access, refresh
}
