package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/centralhq/shopify-relay/token"
)

// OAuthStartHandler begins the delegation handoff: it signs the shop
// domain into a state token and sends the merchant's browser to the
// upstream authorization page, out of the embedded iframe.
func (s *Server) OAuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := shopFromRequest(r)
		if shop == "" {
			log.Warn().Msg("oauth start without shop domain")
			writeErrorJSON(w, http.StatusBadRequest, "Missing shop")
			return
		}

		state, err := s.codec.Pack(shop)
		if err != nil {
			log.Error().Err(err).Str("shop", shop).Msg("failed to pack oauth state")
			writeErrorJSON(w, http.StatusInternalServerError, "Failed to start authorization")
			return
		}

		http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the handoff: verifies the state, marks
// its nonce consumed, exchanges the code, links the shop to the upstream
// account, persists the token set, and re-enters the app through its own
// auth entry point so the host platform re-establishes the session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			writeErrorJSON(w, http.StatusBadRequest, "Missing code or state parameter")
			return
		}

		shop, nonce, err := s.codec.Unpack(state)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "Invalid state")
			return
		}

		// A state is good for one callback; a replayed redirect fails here.
		if err := s.repos.Nonces.Consume(r.Context(), nonce); err != nil {
			log.Warn().Str("shop", shop).Msg("oauth state replayed")
			writeErrorJSON(w, http.StatusBadRequest, "Invalid state")
			return
		}

		set, err := s.upstream.Exchange(r.Context(), code, shop)
		if err != nil {
			// This leg cannot retry itself; the merchant has to restart.
			log.Error().Err(err).Str("shop", shop).Msg("authorization code exchange failed")
			writeErrorJSON(w, http.StatusInternalServerError, "Central authorization failed")
			return
		}

		if err := s.repos.Tenants.Link(r.Context(), shop, set.UserID); err != nil {
			log.Error().Err(err).Str("shop", shop).Msg("failed to link upstream account")
			writeErrorJSON(w, http.StatusInternalServerError, "Central authorization failed")
			return
		}

		now := time.Now().UTC()
		record := token.Record{
			UserID:       set.UserID,
			ClientID:     s.config.GetClientID(),
			AccessToken:  set.AccessToken,
			RefreshToken: set.RefreshToken,
			IssuedAt:     now,
		}
		record.AccessTokenExpiresAt, record.RefreshTokenExpiresAt = set.ExpiryTimes(now, s.config.GetDefaultRefreshTokenExpiry())

		if err := s.repos.Tokens.Upsert(r.Context(), &record); err != nil {
			log.Error().Err(err).Str("shop", shop).Msg("failed to persist token record")
			writeErrorJSON(w, http.StatusInternalServerError, "Central authorization failed")
			return
		}

		// Redirect through the app's own auth entry so the host platform
		// rebuilds a valid embedded session for this shop.
		http.Redirect(w, r, s.config.GetAppAuthPath()+"?shop="+url.QueryEscape(shop), http.StatusFound)
	}
}
