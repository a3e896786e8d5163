package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/tenants"
)

// GetSettingsHandler reports the shop's connection state: whether an
// upstream account is linked and which workspace is selected. The embedded
// frontend polls this after the OAuth handoff.
func (s *Server) GetSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := shopFromRequest(r)
		if shop == "" {
			writeErrorJSON(w, http.StatusBadRequest, "Missing shop")
			return
		}

		tenant, err := s.repos.Tenants.Get(r.Context(), shop)
		if errors.Is(err, apperrors.ErrNotFound) {
			tenant = &tenants.Tenant{ShopDomain: shop}
		} else if err != nil {
			log.Error().Err(err).Str("shop", shop).Msg("failed to load tenant settings")
			writeErrorJSON(w, http.StatusInternalServerError, "Failed to load settings")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"shop_domain":  tenant.ShopDomain,
			"linked":       tenant.UpstreamUserID != "",
			"workspace_id": tenant.WorkspaceID,
		})
	}
}

// SelectWorkspaceHandler persists the workspace the merchant picked in the
// setup wizard, so later delegated calls can fall back to it.
func (s *Server) SelectWorkspaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := shopFromRequest(r)
		if shop == "" {
			writeErrorJSON(w, http.StatusBadRequest, "Missing shop")
			return
		}

		var body struct {
			WorkspaceID string `json:"workspace_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WorkspaceID == "" {
			writeErrorJSON(w, http.StatusBadRequest, "Missing workspace_id")
			return
		}

		err := s.repos.Tenants.SelectWorkspace(r.Context(), shop, body.WorkspaceID)
		if errors.Is(err, apperrors.ErrNotFound) {
			writeErrorJSON(w, http.StatusUnauthorized, "No Central user linked")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("shop", shop).Msg("failed to persist workspace selection")
			writeErrorJSON(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"workspace_id": body.WorkspaceID})
	}
}
