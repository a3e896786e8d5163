package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/centralhq/shopify-relay/internal/apperrors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// shopFromRequest resolves the tenant identity: the explicit query
// parameter wins over the header the embedded frontend sets.
func shopFromRequest(r *http.Request) string {
	if shop := r.URL.Query().Get("shop"); shop != "" {
		return shop
	}
	if shop := r.URL.Query().Get("shop_domain"); shop != "" {
		return shop
	}
	return r.Header.Get("X-Shop-Domain")
}

// workspaceFromRequest resolves the workspace scope the same way; when the
// request carries none, the stored selection for the shop is used.
func (s *Server) workspaceFromRequest(ctx context.Context, r *http.Request, shop string) string {
	if workspaceID := r.URL.Query().Get("workspace_id"); workspaceID != "" {
		return workspaceID
	}
	if workspaceID := r.Header.Get("X-Workspace-Id"); workspaceID != "" {
		return workspaceID
	}
	if tenant, err := s.repos.Tenants.Get(ctx, shop); err == nil {
		return tenant.WorkspaceID
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeProxyError maps the error taxonomy onto HTTP statuses: validation
// 400, delegation state 401, everything upstream/unknown a sanitized 500.
func writeProxyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrMissingTenant):
		writeErrorJSON(w, http.StatusBadRequest, "Missing shop")
	case errors.Is(err, apperrors.ErrMissingParameters):
		writeErrorJSON(w, http.StatusBadRequest, "Missing required parameters")
	case errors.Is(err, apperrors.ErrInvalidState):
		writeErrorJSON(w, http.StatusBadRequest, "Invalid state")
	case errors.Is(err, apperrors.ErrUnlinkedTenant):
		writeErrorJSON(w, http.StatusUnauthorized, "No Central user linked")
	case errors.Is(err, apperrors.ErrNoToken):
		writeErrorJSON(w, http.StatusUnauthorized, "No Central token found")
	case errors.Is(err, apperrors.ErrTokenUnavailable):
		writeErrorJSON(w, http.StatusUnauthorized, "Central access token unavailable")
	default:
		log.Error().Err(err).Msg("delegated request failed")
		writeErrorJSON(w, http.StatusInternalServerError, "Upstream request failed")
	}
}

// relay writes the upstream response through unchanged.
func relay(w http.ResponseWriter, statusCode int, contentType string, body []byte) {
	if contentType == "" {
		contentType = contentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
