package server

import (
	"net/http"

	"github.com/centralhq/shopify-relay/proxy"
)

// IntegrationStatusHandler relays the connection-status check for one of
// the configured calendar providers. The providers differ only in the
// upstream path suffix, so a single handler covers all of them.
func (s *Server) IntegrationStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")
		statusPath, configured := s.config.GetProviderStatusPaths()[provider]
		if !configured {
			writeErrorJSON(w, http.StatusNotFound, "Unknown provider")
			return
		}

		shop, workspaceID, ok := s.delegationScope(w, r)
		if !ok {
			return
		}

		resp, err := s.forwarder.Forward(r.Context(), shop, &proxy.Request{
			Method:      http.MethodGet,
			URL:         s.config.GetIntegrationsBaseURL() + statusPath,
			WorkspaceID: workspaceID,
		})
		if err != nil {
			writeProxyError(w, err)
			return
		}
		relay(w, resp.StatusCode, resp.ContentType, resp.Body)
	}
}
