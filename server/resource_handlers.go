package server

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/centralhq/shopify-relay/proxy"
)

// maxMultipartMemory is only the in-memory threshold for inbound parsing;
// larger file parts spill to disk, so upload size is not capped here.
const maxMultipartMemory = 32 << 20

// ListResourcesHandler relays the chat-agent listing for a linked shop.
func (s *Server) ListResourcesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, workspaceID, ok := s.delegationScope(w, r)
		if !ok {
			return
		}

		resp, err := s.forwarder.Forward(r.Context(), shop, &proxy.Request{
			Method:      http.MethodGet,
			URL:         s.config.GetAPIBaseURL() + upstreamResourceListPath,
			WorkspaceID: workspaceID,
		})
		if err != nil {
			writeProxyError(w, err)
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			log.Warn().
				Int("status", resp.StatusCode).
				Str("shop", shop).
				Msg("upstream rejected resource listing")
			writeErrorJSON(w, http.StatusInternalServerError, "Failed to fetch resources")
			return
		}

		// The upstream returns a bare array; anything else becomes an
		// empty listing rather than an error.
		var items []json.RawMessage
		if err := json.Unmarshal(resp.Body, &items); err != nil {
			items = []json.RawMessage{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// GetResourceHandler relays a single chat-agent fetch verbatim.
func (s *Server) GetResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, workspaceID, ok := s.delegationScope(w, r)
		if !ok {
			return
		}

		resp, err := s.forwarder.Forward(r.Context(), shop, &proxy.Request{
			Method:      http.MethodGet,
			URL:         s.config.GetAPIBaseURL() + fmt.Sprintf(upstreamResourceGetPath, r.PathValue("id")),
			WorkspaceID: workspaceID,
		})
		if err != nil {
			writeProxyError(w, err)
			return
		}
		relay(w, resp.StatusCode, resp.ContentType, resp.Body)
	}
}

// CreateResourceHandler relays a multipart create (JSON "data" field plus
// optional file parts) and returns the upstream status and body unchanged.
func (s *Server) CreateResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forwardMultipart(w, r, http.MethodPost, s.config.GetAPIBaseURL()+upstreamResourceCreatePath)
	}
}

// UpdateResourceHandler relays a multipart update for one chat agent.
func (s *Server) UpdateResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forwardMultipart(w, r, http.MethodPut, s.config.GetAPIBaseURL()+fmt.Sprintf(upstreamResourceUpdatePath, r.PathValue("id")))
	}
}

func (s *Server) forwardMultipart(w http.ResponseWriter, r *http.Request, method, url string) {
	shop, workspaceID, ok := s.delegationScope(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	files, closeFiles, err := openFileParts(r.MultipartForm)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer closeFiles()

	resp, err := s.forwarder.Forward(r.Context(), shop, &proxy.Request{
		Method:      method,
		URL:         url,
		WorkspaceID: workspaceID,
		Fields:      r.MultipartForm.Value,
		Files:       files,
		Timeout:     s.config.GetUploadTimeout(),
	})
	if err != nil {
		writeProxyError(w, err)
		return
	}
	relay(w, resp.StatusCode, resp.ContentType, resp.Body)
}

// delegationScope validates the tenant and workspace identifiers shared by
// every delegated route, writing the 400 itself when either is missing.
func (s *Server) delegationScope(w http.ResponseWriter, r *http.Request) (shop, workspaceID string, ok bool) {
	shop = shopFromRequest(r)
	if shop == "" {
		writeErrorJSON(w, http.StatusBadRequest, "Missing shop")
		return "", "", false
	}

	workspaceID = s.workspaceFromRequest(r.Context(), r, shop)
	if workspaceID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "Missing workspace_id")
		return "", "", false
	}
	return shop, workspaceID, true
}

func openFileParts(form *multipart.Form) ([]proxy.FilePart, func(), error) {
	var files []proxy.FilePart
	var opened []multipart.File

	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for field, headers := range form.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			opened = append(opened, f)
			files = append(files, proxy.FilePart{
				Field:       field,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Content:     f,
			})
		}
	}
	return files, closeAll, nil
}
