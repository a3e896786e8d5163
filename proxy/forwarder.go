// Package proxy forwards tenant-scoped requests to the upstream API with a
// valid bearer token and workspace header attached. The tenant's browser
// never sees the token.
package proxy

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/tenants"
	"github.com/centralhq/shopify-relay/token"
)

// TokenSource yields a usable access token for a stored record.
type TokenSource interface {
	EnsureValid(ctx context.Context, record *token.Record) (string, error)
}

// FilePart is one named binary part of a multipart request. Field name,
// file name and content type are preserved through the rebuild.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Request describes one outbound call. Either JSONBody or Fields/Files may
// be set, not both; a request with neither has no body.
type Request struct {
	Method      string
	URL         string
	WorkspaceID string
	JSONBody    io.Reader
	Fields      map[string][]string
	Files       []FilePart
	Timeout     time.Duration
}

// Response is the upstream reply, relayed verbatim.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forwarder resolves the tenant's upstream identity and token, then makes
// the call on its behalf.
type Forwarder struct {
	tenants        tenants.Repo
	tokens         token.Repo
	source         TokenSource
	clientID       string
	defaultTimeout time.Duration
	httpClient     *http.Client
}

func NewForwarder(tenantRepo tenants.Repo, tokenRepo token.Repo, source TokenSource, clientID string, defaultTimeout time.Duration) (*Forwarder, error) {
	if tenantRepo == nil {
		return nil, errors.New("[NewForwarder] tenant repo is required")
	}
	if tokenRepo == nil {
		return nil, errors.New("[NewForwarder] token repo is required")
	}
	if source == nil {
		return nil, errors.New("[NewForwarder] token source is required")
	}
	if clientID == "" {
		return nil, errors.New("[NewForwarder] client id is required")
	}

	return &Forwarder{
		tenants:        tenantRepo,
		tokens:         tokenRepo,
		source:         source,
		clientID:       clientID,
		defaultTimeout: defaultTimeout,
		// Per-call deadlines come from the request context; a client-level
		// timeout would cap uploads at the small-call limit.
		httpClient: &http.Client{},
	}, nil
}

// Forward checks the tenant's delegation state and relays the request.
// Failures before the outbound call are typed: ErrMissingTenant,
// ErrUnlinkedTenant, ErrNoToken, ErrTokenUnavailable — in that order.
func (f *Forwarder) Forward(ctx context.Context, shopDomain string, req *Request) (*Response, error) {
	if shopDomain == "" {
		return nil, apperrors.ErrMissingTenant
	}

	userID, err := f.tenants.ResolveUpstreamUser(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	record, err := f.tokens.Get(ctx, userID, f.clientID)
	if err != nil {
		return nil, err
	}

	accessToken, err := f.source.EnsureValid(ctx, record)
	if err != nil {
		return nil, err
	}

	return f.send(ctx, shopDomain, accessToken, req)
}

func (f *Forwarder) send(ctx context.Context, shopDomain, accessToken string, req *Request) (*Response, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = f.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	contentType := ""
	switch {
	case len(req.Fields) > 0 || len(req.Files) > 0:
		// The inbound and outbound multipart encodings are independent;
		// parts are re-encoded under a fresh boundary and streamed, so
		// upload size is never buffer-limited here.
		pr, pw := io.Pipe()
		writer := multipart.NewWriter(pw)
		contentType = writer.FormDataContentType()
		go writeMultipart(pw, writer, req)
		body = pr
	case req.JSONBody != nil:
		body = req.JSONBody
		contentType = "application/json"
	}

	outbound, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstream, "build request")
	}
	if contentType != "" {
		outbound.Header.Set("Content-Type", contentType)
	}
	outbound.Header.Set("Authorization", "Bearer "+accessToken)
	if req.WorkspaceID != "" {
		outbound.Header.Set("X-Workspace-Id", req.WorkspaceID)
	}

	resp, err := f.httpClient.Do(outbound)
	if err != nil {
		// Network detail goes to the log; the tenant gets a generic error.
		log.Error().
			Err(err).
			Str("shop", shopDomain).
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("delegated call failed")
		return nil, apperrors.ErrUpstream
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().
			Err(err).
			Str("shop", shopDomain).
			Msg("failed to read upstream response")
		return nil, apperrors.ErrUpstream
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

func writeMultipart(pw *io.PipeWriter, writer *multipart.Writer, req *Request) {
	err := func() error {
		for field, values := range req.Fields {
			for _, value := range values {
				if err := writer.WriteField(field, value); err != nil {
					return err
				}
			}
		}
		for _, file := range req.Files {
			part, err := createFilePart(writer, file)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, file.Content); err != nil {
				return err
			}
		}
		return writer.Close()
	}()
	pw.CloseWithError(err)
}

func createFilePart(writer *multipart.Writer, file FilePart) (io.Writer, error) {
	if file.ContentType == "" {
		return writer.CreateFormFile(file.Field, file.Filename)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	header.Set("Content-Type", file.ContentType)
	return writer.CreatePart(header)
}
