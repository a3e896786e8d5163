package proxy_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/proxy"
	"github.com/centralhq/shopify-relay/tenants"
	"github.com/centralhq/shopify-relay/token"
)

const testClientID = "relay-client"

type staticTokenSource struct {
	accessToken string
	err         error
	calls       int
}

func (s *staticTokenSource) EnsureValid(_ context.Context, _ *token.Record) (string, error) {
	s.calls++
	return s.accessToken, s.err
}

func linkedForwarder(t *testing.T, source proxy.TokenSource) *proxy.Forwarder {
	t.Helper()
	ctx := context.Background()

	tenantRepo := tenants.NewInMemoryRepo()
	require.NoError(t, tenantRepo.Link(ctx, "shop-a", "central-user-1"))

	tokenRepo := token.NewInMemoryRepo()
	require.NoError(t, tokenRepo.Upsert(ctx, &token.Record{
		UserID:               "central-user-1",
		ClientID:             testClientID,
		AccessToken:          "stored-access",
		AccessTokenExpiresAt: time.Now().Add(time.Hour),
	}))

	forwarder, err := proxy.NewForwarder(tenantRepo, tokenRepo, source, testClientID, 15*time.Second)
	require.NoError(t, err)
	return forwarder
}

func TestNewForwarder(t *testing.T) {
	tenantRepo := tenants.NewInMemoryRepo()
	tokenRepo := token.NewInMemoryRepo()
	source := &staticTokenSource{accessToken: "tok"}

	_, err := proxy.NewForwarder(nil, tokenRepo, source, testClientID, time.Second)
	require.Error(t, err)
	_, err = proxy.NewForwarder(tenantRepo, nil, source, testClientID, time.Second)
	require.Error(t, err)
	_, err = proxy.NewForwarder(tenantRepo, tokenRepo, nil, testClientID, time.Second)
	require.Error(t, err)
	_, err = proxy.NewForwarder(tenantRepo, tokenRepo, source, "", time.Second)
	require.Error(t, err)
}

func TestForward_DelegationChecks(t *testing.T) {
	ctx := context.Background()

	var upstreamCalls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
	}))
	defer upstream.Close()

	req := &proxy.Request{Method: http.MethodGet, URL: upstream.URL}

	t.Run("missing shop", func(t *testing.T) {
		forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

		_, err := forwarder.Forward(ctx, "", req)
		require.ErrorIs(t, err, apperrors.ErrMissingTenant)
	})

	t.Run("unlinked shop", func(t *testing.T) {
		forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

		_, err := forwarder.Forward(ctx, "shop-unknown", req)
		require.ErrorIs(t, err, apperrors.ErrUnlinkedTenant)
	})

	t.Run("linked shop without tokens", func(t *testing.T) {
		tenantRepo := tenants.NewInMemoryRepo()
		require.NoError(t, tenantRepo.Link(ctx, "shop-a", "central-user-1"))
		forwarder, err := proxy.NewForwarder(tenantRepo, token.NewInMemoryRepo(), &staticTokenSource{accessToken: "tok"}, testClientID, time.Second)
		require.NoError(t, err)

		_, err = forwarder.Forward(ctx, "shop-a", req)
		require.ErrorIs(t, err, apperrors.ErrNoToken)
	})

	t.Run("token unavailable", func(t *testing.T) {
		forwarder := linkedForwarder(t, &staticTokenSource{err: apperrors.ErrTokenUnavailable})

		_, err := forwarder.Forward(ctx, "shop-a", req)
		require.ErrorIs(t, err, apperrors.ErrTokenUnavailable)
	})

	require.Zero(t, upstreamCalls, "no outbound call may happen before delegation checks pass")
}

func TestForward_InjectsAuthHeaders(t *testing.T) {
	ctx := context.Background()

	var got *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer upstream.Close()

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "valid-access"})

	resp, err := forwarder.Forward(ctx, "shop-a", &proxy.Request{
		Method:      http.MethodGet,
		URL:         upstream.URL + "/api/chatbot/all/oAuth",
		WorkspaceID: "ws-1",
	})
	require.NoError(t, err)

	require.Equal(t, "Bearer valid-access", got.Header.Get("Authorization"))
	require.Equal(t, "ws-1", got.Header.Get("X-Workspace-Id"))

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "application/json", resp.ContentType)
	require.JSONEq(t, `{"id":"42"}`, string(resp.Body))
}

func TestForward_OmitsWorkspaceHeaderWhenUnset(t *testing.T) {
	var got *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
	}))
	defer upstream.Close()

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

	_, err := forwarder.Forward(context.Background(), "shop-a", &proxy.Request{Method: http.MethodGet, URL: upstream.URL})
	require.NoError(t, err)

	_, present := got.Header["X-Workspace-Id"]
	require.False(t, present)
}

func TestForward_JSONBody(t *testing.T) {
	var gotBody string
	var gotContentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer upstream.Close()

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

	_, err := forwarder.Forward(context.Background(), "shop-a", &proxy.Request{
		Method:   http.MethodPost,
		URL:      upstream.URL,
		JSONBody: strings.NewReader(`{"name":"bot"}`),
	})
	require.NoError(t, err)

	require.Equal(t, "application/json", gotContentType)
	require.JSONEq(t, `{"name":"bot"}`, gotBody)
}

func TestForward_RebuildsMultipart(t *testing.T) {
	type receivedFile struct {
		filename    string
		contentType string
		content     string
	}
	var gotFields map[string][]string
	var gotFile receivedFile
	var gotBoundary string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType := r.Header.Get("Content-Type")
		gotBoundary = mediaType

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = r.MultipartForm.Value

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFile = receivedFile{
			filename:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			content:     string(content),
		}
	}))
	defer upstream.Close()

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

	_, err := forwarder.Forward(context.Background(), "shop-a", &proxy.Request{
		Method:      http.MethodPost,
		URL:         upstream.URL,
		WorkspaceID: "ws-1",
		Fields:      map[string][]string{"data": {`{"name":"bot"}`}, "tags": {"a", "b"}},
		Files: []proxy.FilePart{{
			Field:       "avatar",
			Filename:    "avatar.png",
			ContentType: "image/png",
			Content:     strings.NewReader("png-bytes"),
		}},
		Timeout: 60 * time.Second,
	})
	require.NoError(t, err)

	require.Contains(t, gotBoundary, "multipart/form-data")
	require.Equal(t, []string{`{"name":"bot"}`}, gotFields["data"])
	require.Equal(t, []string{"a", "b"}, gotFields["tags"])
	require.Equal(t, "avatar.png", gotFile.filename)
	require.Equal(t, "image/png", gotFile.contentType)
	require.Equal(t, "png-bytes", gotFile.content)
}

func TestForward_FilePartWithoutContentType(t *testing.T) {
	var gotContentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("attachment")
		require.NoError(t, err)
		gotContentType = header.Header.Get("Content-Type")
	}))
	defer upstream.Close()

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

	_, err := forwarder.Forward(context.Background(), "shop-a", &proxy.Request{
		Method: http.MethodPost,
		URL:    upstream.URL,
		Files: []proxy.FilePart{{
			Field:    "attachment",
			Filename: "notes.txt",
			Content:  strings.NewReader("hello"),
		}},
	})
	require.NoError(t, err)

	require.Equal(t, "application/octet-stream", gotContentType)
}

func TestForward_RelaysUpstreamErrorsVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"name taken"}`))
	}))
	defer upstream.Close()

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

	resp, err := forwarder.Forward(context.Background(), "shop-a", &proxy.Request{Method: http.MethodGet, URL: upstream.URL})
	require.NoError(t, err, "non-2xx upstream statuses are data, not errors")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.JSONEq(t, `{"error":"name taken"}`, string(resp.Body))
}

func TestForward_NetworkFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	forwarder := linkedForwarder(t, &staticTokenSource{accessToken: "tok"})

	_, err := forwarder.Forward(context.Background(), "shop-a", &proxy.Request{Method: http.MethodGet, URL: upstream.URL})
	require.ErrorIs(t, err, apperrors.ErrUpstream)
}
