package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/backend/mock"
)

// panickingClient panics on every document read.
type panickingClient struct {
	*mock.Client
}

func (c panickingClient) GetDocument(ctx context.Context, token, collection, docID string) (backend.Document, error) {
	panic("store exploded")
}

func TestRecover(t *testing.T) {
	srv := serverWithClient(panickingClient{Client: mock.NewClient()})

	w := postJSON(t, srv, RouteGet, map[string]any{
		"collection": "Chats",
		"doc_id":     "a",
	}, withToken(testToken))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, genericInternalDetail, body["detail"])
	assert.NotContains(t, w.Body.String(), "exploded")
}

func TestRecover_DebugDetail(t *testing.T) {
	srv := serverWithClient(panickingClient{Client: mock.NewClient()})
	srv.Config.LogLevel = "DEBUG"

	w := postJSON(t, srv, RouteGet, map[string]any{
		"collection": "Chats",
		"doc_id":     "a",
	}, withToken(testToken))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "store exploded")
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestHealth(t *testing.T) {
	srv, client := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{
		"status":  "healthy",
		"service": config.DefaultServiceName,
	}, decodeBody(t, w))
	assert.Zero(t, client.TotalCalls())
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, config.DefaultAPIPrefix+RouteGet, nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCustomPrefix(t *testing.T) {
	srv, client := newTestServer(t)
	srv.Config.Server.APIPrefix = "/v1"
	client.Documents["Chats/a"] = backend.Document{"k": "v"}

	req := httptest.NewRequest(http.MethodPost, "/v1"+RouteGet, strings.NewReader(`{"collection":"Chats","doc_id":"a"}`))
	req.Header.Set("Authorization", testToken)
	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
