package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/server"
	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/backend/mock"
)

const testToken = "test-token"

// newTestServer returns a server backed by a fresh mock client.
func newTestServer(t *testing.T) (server.Server, *mock.Client) {
	t.Helper()
	client := mock.NewClient()
	return serverWithClient(client), client
}

func serverWithClient(client backend.Client) server.Server {
	return server.Server{
		Backend: backend.Static(client),
		Config:  config.Default(),
		Logger:  hclog.NewNullLogger(),
	}
}

// postJSON sends body to path through the full router.
func postJSON(t *testing.T, srv server.Server, path string, body any, token *string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(http.MethodPost, config.DefaultAPIPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", *token)
	}

	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, req)
	return w
}

func withToken(token string) *string {
	return &token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}
