package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/server"
)

// Credential rejection messages.
const (
	msgCredentialHeaderRequired = "Authorization header is required"
	msgCredentialRequired       = "Credential is required"
)

type credentialContextKey struct{}

// ExtractCredential returns the opaque token carried by a credential header.
// The value is trimmed of surrounding whitespace and otherwise forwarded
// unchanged; no scheme prefix is stripped.
func ExtractCredential(value string, present bool) (string, error) {
	if !present {
		return "", unauthorized(msgCredentialHeaderRequired)
	}
	token := strings.TrimSpace(value)
	if token == "" {
		return "", unauthorized(msgCredentialRequired)
	}
	return token, nil
}

// CredentialFromContext returns the token stored by RequireCredential.
func CredentialFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialContextKey{}).(string)
	return token, ok
}

// RequireCredential rejects requests without a usable credential before next
// runs. The token is never logged.
//
// Usage:
//
//	handler := RequireCredential(srv, GetDocumentHandler(srv))
func RequireCredential(srv server.Server, next http.Handler) http.Handler {
	header := config.DefaultCredentialHeader
	if srv.Config != nil && srv.Config.Server != nil && srv.Config.Server.CredentialHeader != "" {
		header = srv.Config.Server.CredentialHeader
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values, present := r.Header[http.CanonicalHeaderKey(header)]
		var value string
		if present && len(values) > 0 {
			value = values[0]
		}

		token, err := ExtractCredential(value, present)
		if err != nil {
			srv.Logger.Warn("rejected request without credential",
				"reason", err.Error(),
				"path", r.URL.Path,
				"method", r.Method,
			)
			respondError(w, r, srv, err)
			return
		}

		ctx := context.WithValue(r.Context(), credentialContextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
