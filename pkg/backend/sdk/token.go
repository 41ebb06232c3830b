package sdk

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultScope is the scope assigned to every token in passthrough mode.
const DefaultScope = "default"

// VerifierConfig configures token verification.
type VerifierConfig struct {
	// Secret is the HMAC key tokens are signed with. When empty the verifier
	// runs in passthrough mode and accepts any non-empty token.
	Secret string

	// ScopeClaim names the claim that partitions data between tenants. The
	// "sub" claim is used when it is absent. Default: "org_id".
	ScopeClaim string

	// Issuer, when set, must match the token's "iss" claim.
	Issuer string
}

// TokenVerifier maps a credential to the scope its data lives under.
type TokenVerifier struct {
	secret     []byte
	scopeClaim string
	issuer     string
}

// NewTokenVerifier returns a verifier for cfg.
func NewTokenVerifier(cfg VerifierConfig) *TokenVerifier {
	claim := cfg.ScopeClaim
	if claim == "" {
		claim = "org_id"
	}
	v := &TokenVerifier{
		scopeClaim: claim,
		issuer:     cfg.Issuer,
	}
	if cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
	}
	return v
}

// Passthrough reports whether tokens are accepted without verification.
func (v *TokenVerifier) Passthrough() bool {
	return len(v.secret) == 0
}

// Scope verifies token and returns its scope.
func (v *TokenVerifier) Scope(token string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	if v.Passthrough() {
		return DefaultScope, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if scope, ok := claims[v.scopeClaim].(string); ok && scope != "" {
		return scope, nil
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("invalid subject claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("token has neither %q nor \"sub\" claim", v.scopeClaim)
	}
	return sub, nil
}
