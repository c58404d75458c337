// Package jwt provides an authenticator for HS256-signed bearer tokens.
//
// Tokens are verified against a shared secret with optional issuer and
// audience checks. The subject is read from a configurable claim.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/strom/pkg/auth"
	"github.com/rhuss/strom/pkg/debug"
)

// Method is the Identity.Method of callers accepted by this authenticator.
const Method = "jwt"

// Config holds the JWT authenticator configuration.
type Config struct {
	// Secret is the HMAC key (required).
	Secret []byte

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Audience is the expected aud claim. If empty, audience is not validated.
	Audience string

	// UserClaim is the claim used as the identity subject. Default: "sub".
	UserClaim string

	// Leeway tolerates clock skew on exp/nbf/iat. Default: 30s.
	Leeway time.Duration
}

func (c *Config) applyDefaults() {
	if c.UserClaim == "" {
		c.UserClaim = "sub"
	}
	if c.Leeway == 0 {
		c.Leeway = 30 * time.Second
	}
}

// Authenticator validates HS256 bearer tokens.
type Authenticator struct {
	config Config
	parser *jwtlib.Parser
}

// New creates a JWT authenticator. It fails when no secret is configured.
func New(cfg Config) (*Authenticator, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret is required")
	}
	cfg.applyDefaults()

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithLeeway(cfg.Leeway),
		jwtlib.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}

	return &Authenticator{config: cfg, parser: jwtlib.NewParser(opts...)}, nil
}

// Authenticate extracts a bearer token from the Authorization header,
// validates it, and returns an identity on success.
//
// Decision outcomes:
//   - Abstain: no Authorization header or not a Bearer scheme
//   - No: bearer token present but invalid (expired, wrong issuer, bad signature, etc.)
//   - Yes: valid token with a subject
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return auth.Result{Decision: auth.Abstain}
	}
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return auth.Result{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: empty bearer token", auth.ErrInvalidCredential),
		}
	}

	claims := jwtlib.MapClaims{}
	_, err := a.parser.ParseWithClaims(tokenStr, claims, func(*jwtlib.Token) (any, error) {
		return a.config.Secret, nil
	})
	if err != nil {
		debug.Log("auth", "JWT validation failed", "error", err)
		return auth.Result{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: %v", auth.ErrInvalidCredential, err),
		}
	}

	subject := claimString(claims, a.config.UserClaim)
	if subject == "" {
		return auth.Result{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: token missing %q claim", auth.ErrInvalidCredential, a.config.UserClaim),
		}
	}

	return auth.Result{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: subject, Method: Method},
	}
}

// claimString extracts a string value from JWT claims.
// Returns empty string if the claim is missing or not a string.
func claimString(claims jwtlib.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
