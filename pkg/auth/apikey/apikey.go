// Package apikey provides an authenticator that checks the X-API-Key
// header against a single configured secret using SHA-256 hashing and
// constant-time comparison.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/rhuss/strom/pkg/auth"
)

// Header carries the API key.
const Header = "X-API-Key"

// Method is the Identity.Method of callers accepted by this authenticator.
const Method = "api_key"

// Authenticator validates the X-API-Key header against one secret.
// It is read-only after construction and safe for concurrent use.
type Authenticator struct {
	hash    [32]byte
	subject string
}

// New creates an API key authenticator for secret. The secret is hashed
// immediately; the plaintext is not stored. An empty secret matches
// nothing.
func New(secret string) *Authenticator {
	sum := sha256.Sum256([]byte(secret))
	a := &Authenticator{hash: sum}
	if secret != "" {
		// The subject is a short fingerprint so logs never show the key.
		a.subject = "key-" + hex.EncodeToString(sum[:4])
	}
	return a
}

// Verify checks a credential. An empty credential is missing, any other
// mismatch is invalid.
func (a *Authenticator) Verify(credential string) error {
	if credential == "" {
		return auth.ErrMissingCredential
	}
	if a.subject == "" {
		return fmt.Errorf("%w: no API key configured", auth.ErrInvalidCredential)
	}
	sum := sha256.Sum256([]byte(credential))
	if subtle.ConstantTimeCompare(sum[:], a.hash[:]) != 1 {
		return auth.ErrInvalidCredential
	}
	return nil
}

// Authenticate reads the X-API-Key header and validates it.
// Returns Yes if valid, No if present but wrong, Abstain if absent or
// empty so that other authenticators may run.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	key := r.Header.Get(Header)
	if key == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	if err := a.Verify(key); err != nil {
		return auth.Result{Decision: auth.No, Err: err}
	}

	return auth.Result{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: a.subject, Method: Method},
	}
}
