package auth

import (
	"context"
	"errors"
	"net/http"
)

// Decision represents the three possible outcomes of authentication.
type Decision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes Decision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator found no credential it can check.
	// The chain continues to the next authenticator.
	Abstain
)

func (d Decision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// Result carries the outcome of an authentication attempt.
type Result struct {
	Decision Decision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// Identity represents an authenticated caller.
type Identity struct {
	// Subject identifies the caller (required, non-empty).
	Subject string

	// Method names the authenticator that accepted the caller.
	Method string
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) Result
}

// Sentinel errors. ErrMissingCredential maps to 401, ErrInvalidCredential
// to 403. Authenticators wrap them with detail.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Anonymous is the identity used when the chain allows unauthenticated
// access.
var Anonymous = Identity{Subject: "anonymous", Method: "none"}

// Chain evaluates authenticators in order using three-outcome voting.
type Chain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// AllowAnonymous accepts requests when all authenticators abstain.
	// Only meant for local development.
	AllowAnonymous bool
}

// NewChain creates a chain that rejects requests without a credential.
func NewChain(authenticators ...Authenticator) *Chain {
	return &Chain{Authenticators: authenticators}
}

// Authenticate runs the chain. Stops on the first Yes or No.
// If all abstain, the credential is missing.
func (c *Chain) Authenticate(ctx context.Context, r *http.Request) Result {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	if c.AllowAnonymous {
		id := Anonymous
		return Result{Decision: Yes, Identity: &id}
	}

	return Result{
		Decision: No,
		Err:      ErrMissingCredential,
	}
}
