package auth

import (
	"context"
	"errors"
	"net/http"
)

// Decision is an authenticator's vote on a request.
type Decision int

const (
	// Yes accepts the credentials. The chain stops and the identity is used.
	Yes Decision = iota

	// No rejects the request: credentials of this authenticator's type were
	// presented but did not verify. The chain stops.
	No

	// Abstain passes the request along: the credentials are not of this
	// authenticator's type.
	Abstain
)

// Result carries one authenticator's vote.
type Result struct {
	Decision Decision
	Identity *Identity // set only on Yes
	Err      error     // set only on No
}

// Identity is the authenticated caller.
type Identity struct {
	// Subject uniquely names the caller. Never empty for a Yes vote.
	Subject string

	// ServiceTier selects the rate limit bucket.
	ServiceTier string

	// Scopes lists granted authorization scopes.
	Scopes []string

	// Metadata carries authenticator-specific claims.
	Metadata map[string]string
}

// Authenticator examines request credentials and votes.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) Result
}

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// Anonymous is the identity assigned when an open deployment admits a
// request without credentials.
func Anonymous() *Identity {
	return &Identity{Subject: "anonymous", ServiceTier: "default"}
}

// Chain runs authenticators left to right and stops at the first
// non-abstaining vote.
type Chain struct {
	Authenticators []Authenticator

	// DefaultDecision applies when every authenticator abstains: Yes admits
	// the request anonymously (open deployments), No rejects it.
	DefaultDecision Decision
}

// Authenticate runs the chain.
func (c *Chain) Authenticate(ctx context.Context, r *http.Request) Result {
	for _, authn := range c.Authenticators {
		if result := authn.Authenticate(ctx, r); result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Yes {
		return Result{Decision: Yes, Identity: Anonymous()}
	}
	return Result{Decision: No, Err: ErrUnauthenticated}
}
