// Package apikey authenticates bearer tokens against a static key set.
// Keys are hashed at construction time so plaintext never sits in
// process memory longer than startup.
package apikey

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/figaro-dev/figaro/pkg/auth"
)

// RawKeyEntry is the configuration format: a plaintext key and the
// identity it grants.
type RawKeyEntry struct {
	Key      string
	Identity auth.Identity
}

// Authenticator matches bearer tokens by SHA-256 digest.
type Authenticator struct {
	identities map[[sha256.Size]byte]auth.Identity
}

// New creates an authenticator from raw key entries. Later entries win
// on duplicate keys.
func New(entries []RawKeyEntry) *Authenticator {
	a := &Authenticator{
		identities: make(map[[sha256.Size]byte]auth.Identity, len(entries)),
	}
	for _, e := range entries {
		a.identities[sha256.Sum256([]byte(e.Key))] = e.Identity
	}
	return a
}

// Authenticate votes on the request's Authorization header: Abstain when
// no bearer token is present (another authenticator may handle it), No
// when a token is present but unknown, Yes with the granted identity on
// a match.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return auth.Result{Decision: auth.Abstain}
	}
	if token == "" {
		return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	if identity, found := a.identities[sha256.Sum256([]byte(token))]; found {
		// Copy so callers cannot mutate the stored identity.
		id := identity
		return auth.Result{Decision: auth.Yes, Identity: &id}
	}
	return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
}
