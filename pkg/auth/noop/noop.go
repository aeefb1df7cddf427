// Package noop accepts every request with the anonymous identity. It is
// the sole chain member when auth mode "none" is configured.
package noop

import (
	"context"
	"net/http"

	"github.com/figaro-dev/figaro/pkg/auth"
)

// Authenticator always votes Yes.
type Authenticator struct{}

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.Result {
	return auth.Result{Decision: auth.Yes, Identity: auth.Anonymous()}
}
