package auth

import (
	"context"
	"net/http"
	"testing"
)

// vote is a stub authenticator returning a fixed Result.
type vote struct {
	result Result
}

func (v *vote) Authenticate(_ context.Context, _ *http.Request) Result {
	return v.result
}

func yes(subject string) Authenticator {
	return &vote{Result{Decision: Yes, Identity: &Identity{Subject: subject}}}
}

func no() Authenticator {
	return &vote{Result{Decision: No, Err: ErrUnauthenticated}}
}

func abstain() Authenticator {
	return &vote{Result{Decision: Abstain}}
}

func TestChainVoting(t *testing.T) {
	tests := []struct {
		name           string
		authenticators []Authenticator
		defaultYes     bool
		wantDecision   Decision
		wantSubject    string
	}{
		{
			name:           "first yes wins",
			authenticators: []Authenticator{yes("alice"), no()},
			wantDecision:   Yes,
			wantSubject:    "alice",
		},
		{
			name:           "first no stops the chain",
			authenticators: []Authenticator{no(), yes("bob")},
			wantDecision:   No,
		},
		{
			name:           "abstain falls through to yes",
			authenticators: []Authenticator{abstain(), yes("jwt-user")},
			wantDecision:   Yes,
			wantSubject:    "jwt-user",
		},
		{
			name:           "all abstain rejects by default",
			authenticators: []Authenticator{abstain(), abstain()},
			wantDecision:   No,
		},
		{
			name:           "all abstain admits anonymously when open",
			authenticators: []Authenticator{abstain()},
			defaultYes:     true,
			wantDecision:   Yes,
			wantSubject:    "anonymous",
		},
		{
			name:         "empty chain rejects",
			wantDecision: No,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &Chain{Authenticators: tt.authenticators, DefaultDecision: No}
			if tt.defaultYes {
				chain.DefaultDecision = Yes
			}

			r, _ := http.NewRequest("POST", "/v1/charts", nil)
			result := chain.Authenticate(context.Background(), r)

			if result.Decision != tt.wantDecision {
				t.Fatalf("Decision = %d, want %d", result.Decision, tt.wantDecision)
			}
			if tt.wantSubject != "" {
				if result.Identity == nil || result.Identity.Subject != tt.wantSubject {
					t.Errorf("Identity = %+v, want subject %q", result.Identity, tt.wantSubject)
				}
			}
			if tt.wantDecision == No && result.Err == nil {
				t.Error("rejection must carry an error")
			}
		})
	}
}

func TestAnonymousIdentity(t *testing.T) {
	id := Anonymous()
	if id.Subject != "anonymous" || id.ServiceTier != "default" {
		t.Errorf("Anonymous() = %+v", id)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if IdentityFromContext(ctx) != nil {
		t.Error("expected nil identity from empty context")
	}

	ctx = SetIdentity(ctx, &Identity{Subject: "alice"})
	got := IdentityFromContext(ctx)
	if got == nil || got.Subject != "alice" {
		t.Errorf("got %v, want alice", got)
	}
}
