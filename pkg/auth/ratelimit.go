package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether an identity may run another request.
// Chart generation is expensive (a model call plus a sandbox run per
// request), so limits are enforced per subject rather than per client
// address.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// TierConfig holds rate limit settings for a service tier.
type TierConfig struct {
	RequestsPerMinute int
}

// InProcessLimiter tracks fixed one-minute windows per subject in
// memory. Suitable for single-instance deployments; a multi-replica
// gateway needs a shared backend instead.
type InProcessLimiter struct {
	tiers      map[string]TierConfig
	defaultRPM int

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	hits      int
	startedAt time.Time
}

// sweepInterval bounds how often expired windows are pruned.
const sweepInterval = 5 * time.Minute

// NewInProcessLimiter creates a rate limiter with per-tier configuration.
// A defaultRPM of 0 disables limiting for tiers without explicit config.
func NewInProcessLimiter(tiers map[string]TierConfig, defaultRPM int) *InProcessLimiter {
	return &InProcessLimiter{
		tiers:      tiers,
		defaultRPM: defaultRPM,
		windows:    make(map[string]*window),
		lastSweep:  time.Now(),
	}
}

// Allow checks if the request fits the identity's current window.
// Fails open: any internal error admits the request.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	tier := identity.ServiceTier
	if tier == "" {
		tier = "default"
	}

	rpm := l.defaultRPM
	if tc, ok := l.tiers[tier]; ok {
		rpm = tc.RequestsPerMinute
	}
	if rpm <= 0 {
		return nil
	}

	key := identity.Subject + ":" + tier

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.maybeSweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.startedAt) >= time.Minute {
		l.windows[key] = &window{hits: 1, startedAt: now}
		return nil
	}

	w.hits++
	if w.hits > rpm {
		return ErrTooManyRequests
	}
	return nil
}

// maybeSweep drops windows that expired more than a minute ago so the
// map does not grow with the set of subjects ever seen. Caller holds
// the lock.
func (l *InProcessLimiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.Sub(w.startedAt) >= 2*time.Minute {
			delete(l.windows, key)
		}
	}
}
