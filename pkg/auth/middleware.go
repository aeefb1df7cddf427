package auth

import (
	"log/slog"
	"net/http"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/observability"
	"github.com/figaro-dev/figaro/pkg/transport"
)

// DefaultBypassEndpoints lists routes that skip authentication: health
// probes and the metrics scrape.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}

// Middleware turns a Chain and an optional RateLimiter into HTTP
// middleware. Rejections use the same error envelope the chart endpoints
// return, so clients parse one shape everywhere.
func Middleware(chain *Chain, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)
			if result.Decision != Yes || result.Identity == nil {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				transport.WriteErrorResponse(w,
					api.NewInvalidRequestError("", "authentication required"),
					http.StatusUnauthorized)
				return
			}

			if result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				transport.WriteErrorResponse(w,
					api.NewInternalError("internal authentication error"),
					http.StatusInternalServerError)
				return
			}

			if limiter != nil {
				if err := limiter.Allow(r.Context(), result.Identity); err != nil {
					slog.Warn("rate limit exceeded",
						"subject", result.Identity.Subject,
						"tier", result.Identity.ServiceTier,
					)
					observability.RateLimitRejectedTotal.WithLabelValues(result.Identity.ServiceTier).Inc()
					transport.WriteErrorResponse(w,
						api.NewInvalidRequestError("", "rate limit exceeded"),
						http.StatusTooManyRequests)
					return
				}
			}

			slog.Debug("authentication succeeded",
				"subject", result.Identity.Subject,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), result.Identity)))
		})
	}
}
