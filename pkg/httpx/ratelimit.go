package httpx

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/q8244654-ui/lifeclock/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Rate limit profiles for the different endpoint types.
// These can be overridden via environment variables (see init() below)
var (
	// CheckoutLimit guards checkout-session creation, which is billed by the
	// payment provider. 30 per minute sustained (one every 2s) with a burst
	// of 10.
	// Override with: RATELIMIT_CHECKOUT_REQUESTS, RATELIMIT_CHECKOUT_WINDOW_SEC, RATELIMIT_CHECKOUT_BURST
	CheckoutLimit = RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		Burst:             10,
	}

	// ConfirmLimit for payment confirmation lookups against the provider.
	// Override with: RATELIMIT_CONFIRM_REQUESTS, RATELIMIT_CONFIRM_WINDOW_SEC, RATELIMIT_CONFIRM_BURST
	ConfirmLimit = RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		Burst:             20,
	}

	// PublicLimit for public read-only endpoints (file library, stats, SEO).
	// Override with: RATELIMIT_PUBLIC_REQUESTS, RATELIMIT_PUBLIC_WINDOW_SEC, RATELIMIT_PUBLIC_BURST
	PublicLimit = RateLimitConfig{
		RequestsPerWindow: 1000,
		Window:            time.Minute,
		Burst:             1000,
	}
)

func init() {
	// Allow overriding rate limits via environment variables (useful for testing)
	CheckoutLimit = ParseRateLimitFromEnv("CHECKOUT", CheckoutLimit)
	ConfirmLimit = ParseRateLimitFromEnv("CONFIRM", ConfirmLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: RATELIMIT_{prefix}_{field}
// For example: RATELIMIT_CHECKOUT_REQUESTS, RATELIMIT_CHECKOUT_WINDOW_SEC, RATELIMIT_CHECKOUT_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, endpoint name, etc.)
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// PrefixedKeyExtractor namespaces another extractor's keys, e.g.
// PrefixedKeyExtractor("checkout:", IPKeyExtractor) produces "checkout:1.2.3.4".
// An empty inner key stays empty so the middleware's no-key fallback applies.
func PrefixedKeyExtractor(prefix string, inner KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		key := inner(r)
		if key == "" {
			return ""
		}
		return prefix + key
	}
}

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed bool
	// Remaining is the number of whole tokens left in the bucket after the
	// check was applied.
	Remaining int
	// RetryAfter is how long until the next token regenerates. Only
	// meaningful when Allowed is false.
	RetryAfter time.Duration
}

// Limiter manages one token bucket per key. Buckets are created lazily, each
// bucket's read-modify-write is serialized internally by rate.Limiter, and
// idle buckets are swept periodically so the key map stays bounded under
// client-address churn.
type Limiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

// NewLimiter creates a Limiter with the given configuration.
func NewLimiter(config RateLimitConfig) *Limiter {
	ratePerSecond := float64(config.RequestsPerWindow) / config.Window.Seconds()
	return &Limiter{
		rate:        rate.Limit(ratePerSecond),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}
}

// Check consumes one token from the key's bucket if available.
func (l *Limiter) Check(key string) Decision {
	return l.CheckAt(key, time.Now())
}

// CheckAt is Check with an explicit timestamp, which makes outcomes
// reproducible under test. Refill is continuous: tokens regenerate at the
// configured rate up to the burst cap, based on time elapsed since the
// bucket was last touched.
func (l *Limiter) CheckAt(key string, now time.Time) Decision {
	limiter := l.getLimiter(key)

	allowed := limiter.AllowN(now, 1)
	tokens := limiter.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}

	d := Decision{Allowed: allowed, Remaining: int(tokens)}
	if !allowed && tokens < 1 {
		d.RetryAfter = time.Duration(float64(time.Second) * (1 - tokens) / float64(l.rate))
	}
	return d
}

// getLimiter retrieves or creates a rate limiter for the given key.
func (l *Limiter) getLimiter(key string) *rate.Limiter {
	// Fast path: limiter already exists
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	// Slow path: create new limiter
	limiter := rate.NewLimiter(l.rate, l.burst)
	actual, _ := l.limiters.LoadOrStore(key, limiter)

	l.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup removes limiters that haven't been used recently. A limiter
// whose bucket has refilled to the full burst has been idle for at least a
// full refill cycle and can be dropped; it will be recreated full if the key
// returns.
func (l *Limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}

	l.lastCleanup = time.Now()

	l.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware creates a rate limiting middleware with the given
// configuration. The keyExtractor determines how requests are grouped.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	return RateLimitWithLimiter(NewLimiter(config), config, keyExtractor, nil)
}

// RateLimitWithLimiter is RateLimitMiddleware over a caller-owned Limiter.
// onReject, when non-nil, is invoked once per rejected request (used to feed
// metrics without coupling this package to the metrics registry).
func RateLimitWithLimiter(
	l *Limiter,
	config RateLimitConfig,
	keyExtractor KeyExtractor,
	onReject func(key string),
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyExtractor(r)
			if key == "" {
				// If we can't extract a key, allow the request but log it
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			decision := l.Check(key)
			if !decision.Allowed {
				retryAfter := max(int(decision.RetryAfter.Seconds()), 1)

				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", config.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				if onReject != nil {
					onReject(key)
				}

				WriteError(w, http.StatusTooManyRequests,
					"rate_limit_exceeded", "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP creates a rate limiter that limits by IP address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}
