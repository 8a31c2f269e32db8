package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(r *http.Request) string
	SkipPaths         []string
}

// DefaultRateLimitConfig keys buckets by client IP.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 100,
		BurstSize:         200,
		KeyFunc:           clientIP,
	}
}

// bucket is one client's token bucket. Tokens refill lazily based on the
// time elapsed since the previous take.
type bucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

func newBucket(capacity, perSec float64) *bucket {
	return &bucket{tokens: capacity, capacity: capacity, perSec: perSec, last: time.Now()}
}

// take consumes one token and reports whether the request may proceed,
// along with the number of whole tokens left.
func (b *bucket) take() (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.perSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now

	if b.tokens < 1 {
		return false, 0
	}
	b.tokens--
	return true, int(b.tokens)
}

const bucketPruneInterval = 10 * time.Minute

// RateLimiter holds one bucket per client key. The map is dropped
// wholesale every bucketPruneInterval; abandoned buckets refill to
// capacity long before that, so nothing of value is lost.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	config    *RateLimitConfig
	lastPrune time.Time
}

// NewRateLimiter creates a limiter; a nil config uses the defaults.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		config:    config,
		lastPrune: time.Now(),
	}
}

// Take consumes one token from the key's bucket.
func (rl *RateLimiter) Take(key string) (bool, int) {
	rl.mu.Lock()
	if time.Since(rl.lastPrune) > bucketPruneInterval {
		rl.buckets = make(map[string]*bucket)
		rl.lastPrune = time.Now()
	}
	b, ok := rl.buckets[key]
	if !ok {
		b = newBucket(float64(rl.config.BurstSize), float64(rl.config.RequestsPerMinute)/60.0)
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	return b.take()
}

// RateLimit rejects clients that exceed their per-minute budget with a
// 429 and the usual X-RateLimit headers.
func RateLimit(config *RateLimitConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	limiter := NewRateLimiter(config)
	limit := strconv.Itoa(config.RequestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}

			allowed, remaining := limiter.Take(config.KeyFunc(r))
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", "60")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error": map[string]string{
						"code":    "RATE_LIMIT_EXCEEDED",
						"message": "Too many requests. Please try again later.",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller's address, trusting proxy headers first.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
