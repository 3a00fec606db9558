package middleware

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"superset-embed/internal/common"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newRequestID returns a lexicographically sortable ULID
func newRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// Logging attaches a request scoped logger to the request context and logs every request
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = newRequestID()
		}
		c.Header(RequestIDHeader, reqID)

		logger := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(common.ContextWithLogger(c.Request.Context(), logger))

		c.Next()

		logger.Info("http_request",
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Recovery turns a panic into the standard error envelope
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				common.LoggerFromContext(c.Request.Context()).Error("panic recovered", "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"ok":      false,
					"kind":    common.KindUnknown,
					"message": "internal error",
				})
			}
		}()
		c.Next()
	}
}

// RateLimitConfig defines the inbound rate limiting parameters
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client; zero disables limiting
	RequestsPerSecond float64
	Burst             int
}

// rateLimiter keeps one token bucket per client
type rateLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle limiters every few minutes; a full bucket means idle
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit limits requests per client IP.
// Forwarding headers only count when the engine trusts the sending proxy.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	rl := &rateLimiter{
		rate:        rate.Limit(config.RequestsPerSecond),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}

	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter := rl.getLimiter(key)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()

			retryAfter := max(int(delay.Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			common.LoggerFromContext(c.Request.Context()).Warn("rate limit exceeded",
				"key", key,
				"retry_after", retryAfter)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      false,
				"kind":    "rate_limited",
				"message": "too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
