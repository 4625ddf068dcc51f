package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	message  string
	visitors map[string]*visitor
	swept    time.Time
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimiter allows perSecond requests per IP with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		message:  "too many requests, slow down",
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// NewStrictRateLimiter is used on login and register: 5 attempts per minute per IP.
func NewStrictRateLimiter() *RateLimiter {
	rl := NewRateLimiter(float64(rate.Every(time.Minute/5)), 5)
	rl.message = "too many attempts, please wait a moment"
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	if now.Sub(rl.swept) > visitorTTL {
		for key, other := range rl.visitors {
			if now.Sub(other.lastSeen) > visitorTTL {
				delete(rl.visitors, key)
			}
		}
		rl.swept = now
	}
	return v.limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			utils.RespondError(c, http.StatusTooManyRequests, errors.New(rl.message))
			c.Abort()
			return
		}
		c.Next()
	}
}
