package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/pkg/response"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per authenticated user
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewUserRateLimiter creates a limiter allowing perMinute requests per user
// with the given burst
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters: make(map[uint]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:    burst,
	}
}

func (l *UserRateLimiter) get(userID uint) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	return limiter
}

// Middleware rejects requests over the limit with 429. It must run after AuthMiddleware.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			c.Next()
			return
		}
		if !l.get(id.UserID).Allow() {
			LogInfo("rate limit exceeded for user %d on %s", id.UserID, c.Request.URL.Path)
			response.TooManyRequests(c, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
