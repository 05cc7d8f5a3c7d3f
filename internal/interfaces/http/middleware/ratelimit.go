package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shoppingos/sospay/internal/infrastructure/ratelimit"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

// RateLimiter throttles a route group per client IP.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	policy  ratelimit.Policy
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, policy ratelimit.Policy, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		policy:  policy,
		logger:  logger,
	}
}

// Limit counts requests under scope:client-ip. A nil limiter disables it.
func (rl *RateLimiter) Limit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.limiter == nil {
			c.Next()
			return
		}

		key := scope + ":" + c.ClientIP()
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.policy)
		if err != nil {
			// redis outages must not take checkout down
			rl.logger.Warnw("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}

		rl.setRemaining(c, key)

		if !allowed {
			rl.logger.Warnw("rate limit exceeded", "scope", scope, "client_ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRemaining reports the per-minute budget left to the client.
func (rl *RateLimiter) setRemaining(c *gin.Context, key string) {
	limit := rl.policy.RequestsPerMinute
	if limit <= 0 {
		return
	}

	used, err := rl.limiter.Count(c.Request.Context(), key, time.Minute)
	if err != nil {
		rl.logger.Warnw("failed to count rate limited requests", "key", key, "error", err)
		return
	}

	remaining := int64(limit) - used
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
}
