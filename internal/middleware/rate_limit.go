package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"restaurant_chat/internal/config"
	"restaurant_chat/internal/service"
	"restaurant_chat/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	cfg              config.RateLimitConfig
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, cfg config.RateLimitConfig, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		cfg:              cfg,
		log:              log,
	}
}

func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, count, err := m.rateLimitService.Allow(c.Request.Context(), c.ClientIP(), m.cfg.Limit, m.cfg.Window)
		if err != nil {
			// Недоступный лимитер не должен ронять публичные endpoints
			m.log.Error("Rate limit check failed", "error", err)
			c.Next()
			return
		}

		remaining := m.cfg.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(m.cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
