package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/norvik-erp/jobcard-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter applies a per-IP request rate limit with a path whitelist
type RateLimiter struct {
	cfg            *config.RateLimitConfig
	logger         *zap.Logger
	ipLimiter      func(http.Handler) http.Handler
	whitelistPaths map[string]bool
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:            cfg,
		logger:         logger,
		whitelistPaths: make(map[string]bool),
	}

	for _, path := range cfg.WhitelistPaths {
		rl.whitelistPaths[path] = true
	}

	if cfg.Enabled {
		rl.ipLimiter = httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute)
	}

	return rl
}

// LimitByIP rate limits requests by client IP
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	limited := rl.ipLimiter(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.whitelistPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}
