package microsoft

import (
	"context"

	"golang.org/x/time/rate"
)

// ServiceType identifies an Exchange deployment for rate limiting purposes.
type ServiceType string

const (
	// ServiceOnPremises is an on-premises Exchange server.
	ServiceOnPremises ServiceType = "on-premises"
	// ServiceOnline is Exchange Online.
	ServiceOnline ServiceType = "online"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults for each deployment.
// Default on-premises throttling policies budget CAS time rather than request
// counts, so the limit there only smooths bursts.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceOnPremises: {RequestsPerSecond: 20.0, BurstSize: 20},
	ServiceOnline:     {RequestsPerSecond: 10.0, BurstSize: 10},
}

// RateLimiter paces EWS requests with a token bucket. One limiter is shared
// by every session a factory opens.
type RateLimiter struct {
	limiter *rate.Limiter
	service ServiceType
}

// NewRateLimiter creates a new rate limiter for the specified service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = DefaultRateLimits[ServiceOnPremises]
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		service: service,
	}
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
// A non-positive rate disables limiting.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Service returns the deployment the limiter was created for. It is empty
// for limiters built from an explicit config.
func (r *RateLimiter) Service() ServiceType {
	return r.service
}
