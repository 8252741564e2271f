package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to an underlying Generator. Concurrent callers
// queue on the limiter so a burst of criteria does not exceed provider quotas.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerMinute calls with the given burst. A
// non-positive requestsPerMinute returns next unchanged.
func NewRateLimited(next Generator, requestsPerMinute, burst int) Generator {
	if requestsPerMinute <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}

	interval := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

func (r *RateLimited) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.GenerateContent(ctx, prompt)
}

func (r *RateLimited) Model() string {
	return r.next.Model()
}
