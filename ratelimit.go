package wordcache

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures provider call pacing.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute (default: 60)
	BurstSize         int // Calls allowed back to back (default: same as RPM)
}

func newLimiter(cfg RateLimitConfig) *rate.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60), burst)
}

// RateLimitedProvider wraps a BatchProvider and spaces out its calls with a
// token bucket. Every batch costs one token.
type RateLimitedProvider struct {
	provider BatchProvider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a new rate-limited provider.
func NewRateLimitedProvider(provider BatchProvider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  newLimiter(cfg),
	}
}

// TranslateBatch implements BatchProvider, waiting for a token before each call.
// A wait that cannot finish before the context ends fails with a
// *ProviderError wrapping the context error.
func (p *RateLimitedProvider) TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Message: "rate limit wait cancelled",
			Cause:   waitError(ctx, err),
		}
	}

	return p.provider.TranslateBatch(ctx, words, sourceLang, targetLang)
}

// waitError maps a limiter failure onto the context error that caused it.
// rate.Limiter rejects up front when the deadline is closer than the next
// token, before ctx itself has expired.
func waitError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

var _ BatchProvider = (*RateLimitedProvider)(nil)
