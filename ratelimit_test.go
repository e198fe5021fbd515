package wordcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name      string
		cfg       RateLimitConfig
		wantLimit rate.Limit
		wantBurst int
	}{
		{name: "defaults", cfg: RateLimitConfig{}, wantLimit: 1, wantBurst: 60},
		{name: "burst follows rpm", cfg: RateLimitConfig{RequestsPerMinute: 120}, wantLimit: 2, wantBurst: 120},
		{name: "explicit burst", cfg: RateLimitConfig{RequestsPerMinute: 30, BurstSize: 3}, wantLimit: 0.5, wantBurst: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := newLimiter(tt.cfg)
			assert.InDelta(t, float64(tt.wantLimit), float64(limiter.Limit()), 1e-9)
			assert.Equal(t, tt.wantBurst, limiter.Burst())
		})
	}
}

func TestNewLimiter_BurstThenEmpty(t *testing.T) {
	limiter := newLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         3,
	})

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(), "call %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow(), "bucket should be empty")
}

func TestNewLimiter_Refill(t *testing.T) {
	limiter := newLimiter(RateLimitConfig{
		RequestsPerMinute: 6000, // 100 per second
		BurstSize:         1,
	})

	require.True(t, limiter.Allow())
	require.False(t, limiter.Allow())

	time.Sleep(20 * time.Millisecond)

	assert.True(t, limiter.Allow(), "token should be refilled")
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = "[" + w + "]"
	}
	return out, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestRateLimitedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})
	ctx := context.Background()

	got, err := p.TranslateBatch(ctx, []string{"Haus"}, "de", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"[Haus]"}, got)

	_, err = p.TranslateBatch(ctx, []string{"Hund"}, "de", "en")
	require.NoError(t, err)

	start := time.Now()
	_, err = p.TranslateBatch(ctx, []string{"Katze"}, "de", "en")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "third call should wait for a token")
	assert.Equal(t, 3, inner.count())
}

func TestRateLimitedProvider_Concurrent(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         5,
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.TranslateBatch(context.Background(), []string{"Haus"}, "de", "en")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, inner.count())
}

func TestRateLimitedProvider_DeadlineTooClose(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
	})

	_, err := p.TranslateBatch(context.Background(), []string{"Haus"}, "de", "en")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = p.TranslateBatch(ctx, []string{"Hund"}, "de", "en")
	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsRetryable(err), "a deadline failure must not be retried")
	assert.Equal(t, 1, inner.count(), "inner provider must not be called without a token")
}

func TestRateLimitedProvider_Cancelled(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
	})

	_, err := p.TranslateBatch(context.Background(), []string{"Haus"}, "de", "en")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = p.TranslateBatch(ctx, []string{"Hund"}, "de", "en")
	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.count())
}
