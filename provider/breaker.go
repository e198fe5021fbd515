package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/wordcache"
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"` // Consecutive failures before opening (default: 5)
	OpenTimeout time.Duration `mapstructure:"open_timeout"` // Time spent open before a trial call (default: 30s)
}

// BreakerProvider stops calling a failing provider until it has had time to
// recover. Calls made while the breaker is open fail without reaching the
// wrapped provider.
type BreakerProvider struct {
	next BatchProvider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next with a circuit breaker.
func NewBreakerProvider(next BatchProvider, cfg BreakerConfig, logger *zap.Logger) *BreakerProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "translation-provider",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	return &BreakerProvider{next: next, cb: cb}
}

// TranslateBatch forwards to the wrapped provider unless the breaker is open.
func (p *BreakerProvider) TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	out, err := p.cb.Execute(func() (interface{}, error) {
		return p.next.TranslateBatch(ctx, words, sourceLang, targetLang)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &wordcache.ProviderError{Message: "provider unavailable", Cause: err}
	}
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// State returns the current breaker state.
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

// Verify BreakerProvider implements BatchProvider
var _ BatchProvider = (*BreakerProvider)(nil)
