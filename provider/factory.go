package provider

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/wordcache"
)

// Provider names accepted by New.
const (
	NameGoogle = "google"
	NameOpenAI = "openai"
	NameMock   = "mock"
)

// Config selects a backend and the decorators applied around it.
type Config struct {
	Name              string        `mapstructure:"name" validate:"oneof=google openai mock"`
	Google            GoogleConfig  `mapstructure:"google"`
	OpenAI            OpenAIConfig  `mapstructure:"openai"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"gte=0"` // 0 disables rate limiting
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

// New builds the provider described by cfg. A rate limiter is applied when
// RequestsPerMinute is set, and a circuit breaker outside it when enabled, so
// an open breaker does not consume rate-limit tokens.
func New(cfg Config, logger *zap.Logger) (BatchProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var p BatchProvider
	switch cfg.Name {
	case NameGoogle:
		if cfg.Google.APIKey == "" {
			return nil, errors.New("google provider requires an API key")
		}
		p = NewGoogleProvider(cfg.Google)
	case NameOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("openai provider requires an API key")
		}
		p = NewOpenAIProvider(cfg.OpenAI)
	case NameMock:
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}

	if cfg.RequestsPerMinute > 0 {
		p = wordcache.NewRateLimitedProvider(p, wordcache.RateLimitConfig{
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	}
	if cfg.Breaker.Enabled {
		p = NewBreakerProvider(p, cfg.Breaker, logger.Named("breaker"))
	}

	logger.Debug("provider ready",
		zap.String("provider", cfg.Name),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Bool("breaker", cfg.Breaker.Enabled))
	return p, nil
}
