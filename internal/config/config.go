// Package config loads CLI configuration from a YAML file, the environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ZaguanLabs/wordcache"
	"github.com/ZaguanLabs/wordcache/cache"
	"github.com/ZaguanLabs/wordcache/internal/logging"
	"github.com/ZaguanLabs/wordcache/provider"
)

// EnvPrefix prefixes environment overrides, e.g. WORDCACHE_STORE_DRIVER.
const EnvPrefix = "WORDCACHE"

// Config is the full application configuration, one field per YAML section.
type Config struct {
	Store    cache.StoreConfig `mapstructure:"store"`
	Provider provider.Config   `mapstructure:"provider"`
	Gateway  GatewayConfig     `mapstructure:"gateway"`
	Log      logging.Config    `mapstructure:"log"`
}

// GatewayConfig is the gateway section. Its language codes are used by calls
// that pass none.
type GatewayConfig struct {
	BatchSize   int           `mapstructure:"batch_size" validate:"gte=1"`
	StudyLang   string        `mapstructure:"study_lang" validate:"omitempty,lang"`
	NativeLang  string        `mapstructure:"native_lang" validate:"omitempty,lang"`
	MaxAttempts uint          `mapstructure:"max_attempts" validate:"gte=1"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	Dedup       bool          `mapstructure:"dedup"`
}

// GatewayOptions converts the section into the gateway's Config.
func (c GatewayConfig) GatewayOptions() wordcache.Config {
	cfg := wordcache.DefaultConfig()
	cfg.BatchSize = c.BatchSize
	cfg.StudyLang = c.StudyLang
	cfg.NativeLang = c.NativeLang
	cfg.Retry.MaxAttempts = c.MaxAttempts
	cfg.Retry.Delay = c.RetryDelay
	cfg.Dedup = c.Dedup
	return cfg
}

// Loader reads configuration from a file, the environment and bound flags.
type Loader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

// NewLoader creates a loader reading configFile, or wordcache.yaml from the
// working directory or $HOME/.config/wordcache when configFile is empty.
func NewLoader(configFile string) (*Loader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("wordcache")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/wordcache")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

// BindFlag lets a command-line flag override key when the flag is set.
func (loader *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	if err := loader.viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag --%s: %w", flag.Name, err)
	}
	return nil
}

// ConfigFileUsed returns the path of the file read by Load, if any.
func (loader *Loader) ConfigFileUsed() string {
	return loader.viper.ConfigFileUsed()
}

// Load applies defaults, reads the config file if present and validates the
// result. Validation failures are reported as one error listing every field.
func (loader *Loader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "translations.db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.mysql.host", "localhost")
	v.SetDefault("store.mysql.port", 3306)
	v.SetDefault("store.mysql.database", "wordcache")
	v.SetDefault("store.mysql.username", "wordcache")
	v.SetDefault("store.mysql.password", "")
	v.SetDefault("store.redis.url", "redis://localhost:6379/0")
	v.SetDefault("store.redis.key_prefix", "wordcache:")
	v.SetDefault("provider.name", provider.NameGoogle)
	v.SetDefault("provider.openai.model", "gpt-4o-mini")
	v.SetDefault("provider.requests_per_minute", 0)
	v.SetDefault("provider.breaker.enabled", false)
	v.SetDefault("provider.breaker.max_failures", 5)
	v.SetDefault("provider.breaker.open_timeout", "30s")
	v.SetDefault("gateway.batch_size", wordcache.DefaultBatchSize)
	v.SetDefault("gateway.study_lang", "")
	v.SetDefault("gateway.native_lang", "en")
	v.SetDefault("gateway.max_attempts", wordcache.DefaultMaxAttempts)
	v.SetDefault("gateway.retry_delay", "0s")
	v.SetDefault("gateway.dedup", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)

	// Provider API keys come from their usual environment variables
	if err := v.BindEnv("provider.openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("provider.google.api_key", "GOOGLE_TRANSLATE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GOOGLE_TRANSLATE_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
