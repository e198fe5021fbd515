package wordcache

import (
	"context"

	"go.uber.org/zap"
)

//go:generate mockgen -source=gateway.go -destination=internal/mocks/mock_gateway.go -package=mocks

// BatchProvider is the interface for bulk translation backends.
// Implementations return one translation per input word, in input order,
// or fail the whole call.
type BatchProvider interface {
	TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error)
}

// CacheStore is the interface for persistent translation storage.
type CacheStore interface {
	// EnsureSchema creates the underlying table or keyspace if absent. It is
	// safe to call repeatedly.
	EnsureSchema(ctx context.Context) error

	// Get returns the translation stored for key. A miss returns "", false, nil.
	Get(ctx context.Context, key Key) (string, bool, error)

	// Put inserts or replaces the translation stored for key and stamps the
	// write time.
	Put(ctx context.Context, key Key, translatedText string) error
}

// Gateway translates word lists through a cache-aside layer in front of a
// BatchProvider. A Gateway is safe for concurrent use when its store and
// provider are.
type Gateway struct {
	store    CacheStore
	provider BatchProvider
	cfg      Config
	logger   *zap.Logger
}

// GatewayOption is a functional option for configuring the Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for cache and retry diagnostics.
func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGateway creates a Gateway over store and provider. The configuration is
// validated here; an invalid one yields a *ValidationError.
func NewGateway(store CacheStore, provider BatchProvider, cfg Config, opts ...GatewayOption) (*Gateway, error) {
	var missing []string
	if store == nil {
		missing = append(missing, "store")
	}
	if provider == nil {
		missing = append(missing, "provider")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "missing collaborator", Fields: missing}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Gateway{
		store:    store,
		provider: provider,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Translate returns a mapping of word to translation for words, reading the
// cache first and sending misses to the provider in batches.
//
// A batch that still fails after the retry policy is exhausted aborts the
// whole call with a *ProviderError. Batches completed before it stay cached.
// Storage failures are returned unchanged.
func (g *Gateway) Translate(ctx context.Context, words []string, studyLang, nativeLang string) (map[string]string, error) {
	result, err := g.TranslateDetailed(ctx, words, studyLang, nativeLang)
	if err != nil {
		return nil, err
	}
	return result.Translations, nil
}

// TranslateDetailed is Translate with hit, miss and call counters.
func (g *Gateway) TranslateDetailed(ctx context.Context, words []string, studyLang, nativeLang string) (*Result, error) {
	studyLang, nativeLang = g.langPair(studyLang, nativeLang)
	result := &Result{Translations: make(map[string]string, len(words))}

	pending, err := g.partition(ctx, words, studyLang, nativeLang, result)
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		g.logger.Debug("all words served from cache",
			zap.Int("words", len(words)),
			zap.String("study_lang", studyLang),
			zap.String("native_lang", nativeLang))
		return result, nil
	}

	batches := SplitIntoBatches(pending, g.cfg.BatchSize)
	for i, batch := range batches {
		if err := g.dispatch(ctx, i, batch, studyLang, nativeLang, result); err != nil {
			g.logger.Error("translation aborted",
				zap.Int("batch", i),
				zap.Int("batches", len(batches)),
				zap.Int("committed", result.TranslatedCount),
				zap.Error(err))
			return nil, err
		}
		result.Batches++
	}

	g.logger.Info("translation complete",
		zap.Int("words", len(words)),
		zap.Int("cached", result.CachedCount),
		zap.Int("translated", result.TranslatedCount),
		zap.Int("batches", result.Batches),
		zap.Int("provider_calls", result.ProviderCalls),
		zap.String("study_lang", studyLang),
		zap.String("native_lang", nativeLang))

	return result, nil
}

// partition records cache hits in result and returns the misses in input order.
func (g *Gateway) partition(ctx context.Context, words []string, studyLang, nativeLang string, result *Result) ([]string, error) {
	var pending []string
	var queued map[string]bool
	if g.cfg.Dedup {
		queued = make(map[string]bool)
	}

	for _, word := range words {
		key := NewKey(word, studyLang, nativeLang)
		cached, ok, err := g.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			g.logger.Debug("cache hit", zap.Stringer("key", key))
			result.Translations[word] = cached
			result.CachedCount++
			continue
		}

		if queued != nil {
			if queued[word] {
				continue
			}
			queued[word] = true
		}
		pending = append(pending, word)
	}
	return pending, nil
}

// dispatch sends one batch to the provider under the retry policy and writes
// the translations back to the store.
func (g *Gateway) dispatch(ctx context.Context, index int, batch []string, studyLang, nativeLang string, result *Result) error {
	g.logger.Debug("dispatching batch", zap.Int("batch", index), zap.Int("size", len(batch)))

	translations, attempts, err := WithRetry(ctx, g.cfg.Retry, func() ([]string, error) {
		result.ProviderCalls++
		out, err := g.provider.TranslateBatch(ctx, batch, studyLang, nativeLang)
		if err != nil {
			return nil, err
		}
		if len(out) != len(batch) {
			return nil, &CountMismatchError{Expected: len(batch), Got: len(out)}
		}
		return out, nil
	}, func(attempt uint, err error) {
		g.logger.Warn("batch failed, retrying",
			zap.Int("batch", index),
			zap.Uint("attempt", attempt+1),
			zap.Error(err))
	})
	if err != nil {
		return &ProviderError{
			Message:  "batch translation failed",
			Cause:    err,
			Attempts: attempts,
			Batch:    batch,
		}
	}

	for i, word := range batch {
		if err := g.store.Put(ctx, NewKey(word, studyLang, nativeLang), translations[i]); err != nil {
			return err
		}
		result.Translations[word] = translations[i]
		result.TranslatedCount++
	}
	return nil
}

// langPair fills empty language codes from the configuration.
func (g *Gateway) langPair(studyLang, nativeLang string) (string, string) {
	if studyLang == "" {
		studyLang = g.cfg.StudyLang
	}
	if nativeLang == "" {
		nativeLang = g.cfg.NativeLang
	}
	return studyLang, nativeLang
}
