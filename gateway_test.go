package wordcache_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ZaguanLabs/wordcache"
	"github.com/ZaguanLabs/wordcache/cache"
	"github.com/ZaguanLabs/wordcache/internal/mocks"
	"github.com/ZaguanLabs/wordcache/provider"
)

func numberedWords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Wort%03d", i)
	}
	return out
}

func newGateway(t *testing.T, store wordcache.CacheStore, p wordcache.BatchProvider, opts ...wordcache.GatewayOption) *wordcache.Gateway {
	t.Helper()
	gw, err := wordcache.NewGateway(store, p, wordcache.DefaultConfig(), opts...)
	require.NoError(t, err)
	return gw
}

func TestGateway_MixedHitAndMiss(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(ctx, wordcache.NewKey("Haus", "de", "en"), "house"))
	p := provider.NewMockProvider()

	got, err := newGateway(t, store, p).Translate(ctx, []string{"Haus", "Hund"}, "de", "en")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Haus": "house", "Hund": "dog"}, got)
	require.Equal(t, 1, p.CallCount())
	assert.Equal(t, provider.Call{Words: []string{"Hund"}, SourceLang: "de", TargetLang: "en"}, p.Calls()[0])

	cached, ok, err := store.Get(ctx, wordcache.NewKey("Hund", "de", "en"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dog", cached)
}

func TestGateway_AllCached(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(ctx, wordcache.NewKey("Haus", "de", "en"), "house"))
	require.NoError(t, store.Put(ctx, wordcache.NewKey("Hund", "de", "en"), "dog"))

	// No EXPECT: any provider call fails the test.
	p := mocks.NewMockBatchProvider(ctrl)

	result, err := newGateway(t, store, p).TranslateDetailed(ctx, []string{"Haus", "Hund"}, "de", "en")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Haus": "house", "Hund": "dog"}, result.Translations)
	assert.Equal(t, 2, result.CachedCount)
	assert.Equal(t, 0, result.ProviderCalls)
	assert.Equal(t, 0, result.Batches)
}

func TestGateway_EmptyInput(t *testing.T) {
	p := provider.NewMockProvider()

	got, err := newGateway(t, cache.NewMemoryStore(), p).Translate(context.Background(), nil, "de", "en")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, 0, p.CallCount())
}

func TestGateway_Batching(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	p := provider.NewMockProvider()
	input := numberedWords(120)

	result, err := newGateway(t, store, p).TranslateDetailed(ctx, input, "de", "en")
	require.NoError(t, err)

	calls := p.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, input[:50], calls[0].Words)
	assert.Equal(t, input[50:100], calls[1].Words)
	assert.Equal(t, input[100:], calls[2].Words)

	assert.Len(t, result.Translations, 120)
	assert.Equal(t, 120, result.TranslatedCount)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 3, result.ProviderCalls)
	assert.Equal(t, 120, store.Len())
	assert.Equal(t, "[Wort119]", result.Translations["Wort119"])
}

func TestGateway_CustomBatchSize(t *testing.T) {
	p := provider.NewMockProvider()
	cfg := wordcache.DefaultConfig()
	cfg.BatchSize = 2

	gw, err := wordcache.NewGateway(cache.NewMemoryStore(), p, cfg)
	require.NoError(t, err)

	_, err = gw.Translate(context.Background(), numberedWords(5), "de", "en")
	require.NoError(t, err)
	assert.Equal(t, 3, p.CallCount())
}

func TestGateway_RetrySucceeds(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	p := mocks.NewMockBatchProvider(ctrl)
	core, logs := observer.New(zap.DebugLevel)

	gomock.InOrder(
		p.EXPECT().TranslateBatch(gomock.Any(), []string{"Hund"}, "de", "en").
			Return(nil, errors.New("connection reset")),
		p.EXPECT().TranslateBatch(gomock.Any(), []string{"Hund"}, "de", "en").
			Return([]string{"dog"}, nil),
	)

	gw := newGateway(t, cache.NewMemoryStore(), p, wordcache.WithLogger(zap.New(core)))
	result, err := gw.TranslateDetailed(ctx, []string{"Hund"}, "de", "en")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Hund": "dog"}, result.Translations)
	assert.Equal(t, 2, result.ProviderCalls)
	assert.Equal(t, 1, logs.FilterMessage("batch failed, retrying").Len())
}

func TestGateway_FatalBatchKeepsEarlierBatches(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	p := provider.NewMockProvider()
	failure := errors.New("quota exceeded")
	p.FailCalls = map[int]error{2: failure, 3: failure}
	input := numberedWords(60)

	got, err := newGateway(t, store, p).Translate(ctx, input, "de", "en")
	require.Error(t, err)
	assert.Nil(t, got)

	var providerErr *wordcache.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, 2, providerErr.Attempts)
	assert.Equal(t, input[50:], providerErr.Batch)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 3, p.CallCount(), "one call for batch 0, two attempts for batch 1")

	for _, w := range input[:50] {
		_, ok, err := store.Get(ctx, wordcache.NewKey(w, "de", "en"))
		require.NoError(t, err)
		assert.True(t, ok, "%s from the completed batch must stay cached", w)
	}
	for _, w := range input[50:] {
		_, ok, err := store.Get(ctx, wordcache.NewKey(w, "de", "en"))
		require.NoError(t, err)
		assert.False(t, ok, "%s from the failed batch must not be cached", w)
	}
}

func TestGateway_FatalAfterRecoveredBatch(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	p := provider.NewMockProvider()
	failure := errors.New("timeout")
	p.FailCalls = map[int]error{1: failure, 3: failure, 4: failure}

	_, err := newGateway(t, store, p).Translate(ctx, numberedWords(51), "de", "en")

	var providerErr *wordcache.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, []string{"Wort050"}, providerErr.Batch)
	assert.Equal(t, 50, store.Len())
}

func TestGateway_CountMismatch(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	p := provider.NewMockProvider()
	p.Short = 1

	_, err := newGateway(t, store, p).Translate(ctx, []string{"Haus", "Hund"}, "de", "en")

	var mismatch *wordcache.CountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Expected)
	assert.Equal(t, 1, mismatch.Got)

	var providerErr *wordcache.ProviderError
	assert.True(t, errors.As(err, &providerErr))
	assert.Equal(t, 2, p.CallCount(), "a short response is retried")
	assert.Equal(t, 0, store.Len())
}

func TestGateway_Duplicates(t *testing.T) {
	tests := []struct {
		name      string
		dedup     bool
		wantWords []string
	}{
		{name: "sent as given", dedup: false, wantWords: []string{"Hund", "Katze", "Hund"}},
		{name: "dedup", dedup: true, wantWords: []string{"Hund", "Katze"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider.NewMockProvider()
			cfg := wordcache.DefaultConfig()
			cfg.Dedup = tt.dedup
			gw, err := wordcache.NewGateway(cache.NewMemoryStore(), p, cfg)
			require.NoError(t, err)

			got, err := gw.Translate(context.Background(), []string{"Hund", "Katze", "Hund"}, "de", "en")
			require.NoError(t, err)

			assert.Equal(t, map[string]string{"Hund": "dog", "Katze": "cat"}, got)
			require.Equal(t, 1, p.CallCount())
			assert.Equal(t, tt.wantWords, p.Calls()[0].Words)
		})
	}
}

func TestGateway_StorageErrorOnGet(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCacheStore(ctrl)
	p := mocks.NewMockBatchProvider(ctrl)

	storageErr := &wordcache.StorageError{Op: "get", Cause: errors.New("database is locked")}
	store.EXPECT().Get(gomock.Any(), wordcache.NewKey("Haus", "de", "en")).Return("", false, storageErr)

	_, err := newGateway(t, store, p).Translate(ctx, []string{"Haus", "Hund"}, "de", "en")

	var got *wordcache.StorageError
	require.True(t, errors.As(err, &got))
	assert.Same(t, storageErr, got)
}

func TestGateway_StorageErrorOnPut(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCacheStore(ctrl)
	p := mocks.NewMockBatchProvider(ctrl)

	key := wordcache.NewKey("Hund", "de", "en")
	storageErr := &wordcache.StorageError{Op: "put", Key: key, Cause: errors.New("disk full")}
	gomock.InOrder(
		store.EXPECT().Get(gomock.Any(), key).Return("", false, nil),
		p.EXPECT().TranslateBatch(gomock.Any(), []string{"Hund"}, "de", "en").Return([]string{"dog"}, nil),
		store.EXPECT().Put(gomock.Any(), key, "dog").Return(storageErr),
	)

	_, err := newGateway(t, store, p).Translate(ctx, []string{"Hund"}, "de", "en")

	var got *wordcache.StorageError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "put", got.Op)

	var providerErr *wordcache.ProviderError
	assert.False(t, errors.As(err, &providerErr), "storage failures are not provider failures")
}

func TestGateway_LanguageFallback(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	p := provider.NewMockProvider()
	cfg := wordcache.DefaultConfig()
	cfg.StudyLang = "de"
	cfg.NativeLang = "en"

	gw, err := wordcache.NewGateway(store, p, cfg)
	require.NoError(t, err)

	_, err = gw.Translate(ctx, []string{"Hund"}, "", "")
	require.NoError(t, err)

	assert.Equal(t, "de", p.Calls()[0].SourceLang)
	assert.Equal(t, "en", p.Calls()[0].TargetLang)
	_, ok, _ := store.Get(ctx, wordcache.NewKey("Hund", "de", "en"))
	assert.True(t, ok)
}

func TestGateway_LanguagePairsAreSeparate(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(ctx, wordcache.NewKey("Hund", "de", "en"), "dog"))
	p := provider.NewMockProvider()
	p.Translations["Hund"] = "chien"

	got, err := newGateway(t, store, p).Translate(ctx, []string{"Hund"}, "de", "fr")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Hund": "chien"}, got)
	assert.Equal(t, 1, p.CallCount())
}

func TestGateway_ContextCancelled(t *testing.T) {
	p := provider.NewMockProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newGateway(t, cache.NewMemoryStore(), p).TranslateDetailed(ctx, []string{"Hund"}, "de", "en")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.CallCount())
}

func TestGateway_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := cache.Open(ctx, cache.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "translations.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	p := provider.NewMockProvider()
	gw := newGateway(t, store, p)

	first, err := gw.TranslateDetailed(ctx, []string{"Haus", "Hund"}, "de", "en")
	require.NoError(t, err)
	assert.Equal(t, 2, first.TranslatedCount)

	second, err := gw.TranslateDetailed(ctx, []string{"Haus", "Hund"}, "de", "en")
	require.NoError(t, err)
	assert.Equal(t, 2, second.CachedCount)
	assert.Equal(t, first.Translations, second.Translations)
	assert.Equal(t, 1, p.CallCount(), "second call is served from the cache")
}

func TestGateway_CacheHitLogging(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(ctx, wordcache.NewKey("Haus", "de", "en"), "house"))
	core, logs := observer.New(zap.DebugLevel)

	gw := newGateway(t, store, provider.NewMockProvider(), wordcache.WithLogger(zap.New(core)))
	_, err := gw.Translate(ctx, []string{"Haus", "Hund"}, "de", "en")
	require.NoError(t, err)

	hits := logs.FilterMessage("cache hit").All()
	require.Len(t, hits, 1)
	assert.Equal(t, "de:en:Haus", hits[0].ContextMap()["key"])
	assert.Equal(t, 1, logs.FilterMessage("translation complete").Len())
}

func TestNewGateway_Validation(t *testing.T) {
	store := cache.NewMemoryStore()
	p := provider.NewMockProvider()

	tests := []struct {
		name       string
		store      wordcache.CacheStore
		provider   wordcache.BatchProvider
		cfg        func(*wordcache.Config)
		wantFields []string
	}{
		{name: "nil store", provider: p, wantFields: []string{"store"}},
		{name: "nil provider", store: store, wantFields: []string{"provider"}},
		{name: "zero batch size", store: store, provider: p, cfg: func(c *wordcache.Config) { c.BatchSize = 0 }, wantFields: []string{"BatchSize"}},
		{name: "zero attempts", store: store, provider: p, cfg: func(c *wordcache.Config) { c.Retry.MaxAttempts = 0 }, wantFields: []string{"Retry.MaxAttempts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := wordcache.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}

			_, err := wordcache.NewGateway(tt.store, tt.provider, cfg)

			var validationErr *wordcache.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.wantFields, validationErr.Fields)
		})
	}
}
