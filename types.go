package wordcache

import (
	"strings"
	"time"
)

// DefaultBatchSize is the maximum number of words sent to a provider in one call.
const DefaultBatchSize = 50

// Key identifies a cached translation. The triple is the sole identity of a
// cache row; Key is comparable and can be used directly as a map key.
type Key struct {
	SourceText string // Word or lemma in the study language
	StudyLang  string // Language being studied (e.g., "de")
	NativeLang string // Learner's native language (e.g., "en")
}

// NewKey builds a Key for word translated from studyLang into nativeLang.
func NewKey(word, studyLang, nativeLang string) Key {
	return Key{SourceText: word, StudyLang: studyLang, NativeLang: nativeLang}
}

// String renders the key as "study:native:word".
func (k Key) String() string {
	return strings.Join([]string{k.StudyLang, k.NativeLang, k.SourceText}, ":")
}

// CacheEntry is one persisted translation.
type CacheEntry struct {
	Key            Key
	TranslatedText string
	CreatedAt      time.Time // Time of the most recent write
}

// Config holds the gateway settings. Use DefaultConfig as a starting point.
type Config struct {
	BatchSize  int         `validate:"gte=1"` // Words per provider call (default: 50)
	StudyLang  string      // Used when a call passes an empty study language
	NativeLang string      // Used when a call passes an empty native language
	Retry      RetryPolicy // Per-batch retry policy (default: 2 attempts)
	Dedup      bool        // Send each missing word to the provider once per call
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
		Retry:     DefaultRetryPolicy(),
	}
}

// Result is the detailed outcome of a Translate call.
type Result struct {
	Translations    map[string]string // word -> translated text
	CachedCount     int               // Words answered from the cache
	TranslatedCount int               // Words answered by the provider
	Batches         int               // Chunks dispatched to the provider
	ProviderCalls   int               // Provider invocations, retries included
}
