package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/wordcache"
)

const (
	defaultKeyPrefix = "wordcache:"

	fieldTranslatedText = "translated_text"
	fieldCreatedAt      = "created_at"
)

// RedisStore is a Redis-backed translation store. Each entry is a hash at
// <prefix><study>:<native>:<word> holding the translation and write time.
// Language codes are query-escaped so a ':' inside one cannot shift the
// separators. Entries never expire.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	opts      options
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string `mapstructure:"url"`        // Redis connection URL (e.g., "redis://localhost:6379/0")
	KeyPrefix string `mapstructure:"key_prefix"` // Prefix for all keys (default: "wordcache:")
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, opts ...Option) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	s := NewRedisStoreFromClient(redis.NewClient(redisOpts), cfg.KeyPrefix, opts...)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.client.Close()
		return nil, err
	}
	return s, nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string, opts ...Option) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		opts:      newOptions(opts),
	}
}

// EnsureSchema checks connectivity; Redis keys need no schema.
func (s *RedisStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return storageError("ensure_schema", wordcache.Key{}, err)
	}
	return nil
}

// Get retrieves a translation from Redis.
func (s *RedisStore) Get(ctx context.Context, key wordcache.Key) (string, bool, error) {
	val, err := s.client.HGet(ctx, s.redisKey(key), fieldTranslatedText).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageError("get", key, err)
	}
	return val, true, nil
}

// Put stores a translation in Redis, replacing any previous value.
func (s *RedisStore) Put(ctx context.Context, key wordcache.Key, translatedText string) error {
	err := s.client.HSet(ctx, s.redisKey(key),
		fieldTranslatedText, translatedText,
		fieldCreatedAt, s.opts.now().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return storageError("put", key, err)
	}
	return nil
}

// Entries scans every key under the prefix.
func (s *RedisStore) Entries(ctx context.Context) ([]wordcache.CacheEntry, error) {
	var entries []wordcache.CacheEntry
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, storageError("list", wordcache.Key{}, err)
		}

		for _, redisKey := range keys {
			key, ok := s.parseKey(redisKey)
			if !ok {
				continue
			}
			fields, err := s.client.HGetAll(ctx, redisKey).Result()
			if err != nil {
				return nil, storageError("list", key, err)
			}
			text, ok := fields[fieldTranslatedText]
			if !ok {
				continue
			}
			entry := wordcache.CacheEntry{Key: key, TranslatedText: text}
			if ts, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err == nil {
				entry.CreatedAt = ts
			}
			entries = append(entries, entry)
		}

		if next == 0 {
			break
		}
		cursor = next
	}
	return entries, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) redisKey(key wordcache.Key) string {
	return s.keyPrefix + url.QueryEscape(key.StudyLang) + ":" + url.QueryEscape(key.NativeLang) + ":" + key.SourceText
}

// parseKey reverses redisKey. The source text is last so it may contain ':'.
func (s *RedisStore) parseKey(redisKey string) (wordcache.Key, bool) {
	rest, ok := strings.CutPrefix(redisKey, s.keyPrefix)
	if !ok {
		return wordcache.Key{}, false
	}
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		return wordcache.Key{}, false
	}
	study, err := url.QueryUnescape(parts[0])
	if err != nil {
		return wordcache.Key{}, false
	}
	native, err := url.QueryUnescape(parts[1])
	if err != nil {
		return wordcache.Key{}, false
	}
	return wordcache.NewKey(parts[2], study, native), true
}

var (
	_ ClosableStore = (*RedisStore)(nil)
	_ Lister        = (*RedisStore)(nil)
)
