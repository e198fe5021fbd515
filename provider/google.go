package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/wordcache"
)

const (
	defaultGoogleBaseURL = "https://translation.googleapis.com"
	googleTranslatePath  = "/language/translate/v2"
)

// GoogleConfig holds configuration for the Google Cloud Translation provider.
type GoogleConfig struct {
	APIKey  string        `mapstructure:"api_key"`  // Cloud Translation API key
	BaseURL string        `mapstructure:"base_url"` // Override for testing or proxies
	Timeout time.Duration `mapstructure:"timeout"`  // Per-request timeout (default: 30s)
}

// GoogleProvider implements BatchProvider with the Cloud Translation v2 REST API.
type GoogleProvider struct {
	client *resty.Client
}

type googleRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source,omitempty"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGoogleProvider creates a new Google Cloud Translation provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("User-Agent", wordcache.UserAgent())
	client.SetQueryParam("key", cfg.APIKey)

	return &GoogleProvider{client: client}
}

// TranslateBatch translates words in a single request. Words are sent as
// plain text so the API does not treat them as HTML.
func (p *GoogleProvider) TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	if len(words) == 0 {
		return []string{}, nil
	}

	res, err := p.client.R().
		SetContext(ctx).
		SetBody(googleRequest{
			Q:      words,
			Source: sourceLang,
			Target: targetLang,
			Format: "text",
		}).
		SetResult(&googleResponse{}).
		SetError(&googleErrorResponse{}).
		Post(googleTranslatePath)
	if err != nil {
		return nil, &wordcache.ProviderError{
			Message: "Google Translate request failed",
			Cause:   err,
		}
	}
	if res.IsError() {
		msg := res.String()
		if apiErr, ok := res.Error().(*googleErrorResponse); ok && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &wordcache.ProviderError{
			Message: fmt.Sprintf("Google Translate returned status %d: %s", res.StatusCode(), msg),
		}
	}

	body, ok := res.Result().(*googleResponse)
	if !ok || body == nil {
		return nil, &wordcache.ProviderError{Message: "invalid response format from Google Translate"}
	}

	translations := body.Data.Translations
	if len(translations) != len(words) {
		return nil, &wordcache.CountMismatchError{Expected: len(words), Got: len(translations)}
	}

	// format=text responses are plain text and stored as returned.
	results := make([]string, len(translations))
	for i, t := range translations {
		results[i] = t.TranslatedText
	}
	return results, nil
}

// Verify GoogleProvider implements BatchProvider
var _ BatchProvider = (*GoogleProvider)(nil)
