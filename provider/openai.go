package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/wordcache"
)

// OpenAIProvider implements BatchProvider using OpenAI chat completions in
// JSON mode.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`     // OpenAI API key
	Model       string  `mapstructure:"model"`       // Model to use (default: "gpt-4o-mini")
	Temperature float32 `mapstructure:"temperature"` // Temperature for generation (default: 0.1)
	BaseURL     string  `mapstructure:"base_url"`    // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// TranslateBatch translates words from sourceLang to targetLang in one
// completion request.
func (p *OpenAIProvider) TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	if len(words) == 0 {
		return []string{}, nil
	}

	userMessage, err := json.Marshal(words)
	if err != nil {
		return nil, fmt.Errorf("encoding words: %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(sourceLang, targetLang)},
			{Role: openai.ChatMessageRoleUser, Content: string(userMessage)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &wordcache.ProviderError{
			Message: "OpenAI API call failed",
			Cause:   err,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &wordcache.ProviderError{Message: "no response from OpenAI"}
	}

	return parseResponse(resp.Choices[0].Message.Content, len(words))
}

func (p *OpenAIProvider) buildSystemPrompt(sourceLang, targetLang string) string {
	sourceName := wordcache.LanguageName(sourceLang)
	targetName := wordcache.LanguageName(targetLang)

	return fmt.Sprintf(`# Role
You are a bilingual dictionary for language learners studying %s whose native language is %s.

# Task
Translate each %s word or short phrase into %s. Give the most common dictionary sense.
Keep the grammatical form: nouns stay nouns, infinitives stay infinitives.
If an input is already %s or cannot be translated, return it unchanged.

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input, one entry per input.
Example: { "translations": ["translation 1", "translation 2"] }
- Do NOT wrap in Markdown code blocks.
- Do NOT add explanations, articles in parentheses, or alternatives.`,
		sourceName, targetName, sourceName, targetName, targetName)
}

// parseResponse accepts {"translations": [...]}, an object holding exactly
// one array under another key, or a bare array.
func parseResponse(content string, expectedCount int) ([]string, error) {
	var objResult map[string]any
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]any); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		var arrays [][]any
		for _, v := range objResult {
			if arr, ok := v.([]any); ok {
				arrays = append(arrays, arr)
			}
		}
		if len(arrays) == 1 {
			return toStringSlice(arrays[0], expectedCount)
		}
		return nil, &wordcache.ProviderError{
			Message: fmt.Sprintf("invalid response format from OpenAI: expected one array, found %d", len(arrays)),
		}
	}

	var arrResult []any
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &wordcache.ProviderError{Message: "invalid response format from OpenAI"}
}

func toStringSlice(arr []any, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &wordcache.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

// Verify OpenAIProvider implements BatchProvider
var _ BatchProvider = (*OpenAIProvider)(nil)
