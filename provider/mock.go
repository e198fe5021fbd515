package provider

import (
	"context"
	"fmt"
	"sync"
)

// Call records one TranslateBatch invocation.
type Call struct {
	Words      []string
	SourceLang string
	TargetLang string
}

// MockProvider is a scripted provider for tests and offline runs.
type MockProvider struct {
	Translations map[string]string // Map of source word to translation
	FailCalls    map[int]error     // 1-based call number to the error it returns
	FailAll      error             // Returned by every call when set
	Short        int               // Drop this many results from each response

	mu    sync.Mutex
	calls []Call
}

// NewMockProvider creates a new mock provider with a few German words.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Haus":  "house",
			"Hund":  "dog",
			"Katze": "cat",
		},
	}
}

// TranslateBatch returns mock translations. Unknown words come back bracketed.
func (m *MockProvider) TranslateBatch(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{
		Words:      append([]string(nil), words...),
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	n := len(m.calls)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailAll != nil {
		return nil, m.FailAll
	}
	if err := m.FailCalls[n]; err != nil {
		return nil, err
	}

	results := make([]string, 0, len(words))
	for _, word := range words {
		if translation, ok := m.Translations[word]; ok {
			results = append(results, translation)
		} else {
			results = append(results, fmt.Sprintf("[%s]", word))
		}
	}
	if m.Short > 0 {
		results = results[:max(0, len(results)-m.Short)]
	}
	return results, nil
}

// CallCount returns the number of TranslateBatch calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Reset clears the recorded calls.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify MockProvider implements BatchProvider
var _ BatchProvider = (*MockProvider)(nil)
