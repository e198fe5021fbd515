package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/wordcache"
)

func googleServer(t *testing.T, handler func(t *testing.T, w http.ResponseWriter, r *http.Request)) *GoogleProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(t, w, r)
	}))
	t.Cleanup(server.Close)
	return NewGoogleProvider(GoogleConfig{APIKey: "test-key", BaseURL: server.URL})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestGoogleProvider_TranslateBatch(t *testing.T) {
	tests := []struct {
		name    string
		words   []string
		handler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want          []string
		wantErr       bool
		wantErrString string
	}{
		{
			name:  "success",
			words: []string{"Haus", "Hund"},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/language/translate/v2", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("key"))

				var req googleRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, googleRequest{Q: []string{"Haus", "Hund"}, Source: "de", Target: "en", Format: "text"}, req)

				writeJSON(w, http.StatusOK, `{"data":{"translations":[{"translatedText":"house"},{"translatedText":"dog"}]}}`)
			},
			want: []string{"house", "dog"},
		},
		{
			name:  "plain text kept verbatim",
			words: []string{"&amp;", "a &lt; b"},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"data":{"translations":[{"translatedText":"&amp;"},{"translatedText":"a &lt; b"}]}}`)
			},
			want: []string{"&amp;", "a &lt; b"},
		},
		{
			name:  "api error",
			words: []string{"Haus"},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
			},
			wantErr:       true,
			wantErrString: "provider error: Google Translate returned status 403: API key not valid",
		},
		{
			name:  "count mismatch",
			words: []string{"Haus", "Hund"},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"data":{"translations":[{"translatedText":"house"}]}}`)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := googleServer(t, tt.handler)

			got, err := p.TranslateBatch(context.Background(), tt.words, "de", "en")
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrString != "" {
					assert.EqualError(t, err, tt.wantErrString)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoogleProvider_CountMismatchType(t *testing.T) {
	p := googleServer(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"translations":[]}}`)
	})

	_, err := p.TranslateBatch(context.Background(), []string{"Haus"}, "de", "en")

	var mismatch *wordcache.CountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Expected)
	assert.Equal(t, 0, mismatch.Got)
}

func TestGoogleProvider_EmptyInput(t *testing.T) {
	p := googleServer(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	got, err := p.TranslateBatch(context.Background(), nil, "de", "en")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGoogleProvider_ContextCancelled(t *testing.T) {
	p := googleServer(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"translations":[{"translatedText":"house"}]}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.TranslateBatch(ctx, []string{"Haus"}, "de", "en")

	var providerErr *wordcache.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.ErrorIs(t, err, context.Canceled)
}
