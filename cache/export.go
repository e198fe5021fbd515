package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZaguanLabs/wordcache"
)

// ExportVersion is the version written to export files.
const ExportVersion = "1.0"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cache entry.
type ExportEntry struct {
	SourceText     string `json:"source_text"`
	StudyLang      string `json:"study_lang"`
	NativeLang     string `json:"native_lang"`
	TranslatedText string `json:"translated_text"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// Exporter provides cache export functionality.
type Exporter struct {
	store Lister
}

// NewExporter creates a new cache exporter.
func NewExporter(store Lister) *Exporter {
	return &Exporter{store: store}
}

// Export writes the store contents to w as indented JSON.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) (int, error) {
	entries, err := e.store.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting cache entries: %w", err)
	}

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(entries)),
		Metadata:   metadata,
	}
	for _, entry := range entries {
		exported := ExportEntry{
			SourceText:     entry.Key.SourceText,
			StudyLang:      entry.Key.StudyLang,
			NativeLang:     entry.Key.NativeLang,
			TranslatedText: entry.TranslatedText,
		}
		if !entry.CreatedAt.IsZero() {
			exported.CreatedAt = entry.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		export.Entries = append(export.Entries, exported)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}

	return len(export.Entries), nil
}

// ExportToFile exports the store to a file.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, metadata)
}

// Importer provides cache import functionality.
type Importer struct {
	store Store
}

// NewImporter creates a new cache importer.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads entries from r and upserts them into the store. Entries with
// an incomplete key are counted as failed; a storage error stops the import.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if entry.SourceText == "" || entry.StudyLang == "" || entry.NativeLang == "" {
			result.Failed++
			continue
		}
		key := wordcache.NewKey(entry.SourceText, entry.StudyLang, entry.NativeLang)
		if err := i.store.Put(ctx, key, entry.TranslatedText); err != nil {
			return result, err
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}
