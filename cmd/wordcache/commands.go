package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/wordcache"
	"github.com/ZaguanLabs/wordcache/cache"
	"github.com/ZaguanLabs/wordcache/internal/wordlist"
)

func addLangFlags(cmd *cobra.Command) {
	cmd.Flags().String("study", "", "language being studied (source), e.g. de")
	cmd.Flags().String("native", "", "learner's native language (target), e.g. en")
}

func newTranslateCommand(a *app) *cobra.Command {
	var (
		file     string
		selector string
		jsonOut  bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "translate [words...]",
		Short: "Translate words, reading the cache first",
		Long: `Translate words given as arguments or read from --file.

Plain-text files hold one word per line. HTML files contribute every visible
word, or the text of each element matching --selector.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			words := append([]string(nil), args...)
			if file != "" {
				fromFile, err := wordlist.ReadFile(file, selector)
				if err != nil {
					return err
				}
				words = append(words, fromFile...)
			}
			if len(words) == 0 {
				return errors.New("no words given (pass words as arguments or use --file)")
			}

			study, native, err := a.langPair()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			gw, err := a.newGateway(store)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := gw.TranslateDetailed(ctx, words, study, native)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			elapsed := time.Since(start)

			if jsonOut {
				return outputJSON(a.stdout, words, study, native, result, elapsed)
			}
			printTranslations(a.stdout, words, result.Translations)

			if !quiet {
				fmt.Fprintf(a.stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
				fmt.Fprintf(a.stderr, "  Words:        %d\n", len(words))
				fmt.Fprintf(a.stderr, "  From cache:   %d\n", result.CachedCount)
				fmt.Fprintf(a.stderr, "  Translated:   %d\n", result.TranslatedCount)
				fmt.Fprintf(a.stderr, "  API calls:    %d\n", result.ProviderCalls)
			}
			return nil
		},
	}

	addLangFlags(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "read words from a text or HTML file")
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector for entries in an HTML file")
	cmd.Flags().Int("batch-size", 0, "words per provider call (default 50)")
	cmd.Flags().Bool("dedup", false, "send repeated words to the provider once")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress statistics")
	return cmd
}

func newLookupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Show a cached translation without calling the provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			study, native, err := a.langPair()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			key := wordcache.NewKey(args[0], study, native)
			text, ok, err := store.Get(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%q is not cached for %s -> %s", args[0], study, native)
			}
			fmt.Fprintln(a.stdout, text)
			return nil
		},
	}
	addLangFlags(cmd)
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every cached translation as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			lister, ok := store.(cache.Lister)
			if !ok {
				return fmt.Errorf("the %s store cannot list entries", a.cfg.Store.Driver)
			}

			exporter := cache.NewExporter(lister)
			metadata := map[string]string{
				"tool":  wordcache.Name + " " + wordcache.FullVersion(),
				"store": a.cfg.Store.Driver,
			}

			var n int
			if out == "" {
				n, err = exporter.Export(ctx, a.stdout, metadata)
			} else {
				n, err = exporter.ExportToFile(ctx, out, metadata)
			}
			if err != nil {
				return err
			}
			a.logger.Info("cache exported", zap.Int("entries", n), zap.String("out", out))
			if out != "" {
				fmt.Fprintf(a.stderr, "Exported %d entries to %s\n", n, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load translations from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := cache.NewImporter(store).ImportFromFile(ctx, args[0])
			if err != nil {
				if result != nil {
					return fmt.Errorf("import stopped after %d entries: %w", result.Imported, err)
				}
				return err
			}
			fmt.Fprintf(a.stdout, "Imported %d entries (%d skipped)\n", result.Imported, result.Failed)
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version output must not depend on a readable config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", wordcache.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
			fmt.Fprintf(a.stdout, "  source:  %s\n", wordcache.Repository)
		},
	}
}

// printTranslations writes one tab-separated line per distinct word, in input
// order.
func printTranslations(w io.Writer, words []string, translations map[string]string) {
	seen := make(map[string]bool, len(words))
	for _, word := range words {
		if seen[word] {
			continue
		}
		seen[word] = true
		fmt.Fprintf(w, "%s\t%s\n", word, translations[word])
	}
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	StudyLang       string            `json:"study_lang"`
	NativeLang      string            `json:"native_lang"`
	Words           int               `json:"words"`
	Translations    map[string]string `json:"translations"`
	CachedCount     int               `json:"cached_count"`
	TranslatedCount int               `json:"translated_count"`
	ProviderCalls   int               `json:"provider_calls"`
	ElapsedMs       int64             `json:"elapsed_ms"`
}

// outputJSON writes the result as JSON.
func outputJSON(w io.Writer, words []string, study, native string, result *wordcache.Result, elapsed time.Duration) error {
	out := JSONOutput{
		StudyLang:       study,
		NativeLang:      native,
		Words:           len(words),
		Translations:    result.Translations,
		CachedCount:     result.CachedCount,
		TranslatedCount: result.TranslatedCount,
		ProviderCalls:   result.ProviderCalls,
		ElapsedMs:       elapsed.Milliseconds(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
