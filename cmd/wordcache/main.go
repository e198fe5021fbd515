// Command wordcache translates vocabulary lists through a persistent
// translation cache.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/wordcache"
	"github.com/ZaguanLabs/wordcache/cache"
	"github.com/ZaguanLabs/wordcache/internal/config"
	"github.com/ZaguanLabs/wordcache/internal/logging"
	"github.com/ZaguanLabs/wordcache/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = wordcache.Version
	commit    = wordcache.GitCommit
	buildDate = wordcache.BuildDate
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// flagKeys maps command-line flags to configuration keys. A flag overrides
// the file and environment only when it is set.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"store":      "store.driver",
	"db":         "store.path",
	"provider":   "provider.name",
	"study":      "gateway.study_lang",
	"native":     "gateway.native_lang",
	"batch-size": "gateway.batch_size",
	"dedup":      "gateway.dedup",
}

// app carries the state shared by subcommands once configuration is loaded.
type app struct {
	configFile string
	stdout     io.Writer
	stderr     io.Writer

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           wordcache.Name,
		Short:         wordcache.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is ./wordcache.yaml or $HOME/.config/wordcache/wordcache.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("store", "", "cache backend: sqlite, mysql, postgres, redis, memory")
	pf.String("db", "", "SQLite database file")
	pf.String("provider", "", "translation provider: google, openai, mock")

	root.AddCommand(
		newTranslateCommand(a),
		newLookupCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newVersionCommand(a),
	)
	return root
}

// load reads configuration for cmd and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	loader, err := config.NewLoader(a.configFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := loader.BindFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.With(zap.String("cmd", cmd.Name()))
	if used := loader.ConfigFileUsed(); used != "" {
		a.logger.Debug("configuration loaded", zap.String("file", used))
	}
	return nil
}

// openStore opens the configured cache backend. Callers close it.
func (a *app) openStore(ctx context.Context) (cache.ClosableStore, error) {
	store, err := cache.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.cfg.Store.Driver, err)
	}
	return store, nil
}

func (a *app) newGateway(store wordcache.CacheStore) (*wordcache.Gateway, error) {
	p, err := provider.New(a.cfg.Provider, a.logger.Named("provider"))
	if err != nil {
		return nil, err
	}
	return wordcache.NewGateway(store, p, a.cfg.Gateway.GatewayOptions(),
		wordcache.WithLogger(a.logger.Named("gateway")))
}

// langPair resolves the language pair for commands that need both codes.
func (a *app) langPair() (string, string, error) {
	study, native := a.cfg.Gateway.StudyLang, a.cfg.Gateway.NativeLang
	if study == "" || native == "" {
		return "", "", fmt.Errorf("--study and --native are required (or gateway.study_lang and gateway.native_lang)")
	}
	return study, native, nil
}
