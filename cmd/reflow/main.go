package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"reflow/internal/config"
	"reflow/internal/ctxlog"
	"reflow/internal/rules"
	"reflow/internal/sources"
	"reflow/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:   "reflow",
		Short: "Resolve Sources.list manifests into ordered HDL file lists",
	}
	cfgPath string
	dbPath  string
	strict  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fail("%v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the snapshot database (SQLite)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Fail on malformed manifest statements")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(affectedCmd)
}

// fail prints the error in red and exits.
func fail(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.Red.Sprintf("✗ "+format, args...))
	os.Exit(1)
}

// loadConfig reads the configuration and applies the command line flags.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}
	if strict {
		cfg.Strict = true
	}
	return cfg
}

// newContext carries the logger configured by cfg.
func newContext(cfg *config.Config) context.Context {
	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return ctxlog.WithLogger(context.Background(), logger)
}

// newReader builds a reader with the observers shipped with reflow.
func newReader(cfg *config.Config, withLogger bool) *sources.Reader {
	reg := rules.NewRegistry()
	if err := reg.Register(rules.CommandFilePatterns, rules.CommandFiles); err != nil {
		fail("Failed to register rules: %v", err)
	}

	opts := []sources.Option{
		sources.WithPlatform(cfg.Platform),
		sources.WithSourcesFile(cfg.SourcesFile),
		sources.WithTabWidth(cfg.TabWidth),
		sources.WithStrict(cfg.Strict),
		sources.WithRules(reg),
	}
	if withLogger && cfg.LoggerInclude != "" {
		opts = append(opts, sources.WithLoggerInclude(cfg.LoggerInclude))
	}

	r, err := sources.NewReader(opts...)
	if err != nil {
		fail("Failed to create reader: %v", err)
	}
	return r
}

var openStore = func(path string) (storage.Store, error) {
	return storage.NewSQLiteStore(path)
}

// withStore runs fn on the snapshot database and closes it before
// returning, so callers may exit on the returned error.
func withStore(cfg *config.Config, fn func(storage.Store) error) error {
	store, err := openStore(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
