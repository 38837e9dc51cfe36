package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"reflow/internal/analysis"
	"reflow/internal/crawler"
	"reflow/internal/export"
	"reflow/internal/git"
	"reflow/internal/index"
	"reflow/internal/schema"
	"reflow/internal/sources"
	"reflow/internal/storage"
)

var (
	jsonOutput bool
	noLogger   bool
	saveOutput bool
	format     string
	reportPath string
	sinceRef   string
)

func init() {
	resolveCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the output as JSON")
	resolveCmd.Flags().BoolVar(&noLogger, "no-logger", false, "Do not prepend the logger include file")
	resolveCmd.Flags().BoolVar(&saveOutput, "save", false, "Store the output in the snapshot database")

	graphCmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree, mermaid or dot")

	scanCmd.Flags().StringVarP(&reportPath, "out", "o", "", "Also write the scan report to a JSON file")

	affectedCmd.Flags().StringVar(&sinceRef, "since", "", "Use the files changed since this git revision")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Print the ordered file list and parameters of a manifest",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := newContext(cfg)

		res, err := newReader(cfg, !noLogger).Read(ctx, pathArg(args))
		if err != nil {
			fail("%v", err)
		}
		out, err := res.Output()
		if err != nil {
			fail("%v", err)
		}

		if saveOutput {
			err := withStore(cfg, func(store storage.Store) error {
				if err := store.SaveOutput(ctx, out); err != nil {
					return fmt.Errorf("failed to save snapshot: %w", err)
				}
				return nil
			})
			if err != nil {
				fail("%v", err)
			}
		}

		if jsonOutput {
			if err := schema.Validate(schema.Output, out); err != nil {
				fail("%v", err)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				fail("%v", err)
			}
			return
		}
		printOutput(out)
	},
}

// printOutput writes "path;MIME" lines followed by "NAME\t:\tvalues" lines.
func printOutput(out *sources.Output) {
	for _, f := range out.Files {
		fmt.Printf("%s;%s\n", f.Path, f.Mime)
	}
	names := make([]string, 0, len(out.Params))
	for name := range out.Params {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("%s\t:\t%s\n", name, strings.Join(out.Params[name], " "))
	}
}

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Render the dependency graph of a manifest",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		res, err := newReader(cfg, false).Read(newContext(cfg), pathArg(args))
		if err != nil {
			fail("%v", err)
		}

		switch format {
		case "tree":
			err = export.Tree(os.Stdout, res.Root)
		case "mermaid":
			err = export.Mermaid(os.Stdout, res.Order)
		case "dot":
			err = export.DOT(os.Stdout, res.Order)
		default:
			fail("Unknown format %q", format)
		}
		if err != nil {
			fail("%v", err)
		}
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Resolve every manifest below root and store the snapshots",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := newContext(cfg)

		root, err := filepath.Abs(pathArg(args))
		if err != nil {
			fail("Failed to get directory: %v", err)
		}
		fmt.Printf("📂 Scanning directory: %s\n", root)

		reader := newReader(cfg, true)
		var (
			idx    *index.Indexer
			report *index.Report
		)
		start := time.Now()
		err = withStore(cfg, func(store storage.Store) (err error) {
			idx = index.NewIndexer(crawler.NewCrawler(cfg.SourcesFile), reader, store)
			report, err = idx.IndexProject(ctx, root)
			return err
		})
		if err != nil {
			fail("Scan failed: %v", err)
		}

		for _, f := range report.Failures {
			fmt.Println(color.Yellow.Sprintf("⚠️  %s: %s", f.Manifest, f.Err))
		}
		fmt.Println(color.Green.Sprintf("✅ Resolved %d manifests in %v.", len(report.Outputs), time.Since(start)))

		if reportPath != "" {
			if err := idx.SaveReport(report, reportPath); err != nil {
				fail("%v", err)
			}
			fmt.Printf("💾 Report written to %s\n", reportPath)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <manifest>",
	Short: "Print a stored snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := newContext(cfg)

		manifest, err := filepath.Abs(args[0])
		if err != nil {
			fail("%v", err)
		}
		if info, err := os.Stat(manifest); err == nil && info.IsDir() {
			manifest = filepath.Join(manifest, cfg.SourcesFile)
		}

		var out *sources.Output
		err = withStore(cfg, func(store storage.Store) (err error) {
			out, err = store.LoadOutput(ctx, manifest)
			return err
		})
		if err != nil {
			fail("%v", err)
		}
		printOutput(out)
	},
}

var affectedCmd = &cobra.Command{
	Use:   "affected [file...]",
	Short: "List the stored manifests using the given files",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := newContext(cfg)

		changes := args
		if sinceRef != "" {
			wd, err := os.Getwd()
			if err != nil {
				fail("%v", err)
			}
			changed, err := git.ChangedFiles(ctx, wd, sinceRef)
			if err != nil {
				fail("%v", err)
			}
			changes = append(changes, changed...)
		}
		if len(changes) == 0 {
			fail("No changed files given")
		}

		var report *analysis.ImpactReport
		err := withStore(cfg, func(store storage.Store) (err error) {
			report, err = analysis.NewAnalyzer(store).AnalyzeImpact(ctx, changes)
			return err
		})
		if err != nil {
			fail("Impact analysis failed: %v", err)
		}

		for _, m := range report.Affected {
			fmt.Println(m)
		}
		for _, path := range report.Untracked {
			fmt.Fprintln(os.Stderr, color.Yellow.Sprintf("⚠️  %s is not used by any stored manifest", path))
		}
	},
}
