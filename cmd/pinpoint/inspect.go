package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pinpoint/internal/diagfmt"
	"pinpoint/internal/driver"
	"pinpoint/internal/observ"
	"pinpoint/internal/scancache"
	"pinpoint/internal/source"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <file|directory>",
	Short: "Show line index statistics",
	Long:  `Inspect indexes a file or every matching file in a directory and prints size, line count and end position for each`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("pattern", "*", "file name pattern for directory walks")
	inspectCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	inspectCmd.Flags().Bool("scan-cache", false, "enable the persistent line-index cache")
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	pattern, err := cmd.Flags().GetString("pattern")
	if err != nil {
		return fmt.Errorf("failed to get pattern flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	scanCache, err := cmd.Flags().GetBool("scan-cache")
	if err != nil {
		return fmt.Errorf("failed to get scan-cache flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	st, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	startDir := filePath
	if !st.IsDir() {
		startDir = filepath.Dir(filePath)
	}
	settings, err := resolveRenderSettings(startDir)
	if err != nil {
		return err
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  showTimings,
	}
	if scanCache || settings.Cache {
		cache, cacheErr := scancache.Open(cacheAppName)
		if cacheErr != nil {
			return fmt.Errorf("failed to open scan cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	useColor, err := resolveColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	popts := diagfmt.PrettyOpts{Color: useColor, Context: settings.Context, TabWidth: settings.TabWidth}

	var entries []diagfmt.InspectEntry
	hadErrors := false

	if st.IsDir() {
		tm := observ.NewTimer()
		done := tm.Track("index")
		results, dirErr := driver.IndexDir(cmd.Context(), filePath, pattern, jobs, opts)
		if dirErr != nil {
			return fmt.Errorf("indexing failed: %w", dirErr)
		}
		done(fmt.Sprintf("%d files", len(results)))

		var zero scancache.Digest
		for _, r := range results {
			if r.Bag.HasErrors() {
				hadErrors = true
			}
			if r.Bag.HasErrors() || (!quiet && r.Bag.Len() > 0) {
				// No cursor survives the walk, so these render header-only.
				if err := diagfmt.Pretty(os.Stderr, r.Bag, nil, r.Path, popts); err != nil {
					return err
				}
			}
			// An indexed buffer always has at least one line; zero means
			// the load failed and was reported above.
			if r.Stats.Lines == 0 {
				continue
			}
			hash := ""
			if r.Hash != zero {
				hash = r.Hash.Hex()
			}
			entries = append(entries, diagfmt.InspectEntry{
				Path:    source.DisplayPath(r.Path),
				Size:    r.Stats.Size,
				Lines:   r.Stats.Lines,
				EndLine: r.Stats.EndLine,
				EndCol:  r.Stats.EndCol,
				Hash:    hash,
				Flags:   r.Flags.Strings(),
			})
		}
		if showTimings && !quiet {
			fmt.Fprint(os.Stderr, tm.Summary())
		}
	} else {
		res := driver.Load(filePath, opts)
		res.Finish(opts)
		if res.Bag.HasErrors() {
			hadErrors = true
		}
		if res.Bag.HasErrors() || (!quiet && res.Bag.Len() > 0) {
			if err := diagfmt.Pretty(os.Stderr, res.Bag, res.Cursor, res.Path, popts); err != nil {
				return err
			}
		}
		if stats, ok := res.Stats(); ok {
			entries = append(entries, diagfmt.InspectEntry{
				Path:    source.DisplayPath(res.Path),
				Size:    stats.Size,
				Lines:   stats.Lines,
				EndLine: stats.EndLine,
				EndCol:  stats.EndCol,
				Hash:    res.Hash.Hex(),
				Flags:   res.Flags.Strings(),
			})
		}
	}

	switch format {
	case "pretty":
		if err := diagfmt.FormatInspectPretty(os.Stdout, entries); err != nil {
			return err
		}
	case "json":
		if err := diagfmt.FormatInspectJSON(os.Stdout, entries); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if hadErrors {
		return silentExit(cmd)
	}
	return nil
}
