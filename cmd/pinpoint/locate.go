package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"pinpoint/internal/diagfmt"
	"pinpoint/internal/driver"
	"pinpoint/internal/scancache"
	"pinpoint/internal/snippet"
	"pinpoint/internal/source"
)

var locateCmd = &cobra.Command{
	Use:   "locate [flags] <file>",
	Short: "Convert between byte offsets and line:column positions",
	Long:  `Locate maps a byte offset to its line and column, or a 1-based line and column pair back to the byte offset`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLocate,
}

func init() {
	locateCmd.Flags().Int("offset", 0, "byte offset to resolve (0-based)")
	locateCmd.Flags().Int("line", 0, "line to resolve (1-based, requires --col)")
	locateCmd.Flags().Int("col", 0, "column to resolve (1-based, requires --line)")
	locateCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type locatePayload struct {
	Path   string `json:"path"`
	Offset uint32 `json:"offset"`
	Line   uint32 `json:"line"`
	Col    uint32 `json:"col"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	offset, err := cmd.Flags().GetInt("offset")
	if err != nil {
		return fmt.Errorf("failed to get offset flag: %w", err)
	}

	line, err := cmd.Flags().GetInt("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}

	col, err := cmd.Flags().GetInt("col")
	if err != nil {
		return fmt.Errorf("failed to get col flag: %w", err)
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

	byOffset := cmd.Flags().Changed("offset")
	byLocation := cmd.Flags().Changed("line") || cmd.Flags().Changed("col")
	if byOffset == byLocation {
		return fmt.Errorf("exactly one of --offset or --line/--col must be given")
	}
	if byLocation && (line < 1 || col < 1) {
		return fmt.Errorf("--line and --col are 1-based and required together")
	}

	settings, err := resolveRenderSettings(filepath.Dir(filePath))
	if err != nil {
		return err
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  showTimings,
	}
	if settings.Cache {
		cache, cacheErr := scancache.Open(cacheAppName)
		if cacheErr != nil {
			return fmt.Errorf("failed to open scan cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	res := driver.Load(filePath, opts)

	var (
		off      uint32
		loc      source.Location
		resolved bool
	)
	if res.Cursor != nil {
		idx := res.Cursor.Index()
		if byOffset {
			off, err = safecast.Conv[uint32](offset)
			if err != nil {
				return fmt.Errorf("--offset: %w", err)
			}
			if driver.ValidateOffset(res, off) {
				loc = idx.LocationFor(off)
				resolved = true
			}
		} else {
			var l32, c32 uint32
			if l32, err = safecast.Conv[uint32](line); err != nil {
				return fmt.Errorf("--line: %w", err)
			}
			if c32, err = safecast.Conv[uint32](col); err != nil {
				return fmt.Errorf("--col: %w", err)
			}
			loc = source.Location{Line: l32 - 1, Col: c32 - 1}
			if driver.ValidateLocation(res, loc) {
				off = idx.OffsetFor(loc)
				resolved = true
			}
		}
	}

	res.Finish(opts)

	useColor, err := resolveColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	// Failures and timing reports go to stderr so the answer stays clean
	// on stdout.
	if res.Bag.HasErrors() || (!quiet && res.Bag.Len() > 0) {
		popts := diagfmt.PrettyOpts{Color: useColor, Context: settings.Context, TabWidth: settings.TabWidth}
		if err := diagfmt.Pretty(os.Stderr, res.Bag, res.Cursor, res.Path, popts); err != nil {
			return err
		}
	}
	if !resolved {
		return silentExit(cmd)
	}

	payload := locatePayload{
		Path:   source.DisplayPath(filePath),
		Offset: off,
		Line:   loc.Line + 1,
		Col:    loc.Col + 1,
	}

	switch format {
	case "pretty":
		fmt.Fprintf(os.Stdout, "%s:%d:%d (offset %d)\n", payload.Path, payload.Line, payload.Col, payload.Offset)
		sopts := snippet.Options{TabWidth: settings.TabWidth, Context: settings.Context}
		return snippet.WriteLocation(os.Stdout, res.Cursor.Content(), res.Cursor.Index(), loc, sopts)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
