package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"pinpoint/internal/diag"
	"pinpoint/internal/diagfmt"
	"pinpoint/internal/driver"
	"pinpoint/internal/scancache"
	"pinpoint/internal/source"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [flags] <file>",
	Short: "Render a diagnostic for a byte span",
	Long:  `Annotate marks a byte span in a file and renders it as a diagnostic with a source snippet`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

func init() {
	annotateCmd.Flags().Int("start", 0, "span start byte (0-based, inclusive)")
	annotateCmd.Flags().Int("end", 0, "span end byte (0-based, exclusive)")
	annotateCmd.Flags().String("message", "annotated span", "diagnostic message")
	annotateCmd.Flags().String("severity", "error", "severity (error|warning|info)")
	annotateCmd.Flags().StringArray("note", nil, "attach a note as start:end:message (repeatable)")
	annotateCmd.Flags().Int("context", 2, "surrounding lines shown in the snippet")
	annotateCmd.Flags().Int("tab", 0, "tab width for column alignment (0 = renderer default)")
	annotateCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	annotateCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	annotateCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	start, err := cmd.Flags().GetInt("start")
	if err != nil {
		return fmt.Errorf("failed to get start flag: %w", err)
	}

	end, err := cmd.Flags().GetInt("end")
	if err != nil {
		return fmt.Errorf("failed to get end flag: %w", err)
	}

	message, err := cmd.Flags().GetString("message")
	if err != nil {
		return fmt.Errorf("failed to get message flag: %w", err)
	}

	severityStr, err := cmd.Flags().GetString("severity")
	if err != nil {
		return fmt.Errorf("failed to get severity flag: %w", err)
	}

	noteSpecs, err := cmd.Flags().GetStringArray("note")
	if err != nil {
		return fmt.Errorf("failed to get note flag: %w", err)
	}

	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	tabWidth, err := cmd.Flags().GetInt("tab")
	if err != nil {
		return fmt.Errorf("failed to get tab flag: %w", err)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	sev, err := readSeverity(severityStr)
	if err != nil {
		return err
	}

	notes := make([]noteSpec, 0, len(noteSpecs))
	for _, spec := range noteSpecs {
		parsed, parseErr := parseNoteSpec(spec)
		if parseErr != nil {
			return parseErr
		}
		notes = append(notes, parsed)
	}

	settings, err := resolveRenderSettings(filepath.Dir(filePath))
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("context") {
		if settings.Context, err = safecast.Conv[uint32](contextLines); err != nil {
			return fmt.Errorf("--context: %w", err)
		}
	}
	if cmd.Flags().Changed("tab") {
		if settings.TabWidth, err = safecast.Conv[uint32](tabWidth); err != nil {
			return fmt.Errorf("--tab: %w", err)
		}
	}

	opts := driver.Options{
		MaxDiagnostics:   maxDiagnostics,
		IgnoreWarnings:   noWarnings,
		WarningsAsErrors: warningsAsErrors,
		EnableTimings:    showTimings,
	}
	if settings.Cache {
		cache, cacheErr := scancache.Open(cacheAppName)
		if cacheErr != nil {
			return fmt.Errorf("failed to open scan cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	res := driver.Load(filePath, opts)
	if res.Cursor != nil {
		start32, convErr := safecast.Conv[uint32](start)
		if convErr != nil {
			return fmt.Errorf("--start: %w", convErr)
		}
		end32, convErr := safecast.Conv[uint32](end)
		if convErr != nil {
			return fmt.Errorf("--end: %w", convErr)
		}
		span := source.Span{Start: start32, End: end32}
		if driver.ValidateSpan(res, span) {
			d := diag.New(sev, diag.UserAnnotation, span, message)
			for _, note := range notes {
				if driver.ValidateSpan(res, note.Span) {
					d = d.WithNote(note.Span, note.Message)
				}
			}
			res.Bag.Add(d)
		}
	}
	res.Finish(opts)

	useColor, err := resolveColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	showNotes := len(notes) > 0

	switch format {
	case "pretty":
		popts := diagfmt.PrettyOpts{
			Color:     useColor,
			Context:   settings.Context,
			TabWidth:  settings.TabWidth,
			ShowNotes: showNotes,
		}
		if err := diagfmt.Pretty(os.Stdout, res.Bag, res.Cursor, res.Path, popts); err != nil {
			return err
		}
	case "short":
		var idx *source.LineIndex
		if res.Cursor != nil {
			idx = res.Cursor.Index()
		}
		output := diag.FormatShort(res.Bag.Items(), res.Path, idx, showNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     showNotes,
		}
		if err := diagfmt.JSON(os.Stdout, res.Bag, res.Cursor, res.Path, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if res.Bag.HasErrors() {
		return silentExit(cmd)
	}
	return nil
}

type noteSpec struct {
	Span    source.Span
	Message string
}

// parseNoteSpec splits a --note value of the form start:end:message. The
// message part may itself contain colons.
func parseNoteSpec(spec string) (noteSpec, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return noteSpec{}, fmt.Errorf("invalid --note %q (expected start:end:message)", spec)
	}
	noteStart, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return noteSpec{}, fmt.Errorf("invalid --note start in %q: %w", spec, err)
	}
	noteEnd, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return noteSpec{}, fmt.Errorf("invalid --note end in %q: %w", spec, err)
	}
	return noteSpec{
		Span:    source.Span{Start: uint32(noteStart), End: uint32(noteEnd)},
		Message: parts[2],
	}, nil
}

func readSeverity(value string) (diag.Severity, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "error":
		return diag.SevError, nil
	case "warning":
		return diag.SevWarning, nil
	case "info":
		return diag.SevInfo, nil
	default:
		return diag.SevInfo, fmt.Errorf("invalid --severity value %q (expected error|warning|info)", value)
	}
}
