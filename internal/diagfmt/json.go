package diagfmt

import (
	"encoding/json"
	"io"

	"pinpoint/internal/diag"
	"pinpoint/internal/source"
)

// LocationJSON carries the position of a span in machine-readable output.
// Byte offsets are always present; line/col fields are 1-based and appear
// only when JSONOpts.IncludePositions is set.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a secondary message attached to a diagnostic.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one diagnostic in machine-readable output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON diagnostics document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(cur *source.Cursor, path string, span source.Span, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      path,
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		start := clampLocation(cur, span.Start)
		end := clampLocation(cur, span.End)
		loc.StartLine = start.Line + 1
		loc.StartCol = start.Col + 1
		loc.EndLine = end.Line + 1
		loc.EndCol = end.Col + 1
	}
	return loc
}

// BuildDiagnosticsOutput assembles the JSON document without serializing
// it. Truncation via opts.Max applies to the output only and leaves the
// bag untouched. cur may be nil; positions then degrade to 1:1.
func BuildDiagnosticsOutput(bag *diag.Bag, cur *source.Cursor, path string, opts JSONOpts) DiagnosticsOutput {
	displayPath := source.DisplayPath(path)

	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := 0; i < maxItems; i++ {
		d := items[i]

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(cur, displayPath, d.Primary, opts.IncludePositions),
		}

		includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
		if includeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(cur, displayPath, note.Span, opts.IncludePositions),
				}
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes the diagnostics of a bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, cur *source.Cursor, path string, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, cur, path, opts)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
