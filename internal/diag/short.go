package diag

import (
	"fmt"
	"sort"
	"strings"

	"pinpoint/internal/source"
)

type shortEntry struct {
	Severity string
	Code     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics into a stable, single-line-per-entry
// representation suitable for CLI short output and golden files. Positions
// are resolved through idx and displayed 1-based; entries are sorted
// deterministically and returned as a single string without trailing
// newline (empty when there is nothing to show).
func FormatShort(diags []Diagnostic, path string, idx *source.LineIndex, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	displayPath := source.DisplayPath(path)

	rendered := make([]shortEntry, 0, len(diags))
	for _, d := range diags {
		loc := safeLocate(idx, d.Primary.Start)
		rendered = append(rendered, shortEntry{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Line:     loc.Line + 1,
			Column:   loc.Col + 1,
			Message:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			nloc := safeLocate(idx, note.Span.Start)
			rendered = append(rendered, shortEntry{
				Severity: "note",
				Code:     d.Code.ID(),
				Line:     nloc.Line + 1,
				Column:   nloc.Col + 1,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, e := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", e.Severity, e.Code, displayPath, e.Line, e.Column, e.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// safeLocate clamps out-of-range offsets and tolerates a missing index so
// that formatting malformed diagnostics never trips the index contract.
func safeLocate(idx *source.LineIndex, off uint32) source.Location {
	if idx == nil {
		return source.Location{}
	}
	if off > idx.Len() {
		return idx.EndLocation()
	}
	return idx.LocationFor(off)
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
