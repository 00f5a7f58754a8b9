package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"pinpoint/internal/diag"
	"pinpoint/internal/snippet"
	"pinpoint/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
)

// Pretty renders diagnostics in a human-readable form. It walks
// bag.Items() in order (callers sort the bag first) and prints for each
// diagnostic
//
//	<path>:<line>:<col>: <SEVERITY> <CODE>: <message>
//
// followed by an annotated excerpt of the covered source lines, then the
// notes in the same shape. cur may be nil when the buffer could not be
// loaded; positions then degrade to 1:1 and excerpts are skipped.
func Pretty(w io.Writer, bag *diag.Bag, cur *source.Cursor, path string, opts PrettyOpts) error {
	displayPath := source.DisplayPath(path)
	sopts := snippet.Options{TabWidth: opts.TabWidth, Context: opts.Context}
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, cur, displayPath, sopts, opts); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, cur *source.Cursor, path string, sopts snippet.Options, opts PrettyOpts) error {
	loc := clampLocation(cur, d.Primary.Start)
	_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		path, loc.Line+1, loc.Col+1, severityTag(d.Severity, opts.Color), d.Code.ID(), d.Message)
	if err != nil {
		return err
	}
	if cur != nil {
		if err := snippet.WriteSpan(w, cur.Content(), cur.Index(), clampSpan(cur, d.Primary), sopts); err != nil {
			return err
		}
	}
	if !opts.ShowNotes {
		return nil
	}
	for _, n := range d.Notes {
		nloc := clampLocation(cur, n.Span.Start)
		if _, err := fmt.Fprintf(w, "note: %s:%d:%d: %s\n", path, nloc.Line+1, nloc.Col+1, n.Msg); err != nil {
			return err
		}
		if cur != nil {
			if err := snippet.WriteSpan(w, cur.Content(), cur.Index(), clampSpan(cur, n.Span), sopts); err != nil {
				return err
			}
		}
	}
	return nil
}

// severityTag returns the upper-case severity name, colorized when asked.
func severityTag(sev diag.Severity, colorize bool) string {
	tag := sev.String()
	if !colorize {
		return tag
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(tag)
	case diag.SevWarning:
		return warningColor.Sprint(tag)
	default:
		return infoColor.Sprint(tag)
	}
}

// clampLocation resolves a byte offset through the cursor's index,
// clamping out-of-range offsets to the end of the buffer. A nil cursor
// yields the zero location.
func clampLocation(cur *source.Cursor, off uint32) source.Location {
	if cur == nil {
		return source.Location{}
	}
	if off > cur.Len() {
		return cur.EndLocation()
	}
	return cur.Index().LocationFor(off)
}

// clampSpan trims a span to what the excerpt renderer accepts: Start
// within the buffer and End at most one past it. A span that degenerates
// after trimming collapses to the unit span at its clamped start.
func clampSpan(cur *source.Cursor, sp source.Span) source.Span {
	size := cur.Len()
	if sp.Start > size {
		sp.Start = size
	}
	if sp.End > size+1 {
		sp.End = size + 1
	}
	if sp.End <= sp.Start {
		sp.End = sp.Start + 1
	}
	return sp
}
