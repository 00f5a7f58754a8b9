// Package snippet renders annotated source excerpts for diagnostics.
// A rendering shows the lines around a byte span with a numbered gutter
// and a highlight row aligned under the covered columns. The layout is
// byte-exact so external tooling can parse it.
package snippet

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"pinpoint/internal/source"
)

// DefaultTabWidth is the tab expansion used when Options.TabWidth is zero.
const DefaultTabWidth = 4

// Fixed marker characters of the output format.
const (
	caretFill = '^' // under the covered columns of the last (or only) line
	startFill = 'v' // over the covered columns of the first line of a multi-line span

	gutterPlain  = "| "
	gutterMarked = "|>"
)

// Options controls a rendering. TabWidth below 1 falls back to
// DefaultTabWidth; Context is the number of surrounding lines shown on
// each side of the span.
type Options struct {
	TabWidth uint32
	Context  uint32
}

// WriteLocation renders the unit span covering the byte at loc.
// loc must come from this buffer's index.
func WriteLocation(w io.Writer, content []byte, idx *source.LineIndex, loc source.Location, opts Options) error {
	off := idx.OffsetFor(loc)
	return WriteSpan(w, content, idx, source.Span{Start: off, End: off + 1}, opts)
}

// WriteSpan renders the lines covered by span plus opts.Context lines of
// surrounding context. An empty span is widened to the unit span at its
// start. span.End may reach one past the buffer length, which highlights
// the end-of-buffer boundary; anything further out of range panics.
//
// The rendering is pure: it touches no cursor state and writes only to w.
func WriteSpan(w io.Writer, content []byte, idx *source.LineIndex, span source.Span, opts Options) error {
	if span.Empty() {
		span.End = span.Start + 1
	}
	tab := opts.TabWidth
	if tab < 1 {
		tab = DefaultTabWidth
	}

	first := idx.LocationFor(span.Start).Line
	last := idx.LocationFor(span.End - 1).Line

	top := uint32(0)
	if first > opts.Context {
		top = first - opts.Context
	}
	bottom := last + opts.Context
	if bottom >= idx.LineCount() || bottom < last {
		bottom = idx.LineCount() - 1
	}

	r := renderer{
		w:       w,
		content: content,
		idx:     idx,
		span:    span,
		tab:     tab,
		gutterW: len(strconv.FormatUint(uint64(bottom)+1, 10)),
	}

	for line := top; line < first; line++ {
		if err := r.contentRow(line, false); err != nil {
			return err
		}
	}

	if first == last {
		if err := r.contentRow(first, false); err != nil {
			return err
		}
		if err := r.highlightRow(first, caretFill, false); err != nil {
			return err
		}
	} else {
		if err := r.highlightRow(first, startFill, false); err != nil {
			return err
		}
		if err := r.contentRow(first, false); err != nil {
			return err
		}
		for line := first + 1; line < last; line++ {
			if err := r.contentRow(line, true); err != nil {
				return err
			}
		}
		if err := r.contentRow(last, true); err != nil {
			return err
		}
		if err := r.highlightRow(last, caretFill, true); err != nil {
			return err
		}
	}

	for line := last + 1; line <= bottom; line++ {
		if err := r.contentRow(line, false); err != nil {
			return err
		}
	}
	return nil
}

type renderer struct {
	w       io.Writer
	content []byte
	idx     *source.LineIndex
	span    source.Span
	tab     uint32
	gutterW int

	row bytes.Buffer
}

func (r *renderer) gutter(line uint32, marked bool) {
	fmt.Fprintf(&r.row, "%*d", r.gutterW, line+1)
	if marked {
		r.row.WriteString(gutterMarked)
	} else {
		r.row.WriteString(gutterPlain)
	}
}

// contentRow emits one source line with tabs expanded and the terminator
// dropped.
func (r *renderer) contentRow(line uint32, marked bool) error {
	r.gutter(line, marked)
	ls := r.idx.LineSpan(line, false)
	for off := ls.Start; off < ls.End; off++ {
		if r.content[off] == '\t' {
			r.fill(' ')
		} else {
			r.row.WriteByte(r.content[off])
		}
	}
	return r.flushRow()
}

// highlightRow emits the marker row aligned under (or over) a line: every
// column covered by the span gets ch, every other column a blank. Tabs
// widen to the tab width with the column's own character so the row stays
// aligned with the expanded content. One extra column stands for the
// offset just past the line content, covering spans that reach the
// terminator or the end of the buffer.
func (r *renderer) highlightRow(line uint32, ch byte, marked bool) error {
	r.gutter(line, marked)
	ls := r.idx.LineSpan(line, false)
	for off := ls.Start; off < ls.End; off++ {
		c := byte(' ')
		if r.span.Contains(off) {
			c = ch
		}
		if r.content[off] == '\t' {
			r.fill(c)
		} else {
			r.row.WriteByte(c)
		}
	}
	if r.span.Contains(ls.End) {
		r.row.WriteByte(ch)
	} else {
		r.row.WriteByte(' ')
	}
	return r.flushRow()
}

func (r *renderer) fill(c byte) {
	for i := uint32(0); i < r.tab; i++ {
		r.row.WriteByte(c)
	}
}

// flushRow terminates the pending row with a single newline and writes it.
func (r *renderer) flushRow() error {
	r.row.WriteByte('\n')
	_, err := r.w.Write(r.row.Bytes())
	r.row.Reset()
	return err
}
