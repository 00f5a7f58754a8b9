package testkit

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"pinpoint/internal/source"
)

// CheckIndexInvariants runs the structural invariants of a line index
// against the content it was built from:
// 1) the offset table starts at zero, ends with the length sentinel, and
//    every interior entry sits one byte after a '\n'
// 2) LineCount matches both the table and the terminator count
// 3) OffsetFor and LocationFor are inverses at every line boundary, and
//    the end-of-buffer position maps to EndLocation
func CheckIndexInvariants(content []byte, idx *source.LineIndex) error {
	if idx == nil {
		return fmt.Errorf("nil index")
	}
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	if idx.Len() != size {
		return fmt.Errorf("index length %d does not match content length %d", idx.Len(), size)
	}

	offsets := idx.Offsets()
	if len(offsets) < 2 {
		return fmt.Errorf("offset table has %d entries, want at least 2", len(offsets))
	}
	if offsets[0] != 0 {
		return fmt.Errorf("offset table starts at %d, want 0", offsets[0])
	}
	if offsets[len(offsets)-1] != size {
		return fmt.Errorf("offset sentinel is %d, want %d", offsets[len(offsets)-1], size)
	}
	lineCount, err := safecast.Conv[uint32](len(offsets) - 1)
	if err != nil {
		return fmt.Errorf("line count overflow: %w", err)
	}
	if idx.LineCount() != lineCount {
		return fmt.Errorf("LineCount is %d, offset table implies %d", idx.LineCount(), lineCount)
	}
	if want := uint32(bytes.Count(content, []byte{'\n'})) + 1; idx.LineCount() != want {
		return fmt.Errorf("LineCount is %d, content has %d lines", idx.LineCount(), want)
	}

	for i := 1; i < len(offsets)-1; i++ {
		if offsets[i] <= offsets[i-1] {
			return fmt.Errorf("offset table not increasing at entry %d: %d after %d", i, offsets[i], offsets[i-1])
		}
		if content[offsets[i]-1] != '\n' {
			return fmt.Errorf("line %d does not start after a terminator (offset %d)", i, offsets[i])
		}
	}

	for line := uint32(0); line < idx.LineCount(); line++ {
		sp := idx.LineSpan(line, false)
		if sp.Start != offsets[line] {
			return fmt.Errorf("line %d span starts at %d, table says %d", line, sp.Start, offsets[line])
		}
		start := source.Location{Line: line, Col: 0}
		if got := idx.LocationFor(idx.OffsetFor(start)); got != start {
			return fmt.Errorf("round trip at start of line %d gave %s", line, got)
		}
		end := source.Location{Line: line, Col: sp.Len()}
		if got := idx.LocationFor(idx.OffsetFor(end)); got != end {
			return fmt.Errorf("round trip at end of line %d gave %s", line, got)
		}
	}

	if got := idx.LocationFor(size); got != idx.EndLocation() {
		return fmt.Errorf("offset %d maps to %s, EndLocation is %s", size, got, idx.EndLocation())
	}
	return nil
}
