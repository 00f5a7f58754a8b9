package source

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// ErrTooLarge is returned when a buffer does not fit the uint32 offset space.
var ErrTooLarge = errors.New("source buffer too large")

// LineIndex is a precomputed table of line-start offsets for one immutable
// buffer. It answers offset to (line, col) queries in O(log n) and the
// reverse in O(1).
//
// offsets always holds LineCount()+1 entries: offsets[k] is the byte offset
// of the first byte of line k, and the last entry is the buffer length
// acting as a sentinel. Even an empty buffer has one (empty) line, so the
// table never has fewer than two entries.
type LineIndex struct {
	offsets []uint32
	size    uint32 // buffer length, equals offsets[len(offsets)-1]
	lines   uint32
	end     Location // location of offset size, one past the last byte
}

// NewLineIndex scans content once and builds its line index. A line ends on
// each '\n'; the byte after it starts the next line. The only failure mode
// is a buffer whose offsets would not fit uint32; nothing partially built
// escapes in that case.
func NewLineIndex(content []byte) (*LineIndex, error) {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrTooLarge, len(content), err)
	}
	offsets := make([]uint32, 1, 16)
	var end Location
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, uint32(i)+1)
			end.Line++
			end.Col = 0
		} else {
			end.Col++
		}
	}
	offsets = append(offsets, size)
	lines, err := safecast.Conv[uint32](len(offsets) - 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %d lines: %w", ErrTooLarge, len(offsets)-1, err)
	}
	return &LineIndex{offsets: offsets, size: size, lines: lines, end: end}, nil
}

// RestoreLineIndex rebuilds an index from a previously computed offset table
// without rescanning content. It reports false when the table does not match
// the buffer: wrong first entry, wrong sentinel, or a decreasing offset.
func RestoreLineIndex(content []byte, offsets []uint32) (*LineIndex, bool) {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return nil, false
	}
	if len(offsets) < 2 || offsets[0] != 0 || offsets[len(offsets)-1] != size {
		return nil, false
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, false
		}
	}
	lines, err := safecast.Conv[uint32](len(offsets) - 1)
	if err != nil {
		return nil, false
	}
	last := offsets[lines-1]
	return &LineIndex{
		offsets: offsets,
		size:    size,
		lines:   lines,
		end:     Location{Line: lines - 1, Col: size - last},
	}, true
}

// Len returns the buffer length in bytes.
func (x *LineIndex) Len() uint32 {
	return x.size
}

// LineCount returns the number of lines, at least 1 even for an empty
// buffer. A buffer ending in '\n' has one more (empty) line after it.
func (x *LineIndex) LineCount() uint32 {
	return x.lines
}

// EndLocation returns the location of the end-of-buffer position, i.e. the
// location a cursor reaches after reading every byte.
func (x *LineIndex) EndLocation() Location {
	return x.end
}

// Offsets exposes the raw line-start table, including the length sentinel.
// Callers must not modify it.
func (x *LineIndex) Offsets() []uint32 {
	return x.offsets
}

// LineSpan returns the byte range of a line. With keepTerminator the range
// includes the trailing '\n' when the line has one; without it the range is
// the line content only. The final line never has a terminator.
// line must be < LineCount().
func (x *LineIndex) LineSpan(line uint32, keepTerminator bool) Span {
	if line >= x.lines {
		panic(fmt.Sprintf("source: line %d out of range, have %d lines", line, x.lines))
	}
	sp := Span{Start: x.offsets[line], End: x.offsets[line+1]}
	if !keepTerminator && line+1 < x.lines {
		sp.End--
	}
	return sp
}

// LocationFor converts a byte offset into its (line, col). Offset size is
// valid and maps to EndLocation; anything past that panics.
func (x *LineIndex) LocationFor(off uint32) Location {
	if off > x.size {
		panic(fmt.Sprintf("source: offset %d out of range, buffer is %d bytes", off, x.size))
	}
	if off == x.size {
		return x.end
	}
	// Greatest line with offsets[line] <= off. The loop keeps
	// offsets[lo] <= off < offsets[hi].
	lo, hi := 0, len(x.offsets)-1
	for lo+1 < hi {
		mid := (lo + hi) >> 1
		if x.offsets[mid] <= off {
			lo = mid
		} else {
			hi = mid
		}
	}
	return Location{Line: uint32(lo), Col: off - x.offsets[lo]}
}

// OffsetFor is the inverse of LocationFor for locations that came from this
// buffer. It does not validate Col; a column past the end of the line yields
// an offset on some later line. Line must be < LineCount().
func (x *LineIndex) OffsetFor(loc Location) uint32 {
	return x.offsets[loc.Line] + loc.Col
}
