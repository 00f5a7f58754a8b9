package driver

import (
	"fmt"

	"pinpoint/internal/diag"
	"pinpoint/internal/source"
)

// ValidateSpan checks a user-supplied byte span against the buffer and
// reports BadSpan when it is inverted or out of range. The diagnostic
// points at the in-range part of what the user meant, so the rendering
// still shows something useful. Returns true when the span is usable.
func ValidateSpan(res *Result, sp source.Span) bool {
	if res.Cursor == nil {
		return false
	}
	size := res.Cursor.Len()
	if sp.Start <= sp.End && sp.End <= size {
		return true
	}

	anchor := sp
	if anchor.Start > size {
		anchor.Start = size
	}
	if anchor.End > size || anchor.End < anchor.Start {
		anchor.End = anchor.Start
	}
	res.Bag.Add(diag.NewError(diag.BadSpan, anchor,
		fmt.Sprintf("span %s is outside the buffer (%d bytes)", sp, size)))
	return false
}

// ValidateOffset checks that a byte offset addresses the buffer, the end
// position included. Reports BadSpan anchored at the end of the buffer
// otherwise.
func ValidateOffset(res *Result, off uint32) bool {
	if res.Cursor == nil {
		return false
	}
	size := res.Cursor.Len()
	if off <= size {
		return true
	}

	res.Bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: size, End: size},
		fmt.Sprintf("offset %d is outside the buffer (%d bytes)", off, size)))
	return false
}

// ValidateLocation checks that a (line, col) pair names an existing
// offset: the line exists and the column maps back to the same location
// through the index. Columns just past a terminator belong to the next
// line and are rejected. Reports BadLocation and returns false otherwise.
func ValidateLocation(res *Result, loc source.Location) bool {
	if res.Cursor == nil {
		return false
	}
	idx := res.Cursor.Index()
	if loc.Line < idx.LineCount() {
		off := idx.OffsetFor(loc)
		if off <= idx.Len() && idx.LocationFor(off) == loc {
			return true
		}
	}

	res.Bag.Add(diag.NewError(diag.BadLocation, locationAnchor(idx, loc.Line),
		fmt.Sprintf("location %s does not exist in the buffer", loc)))
	return false
}

// ValidateLine checks that a 0-based line exists, reporting BadLine
// otherwise.
func ValidateLine(res *Result, line uint32) bool {
	if res.Cursor == nil {
		return false
	}
	idx := res.Cursor.Index()
	if line < idx.LineCount() {
		return true
	}

	res.Bag.Add(diag.NewError(diag.BadLine, locationAnchor(idx, line),
		fmt.Sprintf("line %d is outside the buffer (%d lines)", line+1, idx.LineCount())))
	return false
}

// locationAnchor picks a renderable span for an out-of-range report: the
// end of the named line when it exists, the end of the buffer otherwise.
func locationAnchor(idx *source.LineIndex, line uint32) source.Span {
	anchor := idx.Len()
	if line < idx.LineCount() {
		anchor = idx.LineSpan(line, false).End
	}
	return source.Span{Start: anchor, End: anchor}
}
