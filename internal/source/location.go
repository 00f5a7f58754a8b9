package source

import "fmt"

// Location is a position within a buffer as (line, column), both 0-based.
// It is always derived from a byte offset; it has no meaning on its own.
type Location struct {
	Line uint32
	Col  uint32
}

// String renders the location 1-based, the way editors and diagnostics
// display positions.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line+1, l.Col+1)
}
