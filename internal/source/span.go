package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) over a single buffer.
type Span struct {
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Contains reports whether byte offset i falls inside the span.
// An empty span contains nothing.
func (s Span) Contains(i uint32) bool {
	return s.Start <= i && i < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}
