package source

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEnd is returned by reads attempted at end of buffer.
	ErrUnexpectedEnd = errors.New("unexpected end of input")
	// ErrMismatch is returned by ReadExpect when the byte read matches
	// none of the expected alternatives.
	ErrMismatch = errors.New("unexpected byte")
)

// Cursor is a movable read position over an immutable buffer. It tracks its
// own (line, col) incrementally, so Location is O(1), and it always agrees
// with what its LineIndex would answer for the same offset.
//
// A Cursor never mutates the buffer and is not safe for concurrent use.
type Cursor struct {
	content []byte
	index   *LineIndex
	pos     uint32
	loc     Location
}

// NewCursor builds a line index for content and returns a cursor at offset 0.
func NewCursor(content []byte) (*Cursor, error) {
	index, err := NewLineIndex(content)
	if err != nil {
		return nil, err
	}
	return &Cursor{content: content, index: index}, nil
}

// NewCursorWithIndex returns a cursor over content using an already built
// index, skipping the scan. The index must describe exactly this content.
func NewCursorWithIndex(content []byte, index *LineIndex) *Cursor {
	if index.Len() != uint32(len(content)) {
		panic(fmt.Sprintf("source: index built for %d bytes, content has %d", index.Len(), len(content)))
	}
	return &Cursor{content: content, index: index}
}

// Content returns the underlying buffer. Callers must not modify it.
func (c *Cursor) Content() []byte {
	return c.content
}

// Index returns the cursor's line index.
func (c *Cursor) Index() *LineIndex {
	return c.index
}

// Len returns the buffer length in bytes.
func (c *Cursor) Len() uint32 {
	return c.index.Len()
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() uint32 {
	return c.pos
}

// Location returns the (line, col) of the current offset.
func (c *Cursor) Location() Location {
	return c.loc
}

// EndLocation returns the location of the end-of-buffer position.
func (c *Cursor) EndLocation() Location {
	return c.index.EndLocation()
}

// Finished reports whether the whole buffer has been read.
func (c *Cursor) Finished() bool {
	return c.pos >= c.index.Len()
}

// Peek returns the byte at the current position without advancing.
// The second result is false at end of buffer.
func (c *Cursor) Peek() (byte, bool) {
	if c.Finished() {
		return 0, false
	}
	return c.content[c.pos], true
}

// Read returns the byte at the current position and advances past it,
// moving to the next line when the byte is '\n'.
func (c *Cursor) Read() (byte, error) {
	if c.Finished() {
		return 0, ErrUnexpectedEnd
	}
	b := c.content[c.pos]
	c.pos++
	if b == '\n' {
		c.loc.Line++
		c.loc.Col = 0
	} else {
		c.loc.Col++
	}
	return b, nil
}

// ReadExpect reads one byte and checks it against the alternatives in order,
// succeeding on the first match. On a mismatch the byte stays consumed and
// is still returned alongside ErrMismatch. At end of buffer it returns
// 0 and ErrUnexpectedEnd without consuming anything.
func (c *Cursor) ReadExpect(want ...byte) (byte, error) {
	b, err := c.Read()
	if err != nil {
		return 0, err
	}
	for _, w := range want {
		if b == w {
			return b, nil
		}
	}
	return b, fmt.Errorf("%w: want one of %q, got %q", ErrMismatch, want, b)
}

// Skip advances past one byte and reports whether a byte was consumed.
func (c *Cursor) Skip() bool {
	_, err := c.Read()
	return err == nil
}

// SkipN advances past up to n bytes and returns how many were consumed,
// which is less than n only when the buffer ends first.
func (c *Cursor) SkipN(n uint32) uint32 {
	var skipped uint32
	for skipped < n && c.Skip() {
		skipped++
	}
	return skipped
}

// SkipWhitespace advances past ASCII whitespace, stopping at the first
// non-whitespace byte or end of buffer.
func (c *Cursor) SkipWhitespace() {
	for {
		b, ok := c.Peek()
		if !ok || !isSpaceByte(b) {
			return
		}
		c.Skip()
	}
}

// Unread steps back one byte, exactly inverting the last Read. At offset 0
// it does nothing. Stepping back over a '\n' lands on the terminator of the
// previous line, so col becomes that line's length including the terminator
// minus one.
func (c *Cursor) Unread() {
	if c.pos == 0 {
		return
	}
	c.pos--
	if c.content[c.pos] == '\n' {
		c.loc.Line--
		c.loc.Col = c.index.LineSpan(c.loc.Line, true).Len() - 1
	} else {
		c.loc.Col--
	}
}

// Reset moves the cursor back to offset 0.
func (c *Cursor) Reset() {
	c.pos = 0
	c.loc = Location{}
}

// Span returns the bytes of sp. The span must lie within the buffer.
func (c *Cursor) Span(sp Span) []byte {
	return c.content[sp.Start:sp.End]
}

// Line returns the bytes of a line, with or without its terminator.
// line must be < LineCount().
func (c *Cursor) Line(line uint32, keepTerminator bool) []byte {
	return c.Span(c.index.LineSpan(line, keepTerminator))
}
