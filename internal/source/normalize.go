package source

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCRLF replaces every \r\n pair with \n, leaving lone \r alone.
// It reports whether anything was replaced; when nothing was, the input
// slice is returned as is.
func NormalizeCRLF(content []byte) ([]byte, bool) {
	// Fast path: no \r at all.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

// StripBOM removes a leading UTF-8 byte order mark and reports whether one
// was present.
func StripBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// IsNFC reports whether content is already in Unicode NFC form. Buffers are
// never rewritten to NFC, since that would shift every offset; callers only
// flag denormalized input.
func IsNFC(content []byte) bool {
	return norm.NFC.IsNormal(content)
}

// isSpaceByte reports whether b is ASCII whitespace: space, tab, newline,
// carriage return, vertical tab or form feed.
func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
