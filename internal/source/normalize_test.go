package source

import (
	"bytes"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		wantChanged bool
	}{
		{
			name:        "no carriage returns",
			input:       "a\nb\nc",
			expected:    "a\nb\nc",
			wantChanged: false,
		},
		{
			name:        "crlf becomes lf",
			input:       "a\r\nb",
			expected:    "a\nb",
			wantChanged: true,
		},
		{
			name:        "lone cr is kept",
			input:       "a\rb",
			expected:    "a\rb",
			wantChanged: false,
		},
		{
			name:        "cr at end of buffer is kept",
			input:       "ab\r",
			expected:    "ab\r",
			wantChanged: false,
		},
		{
			name:        "mixed endings",
			input:       "a\r\nb\rc\r\n",
			expected:    "a\nb\rc\n",
			wantChanged: true,
		},
		{
			name:        "cr before crlf",
			input:       "a\r\r\nb",
			expected:    "a\r\nb",
			wantChanged: true,
		},
		{
			name:        "consecutive crlf pairs",
			input:       "\r\n\r\n",
			expected:    "\n\n",
			wantChanged: true,
		},
		{
			name:        "empty buffer",
			input:       "",
			expected:    "",
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := NormalizeCRLF([]byte(tt.input))
			if !bytes.Equal(got, []byte(tt.expected)) {
				t.Errorf("NormalizeCRLF(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if changed != tt.wantChanged {
				t.Errorf("NormalizeCRLF(%q) changed = %v, want %v", tt.input, changed, tt.wantChanged)
			}
		})
	}
}

func TestStripBOM(t *testing.T) {
	tests := []struct {
		name         string
		input        []byte
		expected     []byte
		wantStripped bool
	}{
		{
			name:         "bom followed by content",
			input:        []byte{0xEF, 0xBB, 0xBF, 'a', 'b'},
			expected:     []byte("ab"),
			wantStripped: true,
		},
		{
			name:         "no bom",
			input:        []byte("abc"),
			expected:     []byte("abc"),
			wantStripped: false,
		},
		{
			name:         "bom alone leaves empty buffer",
			input:        []byte{0xEF, 0xBB, 0xBF},
			expected:     []byte{},
			wantStripped: true,
		},
		{
			name:         "shorter than a bom",
			input:        []byte{0xEF, 0xBB},
			expected:     []byte{0xEF, 0xBB},
			wantStripped: false,
		},
		{
			name:         "bom prefix with wrong third byte",
			input:        []byte{0xEF, 0xBB, 'x'},
			expected:     []byte{0xEF, 0xBB, 'x'},
			wantStripped: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stripped := StripBOM(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("StripBOM(%v) = %v, want %v", tt.input, got, tt.expected)
			}
			if stripped != tt.wantStripped {
				t.Errorf("StripBOM(%v) stripped = %v, want %v", tt.input, stripped, tt.wantStripped)
			}
		})
	}
}

func TestIsNFC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "plain ascii",
			input: "hello world\n",
			want:  true,
		},
		{
			name:  "precomposed accent",
			input: "café",
			want:  true,
		},
		{
			name:  "decomposed accent",
			input: "café",
			want:  false,
		},
		{
			name:  "empty buffer",
			input: "",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNFC([]byte(tt.input)); got != tt.want {
				t.Errorf("IsNFC(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsSpaceByte(t *testing.T) {
	for _, b := range []byte{' ', '\t', '\n', '\r', '\v', '\f'} {
		if !isSpaceByte(b) {
			t.Errorf("Expected %q to be whitespace", b)
		}
	}
	for _, b := range []byte{'a', '0', '_', 0x00, 0x7F} {
		if isSpaceByte(b) {
			t.Errorf("Expected %q not to be whitespace", b)
		}
	}
}
