package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// InspectEntry is the per-buffer report of the inspect command.
type InspectEntry struct {
	Path    string   `json:"path"`
	Size    uint32   `json:"size"`
	Lines   uint32   `json:"lines"`
	EndLine uint32   `json:"end_line"`
	EndCol  uint32   `json:"end_col"`
	Hash    string   `json:"hash,omitempty"`
	Flags   []string `json:"flags,omitempty"`
}

// FormatInspectPretty writes one line per inspected buffer.
func FormatInspectPretty(w io.Writer, entries []InspectEntry) error {
	for i, e := range entries {
		fmt.Fprintf(w, "%3d: %-20s %d bytes, %d lines, end %d:%d",
			i+1, e.Path, e.Size, e.Lines, e.EndLine, e.EndCol)

		if e.Hash != "" {
			fmt.Fprintf(w, " %s", shortHash(e.Hash))
		}

		if len(e.Flags) > 0 {
			fmt.Fprintf(w, " (flags: %s)", strings.Join(e.Flags, ", "))
		}

		fmt.Fprintln(w)
	}
	return nil
}

// FormatInspectJSON writes the inspected buffers as a JSON array.
func FormatInspectJSON(w io.Writer, entries []InspectEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// shortHash trims a content hash down to a recognizable prefix.
func shortHash(hash string) string {
	const visible = 12
	if len(hash) <= visible {
		return hash
	}
	return hash[:visible]
}
