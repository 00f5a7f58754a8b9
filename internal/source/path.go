package source

import (
	"path/filepath"
	"strings"
)

// DisplayPath normalizes a file path for diagnostic output: forward
// slashes on every platform and no leading "./".
func DisplayPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}
