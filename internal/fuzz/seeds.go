package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// maxSeedBytes caps corpus entries so the seed round stays fast.
const maxSeedBytes = 64 << 10

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addSyntheticSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".txt" {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addSyntheticSeeds covers the shapes that historically break line math,
// so the corpus stays meaningful even without testdata.
func addSyntheticSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("\n"))
	f.Add([]byte("no terminator"))
	f.Add([]byte("trailing\n"))
	f.Add([]byte("\n\n\n"))
	f.Add([]byte("\xef\xbb\xbfbom\r\nand crlf\r\n"))
	f.Add([]byte("tabs\tbetween\twords\n\twide \xe6\x97\xa5\xe6\x9c\xac\xe8\xaa\x9e text\n"))
	f.Add([]byte("lone\rcarriage\rreturns"))
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
