package fuzztests

import (
	"testing"

	"pinpoint/internal/source"
	"pinpoint/internal/testkit"
)

// maxFuzzInput clamps mutated inputs to the documented buffer scale.
const maxFuzzInput = 64 << 10

// normalizeInput runs raw fuzz bytes through the same normalization the
// driver applies before indexing.
func normalizeInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	content := append([]byte(nil), input...)
	content, _ = source.StripBOM(content)
	content, _ = source.NormalizeCRLF(content)
	return content
}

func FuzzLineIndex(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		content := normalizeInput(input)

		idx, err := source.NewLineIndex(content)
		if err != nil {
			t.Fatalf("NewLineIndex on %d bytes: %v", len(content), err)
		}
		if invErr := testkit.CheckIndexInvariants(content, idx); invErr != nil {
			t.Fatal(invErr)
		}

		restored, ok := source.RestoreLineIndex(content, idx.Offsets())
		if !ok {
			t.Fatal("a freshly scanned offset table must restore")
		}
		if invErr := testkit.CheckIndexInvariants(content, restored); invErr != nil {
			t.Fatalf("restored index: %v", invErr)
		}
	})
}
