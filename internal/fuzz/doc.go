// Package fuzztests holds the Go fuzz harnesses for the text pipeline.
//
// Each harness feeds arbitrary bytes through the same normalization the
// driver applies, then checks the structural invariants of the stage under
// test instead of comparing against golden output. The goal is to catch
// panics, out-of-range indexing, and drift between the cursor's running
// location and the line index on inputs no hand-written test would think
// of.
//
// Run a single harness with, for example:
//
//	go test -fuzz=FuzzLineIndex -fuzztime=30s ./internal/fuzz
package fuzztests
