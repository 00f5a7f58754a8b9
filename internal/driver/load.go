// Package driver loads buffers for the CLI: disk reads, BOM/CRLF
// normalization, content hashing, line index construction (optionally
// through the scan cache) and validation of user-supplied positions.
// Failures never surface as Go errors; they become coded diagnostics in
// the result bag so every outcome renders the same way.
package driver

import (
	"fmt"
	"os"

	"pinpoint/internal/diag"
	"pinpoint/internal/observ"
	"pinpoint/internal/scancache"
	"pinpoint/internal/source"
)

// DefaultMaxDiagnostics caps the bag when Options does not say otherwise.
const DefaultMaxDiagnostics = 256

// Flags encodes what loading did to the raw bytes of a buffer.
type Flags uint8

const (
	// FlagVirtual marks content that did not come from disk (stdin, tests).
	FlagVirtual Flags = 1 << iota
	FlagHadBOM
	FlagNormalizedCRLF
	// FlagNotNFC marks content that is not in Unicode NFC form. The bytes
	// are kept as they are; rewriting them would shift every offset.
	FlagNotNFC
)

// Strings lists the set flags in a stable order for display.
func (f Flags) Strings() []string {
	var out []string
	if f&FlagVirtual != 0 {
		out = append(out, "virtual")
	}
	if f&FlagHadBOM != 0 {
		out = append(out, "bom")
	}
	if f&FlagNormalizedCRLF != 0 {
		out = append(out, "crlf")
	}
	if f&FlagNotNFC != 0 {
		out = append(out, "not-nfc")
	}
	return out
}

// Options controls loading and the output policies of Finish.
type Options struct {
	MaxDiagnostics   int
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	Cache            *scancache.Cache // nil disables the scan cache
}

func maxDiagnostics(opts Options) int {
	if opts.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return opts.MaxDiagnostics
}

// Result is one loaded buffer plus everything reported about it.
type Result struct {
	Path   string
	Cursor *source.Cursor // nil when loading failed
	Flags  Flags
	Hash   scancache.Digest
	Bag    *diag.Bag

	timer *observ.Timer
	cache *scancache.Cache
}

// Stats describes a successfully indexed buffer. Line and column are
// 1-based for display.
type Stats struct {
	Size    uint32
	Lines   uint32
	EndLine uint32
	EndCol  uint32
}

// Stats reports the index statistics; false when loading failed.
func (r *Result) Stats() (Stats, bool) {
	if r.Cursor == nil {
		return Stats{}, false
	}
	idx := r.Cursor.Index()
	end := idx.EndLocation()
	return Stats{
		Size:    idx.Len(),
		Lines:   idx.LineCount(),
		EndLine: end.Line + 1,
		EndCol:  end.Col + 1,
	}, true
}

// Load reads and indexes a file from disk.
func Load(path string, opts Options) *Result {
	res := newResult(path, opts)

	done := track(res.timer, "load")
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		done("")
		res.Bag.Add(diag.NewError(diag.IOLoadFile, source.Span{}, "failed to load file: "+err.Error()))
		return res
	}
	done(fmt.Sprintf("%d bytes", len(content)))

	res.index(content, 0)
	return res
}

// LoadVirtual indexes content that did not come from disk.
func LoadVirtual(name string, content []byte, opts Options) *Result {
	res := newResult(name, opts)
	res.index(content, FlagVirtual)
	return res
}

func newResult(path string, opts Options) *Result {
	res := &Result{
		Path:  path,
		Bag:   diag.NewBag(maxDiagnostics(opts)),
		cache: opts.Cache,
	}
	if opts.EnableTimings {
		res.timer = observ.NewTimer()
	}
	return res
}

func (r *Result) index(content []byte, flags Flags) {
	done := track(r.timer, "scan")

	content, hadBOM := source.StripBOM(content)
	if hadBOM {
		flags |= FlagHadBOM
	}
	content, hadCRLF := source.NormalizeCRLF(content)
	if hadCRLF {
		flags |= FlagNormalizedCRLF
	}
	if !source.IsNFC(content) {
		flags |= FlagNotNFC
	}
	r.Flags = flags
	r.Hash = scancache.HashContent(content)

	idx, note := r.restoreOrScan(content)
	if idx != nil {
		r.Cursor = source.NewCursorWithIndex(content, idx)
	}
	done(note)
}

// restoreOrScan serves the index from the cache when possible, scanning
// and back-filling the cache otherwise.
func (r *Result) restoreOrScan(content []byte) (*source.LineIndex, string) {
	if r.cache != nil {
		var payload scancache.Payload
		if ok, err := r.cache.Get(r.Hash, &payload); ok && err == nil {
			if idx, ok := payload.Restore(content); ok {
				return idx, "cache hit"
			}
		}
	}

	idx, err := source.NewLineIndex(content)
	if err != nil {
		r.Bag.Add(diag.NewError(diag.SrcTooLarge, source.Span{}, err.Error()))
		return nil, "too large"
	}
	if r.cache != nil {
		if err := r.cache.Put(r.Hash, scancache.PayloadFor(r.Path, idx)); err == nil {
			return idx, "scanned, cached"
		}
	}
	return idx, "scanned"
}

// Track times a phase against the result's timer. Without timings the
// returned function is a no-op.
func (r *Result) Track(name string) func(note string) {
	return track(r.timer, name)
}

func track(timer *observ.Timer, name string) func(note string) {
	if timer == nil {
		return func(string) {}
	}
	return timer.Track(name)
}

// Finish applies the output policies once every diagnostic is in: drop
// warnings and infos under IgnoreWarnings, promote warnings under
// WarningsAsErrors, dedup, sort, then append the timing diagnostic.
// Call it exactly once, right before rendering the bag.
func (r *Result) Finish(opts Options) {
	if opts.IgnoreWarnings {
		r.Bag.Filter(func(d diag.Diagnostic) bool {
			return d.Severity != diag.SevWarning && d.Severity != diag.SevInfo
		})
	}
	if opts.WarningsAsErrors {
		r.Bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	r.Bag.Dedup()
	r.Bag.Sort()

	if r.timer != nil {
		kind := "file"
		if r.Flags&FlagVirtual != 0 {
			kind = "virtual"
		}
		report := r.timer.Report()
		appendTimingDiagnostic(r.Bag, timingPayload{
			Kind:    kind,
			Path:    r.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
}
