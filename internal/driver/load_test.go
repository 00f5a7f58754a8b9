package driver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pinpoint/internal/diag"
	"pinpoint/internal/driver"
	"pinpoint/internal/scancache"
	"pinpoint/internal/source"
)

func TestLoad_NormalizesAndIndexes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	raw := []byte("\xef\xbb\xbfhello\r\nworld\r\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	res := driver.Load(path, driver.Options{})
	if res.Cursor == nil {
		t.Fatalf("Expected a cursor, diagnostics: %v", res.Bag.Items())
	}
	if res.Bag.Len() != 0 {
		t.Errorf("Expected no diagnostics, got %d", res.Bag.Len())
	}
	if res.Flags&driver.FlagHadBOM == 0 || res.Flags&driver.FlagNormalizedCRLF == 0 {
		t.Errorf("Expected bom and crlf flags, got %v", res.Flags.Strings())
	}

	stats, ok := res.Stats()
	if !ok {
		t.Fatal("Expected stats for a loaded buffer")
	}
	if stats.Size != 12 || stats.Lines != 3 || stats.EndLine != 3 || stats.EndCol != 1 {
		t.Errorf("Stats = %+v, want size 12, 3 lines, end 3:1", stats)
	}

	if want := scancache.HashContent([]byte("hello\nworld\n")); res.Hash != want {
		t.Errorf("Hash = %s, want the hash of the normalized content", res.Hash.Hex())
	}
	if got := string(res.Cursor.Content()); got != "hello\nworld\n" {
		t.Errorf("Content = %q, want normalized bytes", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	res := driver.Load(filepath.Join(t.TempDir(), "gone.txt"), driver.Options{})
	if res.Cursor != nil {
		t.Fatal("Expected no cursor for a missing file")
	}
	if _, ok := res.Stats(); ok {
		t.Error("Expected no stats for a missing file")
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("Expected exactly one diagnostic, got %d", res.Bag.Len())
	}
	d := res.Bag.Items()[0]
	if d.Code != diag.IOLoadFile || d.Severity != diag.SevError {
		t.Errorf("Expected an IOLoadFile error, got %v %v", d.Severity, d.Code)
	}
}

func TestLoadVirtual(t *testing.T) {
	res := driver.LoadVirtual("mem.txt", []byte("ab\ncd"), driver.Options{})
	if res.Cursor == nil {
		t.Fatal("Expected a cursor for virtual content")
	}
	if res.Flags&driver.FlagVirtual == 0 {
		t.Errorf("Expected the virtual flag, got %v", res.Flags.Strings())
	}
	if b, ok := res.Cursor.Peek(); !ok || b != 'a' {
		t.Errorf("Expected peek 'a', got %c (%v)", b, ok)
	}
}

func TestLoadVirtual_FlagsDenormalizedText(t *testing.T) {
	res := driver.LoadVirtual("mem.txt", []byte("café\n"), driver.Options{})
	if res.Cursor == nil {
		t.Fatal("Expected a cursor for virtual content")
	}
	if res.Flags&driver.FlagNotNFC == 0 {
		t.Errorf("Expected the not-nfc flag, got %v", res.Flags.Strings())
	}
	if got := string(res.Cursor.Content()); got != "café\n" {
		t.Errorf("Content = %q, want the bytes untouched", got)
	}

	nfc := driver.LoadVirtual("mem.txt", []byte("café\n"), driver.Options{})
	if nfc.Flags&driver.FlagNotNFC != 0 {
		t.Errorf("Expected no not-nfc flag for NFC input, got %v", nfc.Flags.Strings())
	}
}

func TestLoad_ScanCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := scancache.Open("pinpoint-test")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("a\nb\nc"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	opts := driver.Options{Cache: cache, EnableTimings: true}

	first := driver.Load(path, opts)
	if first.Cursor == nil {
		t.Fatal("Expected the first load to succeed")
	}
	var payload scancache.Payload
	if ok, err := cache.Get(first.Hash, &payload); !ok || err != nil {
		t.Fatalf("Expected the scan to be cached, got (%v, %v)", ok, err)
	}

	second := driver.Load(path, opts)
	second.Finish(opts)
	items := second.Bag.Items()
	if len(items) == 0 {
		t.Fatal("Expected a timing diagnostic")
	}
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings {
		t.Fatalf("Expected a trailing timing diagnostic, got %v", last.Code)
	}
	if len(last.Notes) != 1 || !strings.Contains(last.Notes[0].Msg, "cache hit") {
		t.Errorf("Expected a cache hit note, got %+v", last.Notes)
	}
}

func TestResult_FinishPolicies(t *testing.T) {
	content := []byte("0123456789")

	res := driver.LoadVirtual("mem.txt", content, driver.Options{})
	res.Bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: 0, End: 1}, "boom"))
	res.Bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: 0, End: 1}, "boom duplicate"))
	res.Bag.Add(diag.New(diag.SevWarning, diag.BadLine, source.Span{Start: 2, End: 3}, "warn"))
	res.Bag.Add(diag.New(diag.SevInfo, diag.UnknownCode, source.Span{Start: 4, End: 5}, "fyi"))

	res.Finish(driver.Options{IgnoreWarnings: true})
	if res.Bag.Len() != 1 {
		t.Fatalf("Expected only the deduplicated error to survive, got %d", res.Bag.Len())
	}
	if got := res.Bag.Items()[0].Message; got != "boom" {
		t.Errorf("Expected the first duplicate to win, got %q", got)
	}

	res = driver.LoadVirtual("mem.txt", content, driver.Options{})
	res.Bag.Add(diag.New(diag.SevWarning, diag.BadLine, source.Span{Start: 2, End: 3}, "warn"))
	res.Finish(driver.Options{WarningsAsErrors: true})
	if !res.Bag.HasErrors() {
		t.Fatal("Expected the warning to be promoted to an error")
	}
}

func TestResult_TimingsSurviveFullBag(t *testing.T) {
	opts := driver.Options{MaxDiagnostics: 1, EnableTimings: true}
	res := driver.LoadVirtual("mem.txt", []byte("x"), opts)
	res.Bag.Add(diag.NewError(diag.BadSpan, source.Span{}, "fills the bag"))

	res.Finish(opts)
	if res.Bag.Len() != 2 {
		t.Fatalf("Expected the timing diagnostic to be appended past the limit, got %d items", res.Bag.Len())
	}
	last := res.Bag.Items()[res.Bag.Len()-1]
	if last.Code != diag.ObsTimings {
		t.Errorf("Expected trailing timings, got %v", last.Code)
	}
	if !strings.Contains(last.Message, "timings (virtual)") {
		t.Errorf("Expected a virtual timing message, got %q", last.Message)
	}
}
