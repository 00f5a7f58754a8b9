package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"pinpoint/internal/diag"
	"pinpoint/internal/source"
)

func mustCursor(t *testing.T, content string) *source.Cursor {
	t.Helper()
	cur, err := source.NewCursor([]byte(content))
	if err != nil {
		t.Fatalf("NewCursor(%q) failed: %v", content, err)
	}
	return cur
}

func TestPretty_MultiLineSpan(t *testing.T) {
	cur := mustCursor(t, "012\n456\n89a\ncde")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: 5, End: 10}, "bad span"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, cur, "sample.txt", PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	want := "sample.txt:2:2: ERROR PPT1003: bad span\n" +
		"2|  vvv\n" +
		"2| 456\n" +
		"3|>89a\n" +
		"3|>^^  \n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestPretty_Notes(t *testing.T) {
	cur := mustCursor(t, "0123456789")
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevWarning, diag.IOLoadFile, source.Span{Start: 1, End: 7}, "primary range").
		WithNote(source.Span{Start: 8, End: 9}, "see here"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, cur, "sample.txt", PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	want := "sample.txt:1:2: WARNING PPT1001: primary range\n" +
		"1| 0123456789\n" +
		"1|  ^^^^^^    \n" +
		"note: sample.txt:1:9: see here\n" +
		"1| 0123456789\n" +
		"1|         ^  \n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}

	buf.Reset()
	if err := Pretty(&buf, bag, cur, "sample.txt", PrettyOpts{ShowNotes: false}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	if got := buf.String(); strings.Contains(got, "note:") {
		t.Errorf("Expected notes to be suppressed, got:\n%s", got)
	}
}

func TestPretty_MultipleDiagnostics(t *testing.T) {
	cur := mustCursor(t, "0123456789")
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevWarning, diag.IOLoadFile, source.Span{Start: 2, End: 3}, "second"))
	bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: 0, End: 1}, "first"))
	bag.Sort()

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, cur, "./sample.txt", PrettyOpts{}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	want := "sample.txt:1:1: ERROR PPT1003: first\n" +
		"1| 0123456789\n" +
		"1| ^          \n" +
		"sample.txt:1:3: WARNING PPT1001: second\n" +
		"1| 0123456789\n" +
		"1|   ^        \n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestPretty_NilCursor(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.IOLoadFile, source.Span{}, "cannot read"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, nil, "gone.txt", PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	want := "gone.txt:1:1: ERROR PPT1001: cannot read\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestPretty_ClampsOutOfRangeSpan(t *testing.T) {
	cur := mustCursor(t, "ab\n")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: 10, End: 20}, "way out"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, cur, "sample.txt", PrettyOpts{}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	want := "sample.txt:2:1: ERROR PPT1003: way out\n" +
		"2| \n" +
		"2| ^\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestPretty_ColorizedSeverity(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	cur := mustCursor(t, "0123456789")
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.BadSpan, source.Span{Start: 0, End: 1}, "tinted"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, cur, "sample.txt", PrettyOpts{Color: true}); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("Expected ANSI escapes in colorized output, got %q", out)
	}
	if !strings.Contains(out, "ERROR") {
		t.Errorf("Expected severity tag in colorized output, got %q", out)
	}
}
