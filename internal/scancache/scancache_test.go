package scancache_test

import (
	"testing"

	"pinpoint/internal/scancache"
	"pinpoint/internal/source"
)

func openTestCache(t *testing.T) *scancache.Cache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := scancache.Open("pinpoint-test")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return c
}

func mustIndex(t *testing.T, content string) *source.LineIndex {
	t.Helper()
	idx, err := source.NewLineIndex([]byte(content))
	if err != nil {
		t.Fatalf("NewLineIndex(%q) failed: %v", content, err)
	}
	return idx
}

func TestCache_PutGet(t *testing.T) {
	c := openTestCache(t)
	content := []byte("ab\ncd\n")
	idx := mustIndex(t, string(content))
	key := scancache.HashContent(content)

	if err := c.Put(key, scancache.PayloadFor("a.txt", idx)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got scancache.Payload
	ok, err := c.Get(key, &got)
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), expected a hit", ok, err)
	}
	if got.Path != "a.txt" || got.Size != 6 {
		t.Errorf("Payload = %+v, want path a.txt size 6", got)
	}

	restored, ok := got.Restore(content)
	if !ok {
		t.Fatal("expected the cached payload to restore")
	}
	if restored.LineCount() != idx.LineCount() || restored.Len() != idx.Len() {
		t.Errorf("restored index = %d lines/%d bytes, want %d/%d",
			restored.LineCount(), restored.Len(), idx.LineCount(), idx.Len())
	}

	other := scancache.HashContent([]byte("different"))
	if ok, err := c.Get(other, &got); ok || err != nil {
		t.Fatalf("Get on unknown key = (%v, %v), expected a clean miss", ok, err)
	}
}

func TestCache_DropAll(t *testing.T) {
	c := openTestCache(t)
	content := []byte("x")
	key := scancache.HashContent(content)
	if err := c.Put(key, scancache.PayloadFor("x.txt", mustIndex(t, "x"))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll failed: %v", err)
	}
	var got scancache.Payload
	if ok, _ := c.Get(key, &got); ok {
		t.Fatal("expected miss after DropAll")
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("second DropAll failed: %v", err)
	}
}

func TestCache_NilReceiver(t *testing.T) {
	var c *scancache.Cache
	if err := c.Put(scancache.Digest{}, &scancache.Payload{}); err != nil {
		t.Fatalf("nil Put failed: %v", err)
	}
	var got scancache.Payload
	if ok, err := c.Get(scancache.Digest{}, &got); ok || err != nil {
		t.Fatalf("nil Get = (%v, %v), expected a silent miss", ok, err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("nil DropAll failed: %v", err)
	}
	if c.Dir() != "" {
		t.Fatal("expected empty dir for nil cache")
	}
}

func TestPayload_RestoreRejectsMismatch(t *testing.T) {
	idx := mustIndex(t, "ab\ncd")
	p := scancache.PayloadFor("a.txt", idx)

	if _, ok := p.Restore([]byte("zz")); ok {
		t.Fatal("expected restore to reject content of a different size")
	}

	stale := *p
	stale.Schema = 99
	if _, ok := stale.Restore([]byte("ab\ncd")); ok {
		t.Fatal("expected restore to reject an unknown schema")
	}

	var nilPayload *scancache.Payload
	if _, ok := nilPayload.Restore([]byte("ab\ncd")); ok {
		t.Fatal("expected restore to reject a nil payload")
	}
}
