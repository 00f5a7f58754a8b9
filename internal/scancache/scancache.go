// Package scancache persists line index tables on disk, keyed by the
// SHA-256 of the buffer content. A hit skips rescanning the buffer; a
// stale or damaged entry is treated as a miss, never as an error.
package scancache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"pinpoint/internal/source"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Digest identifies buffer content by its SHA-256 hash.
type Digest [sha256.Size]byte

// HashContent returns the cache key for a buffer.
func HashContent(content []byte) Digest {
	return sha256.Sum256(content)
}

// Hex returns the lowercase hexadecimal form of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Payload is the serialized form of one scanned buffer.
type Payload struct {
	// Schema version for safe invalidation when the format changes
	Schema uint16

	// Provenance, for cache listings and debugging
	Path string

	// Buffer length and the line start offsets including the sentinel
	Size    uint32
	Offsets []uint32
}

// PayloadFor captures an index into its serializable form.
func PayloadFor(path string, idx *source.LineIndex) *Payload {
	return &Payload{
		Schema:  schemaVersion,
		Path:    path,
		Size:    idx.Len(),
		Offsets: idx.Offsets(),
	}
}

// Restore rebuilds the index for content from a cached payload. It
// reports false when the payload belongs to different content or to an
// older schema; the caller then rescans.
func (p *Payload) Restore(content []byte) (*source.LineIndex, bool) {
	if p == nil || p.Schema != schemaVersion {
		return nil, false
	}
	if p.Size != uint32(len(content)) {
		return nil, false
	}
	return source.RestoreLineIndex(content, p.Offsets)
}

// Cache stores payloads under a single directory.
// Thread-safe for concurrent access; a nil *Cache ignores every call.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes and returns a cache at the standard location:
// $XDG_CACHE_HOME/<app> with a ~/.cache fallback.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	// Scans live in their own subdirectory so DropAll and manual cleanup
	// never touch unrelated app files.
	return filepath.Join(c.dir, "scans", key.Hex()+".mp")
}

// Put serializes and writes a payload, replacing the entry atomically.
func (c *Cache) Put(key Digest, payload *Payload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes the payload for key. The first result is
// false on a clean miss, which includes entries of an older schema.
func (c *Cache) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}
