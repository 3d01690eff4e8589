// Package lintcache persists per-file lint results keyed by file content and
// the effective configuration, so unchanged files skip parsing entirely.
package lintcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

// FileName is the cache file inside the cache directory.
const FileName = "lint-cache.json.lz4"

// formatVersion changes whenever the on-disk layout does.
const formatVersion = 1

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Entry is the cached outcome for one path.
type Entry struct {
	ContentHash string             `json:"contentHash"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
}

type document struct {
	Version     int              `json:"version"`
	Fingerprint string           `json:"fingerprint"`
	Entries     map[string]Entry `json:"entries"`
}

// Cache is a concurrency-safe result cache backed by one LZ4-compressed JSON
// file. A cache whose fingerprint differs from the stored one starts empty.
type Cache struct {
	path        string
	fingerprint string

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool

	hits   atomic.Int64
	misses atomic.Int64
}

// Open loads the cache in dir. A missing, stale or unreadable file yields an
// empty cache; only filesystem errors on dir itself are returned.
func Open(dir, fingerprint string) (*Cache, error) {
	err := os.MkdirAll(dir, dirMode)
	if err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	c := &Cache{
		path:        filepath.Join(dir, FileName),
		fingerprint: fingerprint,
		entries:     make(map[string]Entry),
	}

	doc, err := readDocument(c.path)
	if err == nil && doc.Version == formatVersion && doc.Fingerprint == fingerprint && doc.Entries != nil {
		c.entries = doc.Entries
	}

	return c, nil
}

func readDocument(path string) (*document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer file.Close()

	var doc document

	err = json.NewDecoder(lz4.NewReader(file)).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}

	return &doc, nil
}

// Get returns the cached diagnostics for path when content is unchanged.
func (c *Cache) Get(path string, content []byte) ([]rules.Diagnostic, bool) {
	c.mu.Lock()
	entry, ok := c.entries[path]
	c.mu.Unlock()

	if !ok || entry.ContentHash != HashContent(content) {
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)

	return entry.Diagnostics, true
}

// Put records the diagnostics of path at content.
func (c *Cache) Put(path string, content []byte, diags []rules.Diagnostic) {
	entry := Entry{ContentHash: HashContent(content), Diagnostics: diags}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = entry
	c.dirty = true
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns hit and miss counts since Open.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Save writes the cache if anything changed. The file is replaced
// atomically so concurrent readers never observe a partial write.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}

	writeErr := writeDocument(tmp, document{Version: formatVersion, Fingerprint: c.fingerprint, Entries: c.entries})
	closeErr := tmp.Close()

	if err = errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())

		return err
	}

	err = os.Chmod(tmp.Name(), fileMode)
	if err == nil {
		err = os.Rename(tmp.Name(), c.path)
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("replace cache: %w", err)
	}

	c.dirty = false

	return nil
}

func writeDocument(w io.Writer, doc document) error {
	zw := lz4.NewWriter(w)

	err := json.NewEncoder(zw).Encode(doc)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}

	return nil
}

// Clear removes the cache file in dir.
func Clear(dir string) error {
	err := os.Remove(filepath.Join(dir, FileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache: %w", err)
	}

	return nil
}

// HashContent hashes file content.
func HashContent(content []byte) string {
	return strconv.FormatUint(xxhash.Sum64(content), 16)
}

// Fingerprint derives the cache key of a configuration. Any value that
// changes rule behavior (version, rule options) must be part of parts.
func Fingerprint(version string, parts ...any) (string, error) {
	digest := xxhash.New()

	_, _ = digest.WriteString(version)

	for _, part := range parts {
		data, err := json.Marshal(part)
		if err != nil {
			return "", fmt.Errorf("fingerprint: %w", err)
		}

		_, _ = digest.Write(data)
	}

	return strconv.FormatUint(digest.Sum64(), 16), nil
}

// DefaultDir is the per-user cache directory.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}

	return filepath.Join(base, "boundarylint"), nil
}
