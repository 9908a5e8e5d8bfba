package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
	"github.com/gogpu/nir/serialize"
)

// ErrDisabled is returned by Open when the configuration (or the
// NIR_CACHE_DISABLE environment switch) turns caching off.
var ErrDisabled = errors.New("cache: disabled by configuration")

// entryExt is the filename extension of entry files. Only files
// carrying it are counted, served, or evicted.
const entryExt = ".nirc"

// Stats summarizes the entries currently on disk.
type Stats struct {
	Entries int
	Size    int64
}

// Cache is a content-addressed shader store rooted at a directory.
// All methods are safe for concurrent use by distinct goroutines
// within one process; cross-process writers are safe against each
// other through atomic entry publication, though their size
// accounting is independent.
type Cache struct {
	dir        string
	maxSize    int64
	tag        CompressionTag
	driver     string
	driverKeys []byte
	logger     *log.Logger

	// mu serializes size bookkeeping and eviction.
	mu   sync.Mutex
	size int64
}

// Open creates or reopens the cache described by cfg, filling in
// defaults for unset fields and tallying the entries already on
// disk.
func Open(cfg Config) (*Cache, error) {
	if cfg.Disable {
		return nil, ErrDisabled
	}

	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}

	tag := CompressionZstd
	if cfg.Compression != "" {
		var err error
		tag, err = ParseCompressionTag(cfg.Compression)
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	stats, err := scan(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning cache directory: %w", err)
	}

	return &Cache{
		dir:        dir,
		maxSize:    maxSize,
		tag:        tag,
		driver:     cfg.Driver,
		driverKeys: driverKeysBlob(cfg.Driver),
		logger:     logger,
		size:       stats.Size,
	}, nil
}

// driverKeysBlob builds the identity prefix mixed into every key:
// the entry format version followed by the driver id. Bumping the
// format re-keys the whole cache instead of serving stale layouts.
func driverKeysBlob(driver string) []byte {
	keys := binary.LittleEndian.AppendUint32(nil, entryVersion)
	return append(keys, driver...)
}

// Key derives the content key a payload would store under.
func (c *Cache) Key(payload []byte) Key {
	return ComputeKey(c.driverKeys, payload)
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) entryPath(key Key) string {
	name := key.String()
	return filepath.Join(c.dir, name[:2], name+entryExt)
}

// Put stores payload under key. The entry becomes visible atomically:
// it is written to a temp file in the target shard and renamed into
// place, so a concurrent Get sees either nothing or the whole entry.
func (c *Cache) Put(key Key, payload []byte) error {
	entry, err := encodeEntry(key, c.driver, payload, c.tag)
	if err != nil {
		return err
	}

	finalPath := c.entryPath(key)
	shard := filepath.Dir(finalPath)
	if err := os.MkdirAll(shard, 0o755); err != nil {
		return fmt.Errorf("creating cache shard: %w", err)
	}

	tmp, err := os.CreateTemp(shard, "put-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(entry); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replacing an entry must not double-count its bytes.
	if old, err := os.Stat(finalPath); err == nil {
		c.size -= old.Size()
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publishing cache entry: %w", err)
	}
	c.size += int64(len(entry))

	for c.maxSize > 0 && c.size > c.maxSize {
		if !c.evictOne() {
			break
		}
	}

	c.logger.Debug("stored cache entry", "key", key, "bytes", len(entry))
	return nil
}

// Get fetches the payload stored under key. A missing entry is
// (nil, false, nil). An entry that fails verification (wrong magic,
// version, CRC, or key echo) is removed and reported as a miss, so
// corruption heals on the next Put instead of poisoning every load.
func (c *Cache) Get(key Key) ([]byte, bool, error) {
	data, err := os.ReadFile(c.entryPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Debug("cache miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	payload, meta, err := decodeEntry(data)
	if err != nil {
		c.logger.Debug("dropping invalid cache entry", "key", key, "err", err)
		_ = c.Remove(key)
		return nil, false, nil
	}
	if meta.Key != key.String() {
		c.logger.Debug("dropping misfiled cache entry", "key", key, "stored", meta.Key)
		_ = c.Remove(key)
		return nil, false, nil
	}

	c.logger.Debug("cache hit", "key", key, "bytes", len(payload))
	return payload, true, nil
}

// Has reports whether an entry exists under key, without reading or
// verifying it.
func (c *Cache) Has(key Key) bool {
	_, err := os.Stat(c.entryPath(key))
	return err == nil
}

// Remove deletes the entry under key. Removing a missing entry is
// not an error.
func (c *Cache) Remove(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.entryPath(key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	c.size -= info.Size()
	return nil
}

// Size returns the tracked byte total of all entries. The count is
// exact for entries written through this Cache and refreshed from
// disk at Open.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Clear removes every entry shard. Files other than entry shards in
// the cache directory are left alone.
func (c *Cache) Clear() error {
	shards, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, shard := range shards {
		if !shard.IsDir() || !isShardName(shard.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.dir, shard.Name())); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	c.size = 0
	return nil
}

// Stats walks the cache directory and tallies the entries on disk.
func (c *Cache) Stats() (Stats, error) {
	return scan(c.dir)
}

// StoreShader serializes s in stripped form, stores the blob, and
// returns its content key. Stripping first makes keys canonical: two
// shaders differing only in debug names share one entry.
func (c *Cache) StoreShader(s *ir.Shader) (Key, error) {
	w := blob.NewWriter()
	serialize.Serialize(w, s, serialize.Options{Strip: true})
	payload := w.Bytes()

	key := c.Key(payload)
	if err := c.Put(key, payload); err != nil {
		return Key{}, err
	}
	return key, nil
}

// LoadShader fetches and rebuilds the shader stored under key. Get
// has verified the entry's version and CRC by the time the bytes
// reach the deserializer, which trusts its input.
func (c *Cache) LoadShader(key Key) (*ir.Shader, bool, error) {
	payload, hit, err := c.Get(key)
	if err != nil || !hit {
		return nil, false, err
	}
	return serialize.Deserialize(blob.NewReader(payload)), true, nil
}

// evictOne removes one least-recently-modified entry. A full cache
// with uniformly distributed keys almost always has entries in a
// randomly probed shard, which keeps eviction from scanning the
// whole tree; the all-shards fallback matters only for small caches.
// Callers hold mu. Returns false when nothing could be evicted.
func (c *Cache) evictOne() bool {
	probe := filepath.Join(c.dir, fmt.Sprintf("%02x", rand.Intn(256)))
	if path, size, _, ok := oldestEntry(probe); ok {
		return c.removeEntryFile(path, size)
	}

	shards, err := os.ReadDir(c.dir)
	if err != nil {
		return false
	}
	var bestPath string
	var bestSize int64
	var bestTime time.Time
	for _, shard := range shards {
		if !shard.IsDir() || !isShardName(shard.Name()) {
			continue
		}
		path, size, mtime, ok := oldestEntry(filepath.Join(c.dir, shard.Name()))
		if ok && (bestPath == "" || mtime.Before(bestTime)) {
			bestPath, bestSize, bestTime = path, size, mtime
		}
	}
	if bestPath == "" {
		return false
	}
	return c.removeEntryFile(bestPath, bestSize)
}

func (c *Cache) removeEntryFile(path string, size int64) bool {
	if os.Remove(path) != nil {
		return false
	}
	c.size -= size
	c.logger.Debug("evicted cache entry", "path", path, "bytes", size)
	return true
}

// oldestEntry returns the least-recently-modified entry file in one
// shard directory.
func oldestEntry(shardDir string) (path string, size int64, mtime time.Time, ok bool) {
	entries, err := os.ReadDir(shardDir)
	if err != nil {
		return "", 0, time.Time{}, false
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != entryExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !ok || info.ModTime().Before(mtime) {
			path = filepath.Join(shardDir, entry.Name())
			size = info.Size()
			mtime = info.ModTime()
			ok = true
		}
	}
	return path, size, mtime, ok
}

// isShardName reports whether name is a two-character hex shard
// directory. Guards Clear and eviction against unrelated files in a
// user-supplied cache directory.
func isShardName(name string) bool {
	if len(name) != 2 {
		return false
	}
	for _, r := range name {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// scan tallies the entry files currently under dir.
func scan(dir string) (Stats, error) {
	var stats Stats
	shards, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}
	for _, shard := range shards {
		if !shard.IsDir() || !isShardName(shard.Name()) {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(dir, shard.Name()))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != entryExt {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			stats.Entries++
			stats.Size += info.Size()
		}
	}
	return stats, nil
}
