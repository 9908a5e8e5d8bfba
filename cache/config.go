package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Environment switches, mirroring the shader cache conventions most
// drivers ship with. They override config-file values; CLI flags
// override both.
const (
	envDir     = "NIR_CACHE_DIR"
	envMaxSize = "NIR_CACHE_MAX_SIZE"
	envDisable = "NIR_CACHE_DISABLE"
)

// DefaultMaxSize bounds a cache whose config does not say otherwise.
const DefaultMaxSize = 1 << 30 // 1 GiB

// Config describes a cache. The zero value is usable: Open fills in
// the default directory, size limit, and compression.
type Config struct {
	// Dir is the cache root. Empty means DefaultDir().
	Dir string

	// MaxSize is the eviction threshold in bytes. Zero means
	// DefaultMaxSize; negative disables eviction.
	MaxSize int64

	// Compression selects the payload codec for new entries:
	// "zstd" (the default when empty), "lz4", or "none". Existing
	// entries carry their own tag.
	Compression string

	// Driver identifies the producing driver; it is mixed into
	// every key. Empty means entries are keyed on payload alone.
	Driver string

	// Disable makes Open fail with ErrDisabled. Set from config,
	// the NIR_CACHE_DISABLE environment switch, or a CLI flag.
	Disable bool

	// Logger receives debug-level hit/miss/evict lines. Nil means
	// silent.
	Logger *log.Logger
}

// fileConfig is the TOML shape of a config file. Sizes are strings
// so they can carry K/M/G suffixes.
type fileConfig struct {
	Dir         string `toml:"dir"`
	MaxSize     string `toml:"max_size"`
	Compression string `toml:"compression"`
	Driver      string `toml:"driver"`
	Disable     bool   `toml:"disable"`
}

// DefaultDir resolves the cache root: $NIR_CACHE_DIR if set, else
// the user cache directory plus "nir".
func DefaultDir() (string, error) {
	if dir := os.Getenv(envDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(base, "nir"), nil
}

// DefaultConfig returns the configuration produced by environment
// switches alone.
func DefaultConfig() Config {
	var cfg Config
	applyEnv(&cfg)
	return cfg
}

// LoadConfig reads a TOML config file and applies environment
// overrides on top.
//
//	dir = "/var/cache/nir"
//	max_size = "256M"
//	compression = "lz4"
//	driver = "gogpu 0.3"
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading cache config: %w", err)
	}
	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.Dir = file.Dir
	cfg.Compression = file.Compression
	cfg.Driver = file.Driver
	cfg.Disable = file.Disable
	if file.MaxSize != "" {
		cfg.MaxSize, err = ParseSize(file.MaxSize)
		if err != nil {
			return cfg, fmt.Errorf("parsing %s: max_size: %w", path, err)
		}
	}
	if file.Compression != "" {
		if _, err := ParseCompressionTag(file.Compression); err != nil {
			return cfg, fmt.Errorf("parsing %s: compression: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overwrites cfg fields that have environment switches set.
func applyEnv(cfg *Config) {
	if dir := os.Getenv(envDir); dir != "" {
		cfg.Dir = dir
	}
	if raw := os.Getenv(envMaxSize); raw != "" {
		if size, err := ParseSize(raw); err == nil {
			cfg.MaxSize = size
		}
	}
	if os.Getenv(envDisable) != "" {
		cfg.Disable = true
	}
}

// ParseSize parses a byte count with an optional K, M, or G suffix
// (case-insensitive): "262144", "256K", "1G".
func ParseSize(s string) (int64, error) {
	text := strings.TrimSpace(s)
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(text, "K"), strings.HasSuffix(text, "k"):
		multiplier = 1 << 10
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "M"), strings.HasSuffix(text, "m"):
		multiplier = 1 << 20
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "G"), strings.HasSuffix(text, "g"):
		multiplier = 1 << 30
		text = text[:len(text)-1]
	}
	value, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return value * multiplier, nil
}
