// Package config holds blogkit's runtime configuration.
//
// Configuration is layered: Default values, then an optional file
// (YAML, TOML or JSON, chosen by extension), then BLOGKIT_* environment
// variables, then command-line flags applied by the caller.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/blogkit/blog"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// EnvPrefix prefixes every environment variable LoadFromEnv reads.
const EnvPrefix = "BLOGKIT_"

// Duration is a time.Duration written as a string such as "10s" in
// configuration files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete server configuration.
type Config struct {
	// --- HTTP ---

	// Addr is the listen address.
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	ReadTimeout     Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	// --- Storage ---

	// Store selects the backend: "memory" or "bolt".
	Store string `json:"store" yaml:"store" toml:"store"`

	// BoltPath is the database file for the bolt backend.
	BoltPath string `json:"bolt_path" yaml:"bolt_path" toml:"bolt_path"`

	// --- Content ---

	// CatalogPath is an optional product file. Empty uses the demo products.
	CatalogPath string `json:"catalog_path" yaml:"catalog_path" toml:"catalog_path"`

	// WatchCatalog reloads CatalogPath when it changes.
	WatchCatalog bool `json:"watch_catalog" yaml:"watch_catalog" toml:"watch_catalog"`

	// PageSize is the listing page size used when a request gives none.
	PageSize int `json:"page_size" yaml:"page_size" toml:"page_size"`

	// Sanitize filters post markup before it is served.
	Sanitize bool `json:"sanitize" yaml:"sanitize" toml:"sanitize"`

	// LenientBlocks renders malformed block tags as text instead of
	// failing the page.
	LenientBlocks bool `json:"lenient_blocks" yaml:"lenient_blocks" toml:"lenient_blocks"`

	// --- Logging ---

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     Duration(10 * time.Second),
		WriteTimeout:    Duration(30 * time.Second),
		ShutdownTimeout: Duration(10 * time.Second),
		Store:           StoreMemory,
		BoltPath:        "blogkit.db",
		PageSize:        blog.DefaultPageSize,
		Sanitize:        true,
		LogLevel:        "info",
		LogFormat:       FormatText,
	}
}

// Load reads the file at path over the defaults. Unknown keys are
// rejected so that typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("parse %s: unknown keys %v", path, undecoded)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides fields from environment variables.
// Values that fail to parse are ignored.
//
// Supported variables:
//   - BLOGKIT_ADDR
//   - BLOGKIT_STORE, BLOGKIT_BOLT_PATH
//   - BLOGKIT_CATALOG_PATH, BLOGKIT_WATCH_CATALOG
//   - BLOGKIT_PAGE_SIZE, BLOGKIT_SANITIZE, BLOGKIT_LENIENT_BLOCKS
//   - BLOGKIT_LOG_LEVEL, BLOGKIT_LOG_FORMAT
//   - BLOGKIT_READ_TIMEOUT, BLOGKIT_WRITE_TIMEOUT, BLOGKIT_SHUTDOWN_TIMEOUT (e.g. "10s")
func (c *Config) LoadFromEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = Duration(d)
			}
		}
	}

	setString("ADDR", &c.Addr)
	setString("STORE", &c.Store)
	setString("BOLT_PATH", &c.BoltPath)
	setString("CATALOG_PATH", &c.CatalogPath)
	setBool("WATCH_CATALOG", &c.WatchCatalog)
	if v := os.Getenv(EnvPrefix + "PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageSize = n
		}
	}
	setBool("SANITIZE", &c.Sanitize)
	setBool("LENIENT_BLOCKS", &c.LenientBlocks)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_FORMAT", &c.LogFormat)
	setDuration("READ_TIMEOUT", &c.ReadTimeout)
	setDuration("WRITE_TIMEOUT", &c.WriteTimeout)
	setDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
}

// FromEnv creates a Config from environment variables over the defaults.
func FromEnv() Config {
	cfg := Default()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	switch c.Store {
	case StoreMemory:
	case StoreBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("bolt_path is required for the bolt store")
		}
	default:
		return fmt.Errorf("store must be %q or %q, got %q", StoreMemory, StoreBolt, c.Store)
	}
	if c.WatchCatalog && c.CatalogPath == "" {
		return fmt.Errorf("watch_catalog requires catalog_path")
	}
	if c.PageSize < 1 || c.PageSize > blog.MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d, got %d", blog.MaxPageSize, c.PageSize)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != FormatText && c.LogFormat != FormatJSON {
		return fmt.Errorf("log_format must be %q or %q, got %q", FormatText, FormatJSON, c.LogFormat)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
