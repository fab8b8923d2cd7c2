package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 6, cfg.PageSize)
	assert.True(t, cfg.Sanitize)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout.Std())
}

func TestLoad(t *testing.T) {
	files := map[string]string{
		"blogkit.yaml": `
addr: ":9090"
store: bolt
bolt_path: /tmp/blog.db
page_size: 10
lenient_blocks: true
write_timeout: 1m
`,
		"blogkit.toml": `
addr = ":9090"
store = "bolt"
bolt_path = "/tmp/blog.db"
page_size = 10
lenient_blocks = true
write_timeout = "1m"
`,
		"blogkit.json": `{"addr":":9090","store":"bolt","bolt_path":"/tmp/blog.db","page_size":10,"lenient_blocks":true,"write_timeout":"1m"}`,
	}

	dir := t.TempDir()
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, ":9090", cfg.Addr)
			assert.Equal(t, StoreBolt, cfg.Store)
			assert.Equal(t, "/tmp/blog.db", cfg.BoltPath)
			assert.Equal(t, 10, cfg.PageSize)
			assert.True(t, cfg.LenientBlocks)
			assert.Equal(t, time.Minute, cfg.WriteTimeout.Std())

			// Unset keys keep their defaults.
			assert.True(t, cfg.Sanitize)
			assert.Equal(t, 10*time.Second, cfg.ReadTimeout.Std())
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml")},
		{name: "unknown extension", path: write("c.ini", "addr=x")},
		{name: "unknown yaml key", path: write("c.yaml", "adress: x\n")},
		{name: "unknown toml key", path: write("c.toml", "adress = \"x\"\n")},
		{name: "unknown json key", path: write("c.json", `{"adress":"x"}`)},
		{name: "bad duration", path: write("d.yaml", "read_timeout: soon\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BLOGKIT_ADDR", ":7000")
	t.Setenv("BLOGKIT_STORE", "bolt")
	t.Setenv("BLOGKIT_PAGE_SIZE", "12")
	t.Setenv("BLOGKIT_SANITIZE", "false")
	t.Setenv("BLOGKIT_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("BLOGKIT_LOG_FORMAT", "json")
	t.Setenv("BLOGKIT_WATCH_CATALOG", "not-a-bool")

	cfg := FromEnv()
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, StoreBolt, cfg.Store)
	assert.Equal(t, 12, cfg.PageSize)
	assert.False(t, cfg.Sanitize)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout.Std())
	assert.Equal(t, FormatJSON, cfg.LogFormat)
	assert.False(t, cfg.WatchCatalog, "unparseable values are ignored")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Addr = "" }},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "postgres" }},
		{name: "bolt without path", mutate: func(c *Config) { c.Store = StoreBolt; c.BoltPath = "" }},
		{name: "watch without catalog", mutate: func(c *Config) { c.WatchCatalog = true }},
		{name: "page size zero", mutate: func(c *Config) { c.PageSize = 0 }},
		{name: "page size too large", mutate: func(c *Config) { c.PageSize = 1000 }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }},
		{name: "negative timeout", mutate: func(c *Config) { c.ReadTimeout = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
