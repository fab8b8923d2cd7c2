package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/config"
	"github.com/randalmurphal/blogkit/store/boltstore"
)

func newTestCLI() (*cli, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &cli{stdout: stdout, stderr: stderr}, stdout, stderr
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "want *ExitError, got %v", err)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRun_Usage(t *testing.T) {
	c, stdout, stderr := newTestCLI()

	err := c.run(context.Background(), nil)
	requireExitCode(t, err, 2)
	assert.Contains(t, stderr.String(), "Usage:")

	require.NoError(t, c.run(context.Background(), []string{"help"}))
	assert.Contains(t, stdout.String(), "blogkit serve")

	err = c.run(context.Background(), []string{"publish"})
	exitErr := requireExitCode(t, err, 2)
	assert.Equal(t, `unknown command "publish"`, exitErr.Message)
}

func TestRun_FlagErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"serve", "-nope"}, wantMsg: "flag provided but not defined: -nope"},
		{name: "bad store", args: []string{"serve", "-store", "mongo"}, wantMsg: "invalid configuration"},
		{name: "bad log level", args: []string{"serve", "-log-level", "loud"}, wantMsg: "invalid configuration"},
		{name: "watch without catalog", args: []string{"serve", "-watch-catalog"}, wantMsg: "watch_catalog requires catalog_path"},
		{name: "serve arguments", args: []string{"serve", "extra"}, wantMsg: "serve takes no arguments"},
		{name: "import without path", args: []string{"import"}, wantMsg: "import needs at least one PATH"},
		{name: "missing config file", args: []string{"import", "-config", "/does/not/exist.yaml", "x"}, wantMsg: "exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCLI()
			err := c.run(context.Background(), tt.args)
			exitErr := requireExitCode(t, err, 2)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}

func TestRun_Help(t *testing.T) {
	c, _, stderr := newTestCLI()

	require.NoError(t, c.run(context.Background(), []string{"serve", "-h"}))
	assert.Contains(t, stderr.String(), "-addr")

	stderr.Reset()
	require.NoError(t, c.run(context.Background(), []string{"import", "-h"}))
	assert.Contains(t, stderr.String(), "-dry-run")
}

func TestRun_Serve(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	writeFile(t, catalogPath, "products:\n  - sku: DESK1\n    name: Standing Desk\n    price: $499\n    image: /desk.jpg\n")

	ready := make(chan net.Addr, 1)
	c, _, _ := newTestCLI()
	c.ready = ready

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- c.run(ctx, []string{
			"serve",
			"-addr", "127.0.0.1:0",
			"-store", "bolt",
			"-bolt-path", filepath.Join(dir, "blog.db"),
			"-catalog", catalogPath,
			"-watch-catalog",
			"-log-level", "warn",
		})
	}()

	var addr net.Addr
	select {
	case addr = <-ready:
	case err := <-errc:
		t.Fatalf("serve returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not start")
	}
	base := "http://" + addr.String()

	body, err := json.Marshal(blog.NewPost{
		Title:   "Desk Review",
		Author:  "Ann",
		Content: `<p>Standing up.</p>{{block name="Product List" products="DESK1,SKU123"}}`,
	})
	require.NoError(t, err)
	resp, err := http.Post(base+"/api/posts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(base + "/posts/desk-review")
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), `data-sku="DESK1"`)
	assert.NotContains(t, string(page), `data-sku="SKU123"`, "file catalog replaces the demo products")

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}

	st, err := boltstore.Open(filepath.Join(dir, "blog.db"))
	require.NoError(t, err)
	defer st.Close()
	p, err := st.PostBySlug(context.Background(), "desk-review")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Author)
}

func TestRun_Import(t *testing.T) {
	dir := t.TempDir()
	posts := filepath.Join(dir, "posts")
	writeFile(t, filepath.Join(posts, "good.md"), "---\ntitle: Good Post\nauthor: Ann\n---\nHello there.\n")
	writeFile(t, filepath.Join(posts, "bad.md"), "---\ntitle: Bad Post\n---\nNo author.\n")
	writeFile(t, filepath.Join(posts, "notes.txt"), "ignored")
	dbPath := filepath.Join(dir, "blog.db")

	c, stdout, _ := newTestCLI()
	err := c.run(context.Background(), []string{"import", "-store", "bolt", "-bolt-path", dbPath, "-log-level", "error", posts})
	exitErr := requireExitCode(t, err, 1)
	assert.Equal(t, "1 posts failed to import", exitErr.Message)

	out := stdout.String()
	assert.Contains(t, out, "✓ Good Post (/posts/good-post)")
	assert.Contains(t, out, "✗ "+filepath.Join(posts, "bad.md"))
	assert.Contains(t, out, "1 imported, 1 failed")
	assert.NotContains(t, out, "\x1b[", "no colour when not writing to a terminal")

	st, err := boltstore.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.CountPosts(context.Background(), blog.Query{Page: 1, PageSize: blog.DefaultPageSize})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_ImportDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.jsonl")
	writeFile(t, path, `{"title":"One","author":"Ann","content":"<p>1</p>"}`+"\n"+
		`{"title":"Two","author":"Bob","content":"<p>2</p>"}`+"\n")

	c, stdout, _ := newTestCLI()
	require.NoError(t, c.run(context.Background(), []string{"import", "-dry-run", "-log-level", "error", path}))
	assert.Contains(t, stdout.String(), "2 valid, 0 failed (dry run)")
}

func TestRun_ImportMissingPath(t *testing.T) {
	c, _, _ := newTestCLI()
	err := c.run(context.Background(), []string{"import", "-log-level", "error", filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.FormatJSON
	cfg.LogLevel = "warn"

	logger, err := newLogger(&buf, cfg)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}
