package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cat := Default()

	assert.Equal(t, 3, cat.Len())
	p, ok := cat.Get("SKU456")
	require.True(t, ok)
	assert.Equal(t, "Gaming Mouse", p.Name)
	assert.Equal(t, "$49", p.Price)
	assert.Equal(t, "/mouse.png", p.Image)
}

func TestCatalog_Lookup(t *testing.T) {
	cat := Default()

	tests := []struct {
		name string
		skus []string
		want []string
	}{
		{name: "catalog order wins", skus: []string{"SKU789", "SKU123"}, want: []string{"SKU123", "SKU789"}},
		{name: "unknown ignored", skus: []string{"NOPE", "SKU456"}, want: []string{"SKU456"}},
		{name: "duplicates collapse", skus: []string{"SKU123", "SKU123"}, want: []string{"SKU123"}},
		{name: "none match", skus: []string{"NOPE"}, want: nil},
		{name: "empty", skus: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range cat.Lookup(tt.skus) {
				got = append(got, p.SKU)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_ReplaceCopies(t *testing.T) {
	in := []Product{{SKU: "A", Name: "Alpha"}}
	cat := New(in)
	in[0].Name = "mutated"

	p, ok := cat.Get("A")
	require.True(t, ok)
	assert.Equal(t, "Alpha", p.Name)

	out := cat.Products()
	out[0].Name = "mutated"
	p, _ = cat.Get("A")
	assert.Equal(t, "Alpha", p.Name)

	cat.Replace(nil)
	assert.Equal(t, 0, cat.Len())
	_, ok = cat.Get("A")
	assert.False(t, ok)
}

func TestCatalog_Concurrent(t *testing.T) {
	cat := Default()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cat.Replace(DemoProducts())
		}()
		go func() {
			defer wg.Done()
			_ = cat.Lookup([]string{"SKU123"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, cat.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"products.yaml": `
products:
  - sku: K1
    name: Keyboard
    price: "$99"
    image: /k.jpg
`,
		"products.toml": `
[[products]]
sku = "K1"
name = "Keyboard"
price = "$99"
image = "/k.jpg"
`,
		"products.json": `{"products":[{"sku":"K1","name":"Keyboard","price":"$99","image":"/k.jpg"}]}`,
	}

	want := []Product{{SKU: "K1", Name: "Keyboard", Price: "$99", Image: "/k.jpg"}}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "products.ini")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Decode([]byte("products: [unclosed"), "yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DemoProducts()))
	assert.ErrorIs(t, Validate([]Product{{Name: "no sku"}}), ErrInvalid)
	assert.ErrorIs(t, Validate([]Product{{SKU: "A"}}), ErrInvalid)
	assert.ErrorIs(t, Validate([]Product{{SKU: "A", Name: "a"}, {SKU: "A", Name: "b"}}), ErrInvalid)
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products: []\n"), 0o644))

	cat := Default()
	var failures atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, cat, WatchOptions{
			Debounce: 10 * time.Millisecond,
			OnReload: func(_ int, err error) {
				if err != nil {
					failures.Add(1)
				}
			},
		})
	}()

	// Rewrite on every tick: the first writes may land before the watch is registered.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("products:\n  - sku: Z1\n    name: Zed\n"), 0o644)
		return cat.Len() == 1
	}, 5*time.Second, 50*time.Millisecond)

	p, ok := cat.Get("Z1")
	require.True(t, ok)
	assert.Equal(t, "Zed", p.Name)

	// A broken file keeps the current products.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("products:\n  - name: missing sku\n"), 0o644)
		return failures.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, 1, cat.Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "p.yaml"), Default(), WatchOptions{})
	assert.Error(t, err)
}
