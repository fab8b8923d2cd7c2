package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change event
// before reloading.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce coalesces bursts of events. Zero means DefaultDebounce.
	Debounce time.Duration

	// Logger receives reload results. Nil uses slog.Default().
	Logger *slog.Logger

	// OnReload, if set, is called after every reload attempt with the
	// new product count or the error that kept the old catalog.
	OnReload func(n int, err error)
}

// Watch reloads cat from path whenever the file changes, until ctx is done.
//
// The parent directory is watched rather than the file so that editors
// which replace the file via rename are followed. A reload that fails to
// parse or validate is logged and the current products are kept.
func Watch(ctx context.Context, path string, cat *Catalog, opts WatchOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	base := filepath.Base(path)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			reload(path, cat, logger, opts.OnReload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", "path", path, "error", err)
		}
	}
}

func reload(path string, cat *Catalog, logger *slog.Logger, onReload func(int, error)) {
	products, err := LoadFile(path)
	if err != nil {
		logger.Warn("catalog reload failed, keeping current products", "path", path, "error", err)
	} else {
		cat.Replace(products)
		logger.Info("catalog reloaded", "path", path, "products", len(products))
	}
	if onReload != nil {
		onReload(len(products), err)
	}
}
