package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphal/blogkit/blocks"
	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/store"
)

// Report summarizes an import.
type Report struct {
	// Imported holds the stored posts, in import order. In a dry run it
	// holds the posts that would have been stored, without ids.
	Imported []blog.Post

	// Failed holds the posts that were rejected.
	Failed []Failure

	DryRun bool
}

// Importer stores posts read from files.
type Importer struct {
	store  store.Store
	logger *slog.Logger
	dryRun bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger for per-post results.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

// WithDryRun validates posts without storing them.
func WithDryRun() Option {
	return func(i *Importer) {
		i.dryRun = true
	}
}

// New creates an importer that writes to st.
func New(st store.Store, opts ...Option) *Importer {
	i := &Importer{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IsSource reports whether path has an extension the importer reads.
func IsSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".html", ".htm", ".jsonl":
		return true
	}
	return false
}

// ImportDir imports every source file under dir, in lexical order.
// Per-post failures are collected in the report; the returned error is
// reserved for failures to read the tree and for cancellation.
func (i *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	report := &Report{DryRun: i.dryRun}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSource(path) {
			return nil
		}
		return i.importFile(ctx, path, report)
	})
	if err != nil {
		return report, fmt.Errorf("import %s: %w", dir, err)
	}
	return report, nil
}

// ImportFile imports a single source file.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Report, error) {
	report := &Report{DryRun: i.dryRun}
	if err := i.importFile(ctx, path, report); err != nil {
		return report, err
	}
	return report, nil
}

func (i *Importer) importFile(ctx context.Context, path string, report *Report) error {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return i.importJSONL(ctx, f, path, report)
	}

	post, err := ParseFile(path)
	if err != nil {
		i.fail(report, path, err)
		return ctx.Err()
	}
	return i.importPost(ctx, path, post, report)
}

// ImportJSONL imports one post per line from r. source names r in failures.
func (i *Importer) ImportJSONL(ctx context.Context, r io.Reader, source string) (*Report, error) {
	report := &Report{DryRun: i.dryRun}
	if err := i.importJSONL(ctx, r, source, report); err != nil {
		return report, err
	}
	return report, nil
}

func (i *Importer) importJSONL(ctx context.Context, r io.Reader, source string, report *Report) error {
	records, err := ReadJSONL(r)
	if err != nil {
		// Line errors are per-post failures; anything else is fatal.
		lineErrs := unwrapLineErrors(err)
		if lineErrs == nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		for _, le := range lineErrs {
			i.fail(report, fmt.Sprintf("%s:%d", source, le.Line), le.Err)
		}
	}

	for _, rec := range records {
		if err := i.importPost(ctx, fmt.Sprintf("%s:%d", source, rec.Line), rec.Post, report); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) importPost(ctx context.Context, source string, post blog.NewPost, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := post.Validate(); err != nil {
		i.fail(report, source, err)
		return nil
	}
	if _, err := blocks.Parse(post.Content); err != nil {
		i.fail(report, source, err)
		return nil
	}

	if i.dryRun {
		p := post.Build("", time.Now())
		report.Imported = append(report.Imported, p)
		i.logger.Info("post valid", "source", source, "slug", p.Slug)
		return nil
	}

	p, err := i.store.CreatePost(ctx, post)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		i.fail(report, source, err)
		return nil
	}
	report.Imported = append(report.Imported, p)
	i.logger.Info("post imported", "source", source, "id", p.ID, "slug", p.Slug)
	return nil
}

func (i *Importer) fail(report *Report, source string, err error) {
	report.Failed = append(report.Failed, Failure{Source: source, Err: err})
	i.logger.Warn("post rejected", "source", source, "error", err)
}

// unwrapLineErrors returns the *LineError values joined in err, or nil if
// err contains anything else.
func unwrapLineErrors(err error) []*LineError {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []*LineError
	for _, e := range joined.Unwrap() {
		le, ok := e.(*LineError)
		if !ok {
			return nil
		}
		out = append(out, le)
	}
	return out
}
