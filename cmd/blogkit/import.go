package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/randalmurphal/blogkit/importer"
)

func (c *cli) importPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("blogkit import", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), `Usage:
  blogkit import [options] PATH...

Imports .md, .markdown, .html, .htm and .jsonl files. Directories are
walked recursively.

Options:
`)
		fs.PrintDefaults()
	}

	var common commonFlags
	common.register(fs)
	dryRun := fs.Bool("dry-run", false, "Validate posts without storing them.")

	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return &ExitError{Code: 2, Message: "import needs at least one PATH"}
	}

	cfg, err := loadConfig(fs, &common, nil)
	if err != nil {
		return err
	}
	logger, err := newLogger(c.stderr, cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []importer.Option{importer.WithLogger(logger)}
	if *dryRun {
		opts = append(opts, importer.WithDryRun())
	}
	imp := importer.New(st, opts...)

	total := &importer.Report{DryRun: *dryRun}
	for _, path := range fs.Args() {
		report, err := importPath(ctx, imp, path)
		if report != nil {
			total.Imported = append(total.Imported, report.Imported...)
			total.Failed = append(total.Failed, report.Failed...)
		}
		if err != nil {
			printReport(c.stdout, total)
			return err
		}
	}

	printReport(c.stdout, total)
	if len(total.Failed) > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d posts failed to import", len(total.Failed))}
	}
	return nil
}

func importPath(ctx context.Context, imp *importer.Importer, path string) (*importer.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return imp.ImportDir(ctx, path)
	}
	return imp.ImportFile(ctx, path)
}

// printReport writes a summary of r to w, coloured when w is a terminal.
func printReport(w io.Writer, r *importer.Report) {
	green := newColor(w, color.FgGreen)
	red := newColor(w, color.FgRed)
	cyan := newColor(w, color.FgCyan)

	verb := "imported"
	if r.DryRun {
		verb = "valid"
	}
	for _, p := range r.Imported {
		fmt.Fprintf(w, "%s %s %s\n", green.Sprint("✓"), p.Title, cyan.Sprintf("(/posts/%s)", p.Slug))
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "%s %s\n", red.Sprint("✗"), f.Error())
	}

	summary := fmt.Sprintf("%d %s, %d failed", len(r.Imported), verb, len(r.Failed))
	if r.DryRun {
		summary += " (dry run)"
	}
	if len(r.Failed) > 0 {
		fmt.Fprintln(w, red.Sprint(summary))
		return
	}
	fmt.Fprintln(w, green.Add(color.Bold).Sprint(summary))
}

func newColor(w io.Writer, attr color.Attribute) *color.Color {
	c := color.New(attr)
	if !isTerminal(w) {
		c.DisableColor()
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
