package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/blogkit/catalog"
	"github.com/randalmurphal/blogkit/config"
	"github.com/randalmurphal/blogkit/render"
	"github.com/randalmurphal/blogkit/server"
	tmpl "github.com/randalmurphal/blogkit/template"
)

func (c *cli) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("blogkit serve", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "Listen address, e.g. ':8080'.")
	catalogPath := fs.String("catalog", "", "Product catalog file (YAML, TOML or JSON).")
	watch := fs.Bool("watch-catalog", false, "Reload the catalog file when it changes.")
	lenient := fs.Bool("lenient-blocks", false, "Render malformed block tags as text.")

	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return &ExitError{Code: 2, Message: fmt.Sprintf("serve takes no arguments, got %q", fs.Args())}
	}

	cfg, err := loadConfig(fs, &common, func(cfg *config.Config, name string) {
		switch name {
		case "addr":
			cfg.Addr = *addr
		case "catalog":
			cfg.CatalogPath = *catalogPath
		case "watch-catalog":
			cfg.WatchCatalog = *watch
		case "lenient-blocks":
			cfg.LenientBlocks = *lenient
		}
	})
	if err != nil {
		return err
	}

	logger, err := newLogger(c.stderr, cfg)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		products, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return err
		}
		cat.Replace(products)
	}
	logger.Info("catalog loaded", "products", cat.Len(), "path", cfg.CatalogPath)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()
	logger.Info("store opened", "backend", cfg.Store)

	reg := render.NewRegistry()
	render.RegisterDefaults(reg, tmpl.NewEngine(), cat)
	renderer := render.NewRenderer(reg, render.Options{
		Sanitize: cfg.Sanitize,
		Lenient:  cfg.LenientBlocks,
	})

	srv := server.New(st, renderer, server.Options{
		Logger:   logger,
		PageSize: cfg.PageSize,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, server.HTTPConfig{
			Addr:            cfg.Addr,
			ReadTimeout:     cfg.ReadTimeout.Std(),
			WriteTimeout:    cfg.WriteTimeout.Std(),
			ShutdownTimeout: cfg.ShutdownTimeout.Std(),
		}, c.ready)
	})
	if cfg.WatchCatalog {
		g.Go(func() error {
			return catalog.Watch(gctx, cfg.CatalogPath, cat, catalog.WatchOptions{
				Logger: logger.With(slog.String("component", "catalog")),
			})
		})
	}

	return g.Wait()
}
