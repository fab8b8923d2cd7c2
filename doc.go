// Package blogkit is a blog engine whose posts embed product blocks.
//
// Post content is HTML or Markdown with {{block ...}} tags such as
//
//	{{block name="Top Picks" products="SKU123,SKU456" image="/picks.jpg"}}
//
// which are replaced by widgets when a post is displayed. The subpackages
// can be used independently:
//
//   - blocks: parse block tags and split content into text and block segments
//   - template: Handlebars-style widget templates on html/template
//   - catalog: the SKU-indexed product catalog, loaded from YAML, TOML or JSON
//   - render: the widget registry and the post renderer (Markdown, sanitizing)
//   - excerpt: plain text, snippets, reading time and word-aware truncation
//   - blog: posts, comments, validation, slugs and listing queries
//   - store: the storage interface, with memstore and boltstore backends
//   - importer: bulk import from front-matter documents and JSONL
//   - config: server configuration from files and the environment
//   - server: the JSON API and HTML pages
//
// # Quick Start
//
// Rendering content:
//
//	import (
//		"github.com/randalmurphal/blogkit/blog"
//		"github.com/randalmurphal/blogkit/catalog"
//		"github.com/randalmurphal/blogkit/render"
//		"github.com/randalmurphal/blogkit/template"
//	)
//
//	reg := render.NewRegistry()
//	render.RegisterDefaults(reg, template.NewEngine(), catalog.Default())
//	r := render.NewRenderer(reg, render.Options{Sanitize: true})
//	html, err := r.RenderContent(`<p>Hi</p>{{block name="Top Picks" products="SKU123"}}`, blog.FormatHTML)
//
// Serving:
//
//	st := memstore.New()
//	srv := server.New(st, r, server.Options{})
//	err := srv.ListenAndServe(ctx, server.HTTPConfig{Addr: ":8080"}, nil)
//
// The blogkit command in cmd/blogkit wires these together behind the
// serve and import subcommands.
package blogkit
