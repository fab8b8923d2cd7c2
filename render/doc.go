// Package render turns post content into HTML.
//
// Content is split at its {{block ...}} tags. Text between tags is
// passed through as markup (converted from Markdown first for Markdown
// posts, and sanitized unless disabled). Each tag is rendered by the
// widget registered under its name:
//
//	reg := render.NewRegistry()
//	render.RegisterDefaults(reg, template.NewEngine(), catalog.Default())
//	r := render.NewRenderer(reg, render.Options{Sanitize: true})
//	out, err := r.RenderContent(post.Content, post.Format)
//
// The default widgets are "Top Picks" and "Product List" (a product grid
// resolved through the catalog) and "Image Showcase". A tag naming no
// registered widget renders a visible "Unknown block" notice instead of
// failing the page.
//
// A malformed tag fails the whole render with a *blocks.MalformedBlockError
// unless Options.Lenient is set, in which case the tag is shown as text.
package render
