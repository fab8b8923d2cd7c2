package render

import (
	"fmt"
	"html/template"

	"github.com/randalmurphal/blogkit/blocks"
	"github.com/randalmurphal/blogkit/catalog"
	tmpl "github.com/randalmurphal/blogkit/template"
)

// Names of the built-in widgets.
const (
	TopPicks      = "Top Picks"
	ProductList   = "Product List"
	ImageShowcase = "Image Showcase"
)

// EmptyProductsText is shown by product widgets with nothing to list.
const EmptyProductsText = "No products available for this block."

const productGridSrc = `<div class="block block-products">` +
	`<h3 class="block-title">{{title}}</h3>` +
	`{{#if image}}<div class="block-image"><img src="{{image}}" alt="{{title}}" width="400" height="200"></div>{{/if}}` +
	`{{#if products}}<div class="product-grid">` +
	`{{#each products}}<div class="product-card" data-sku="{{sku}}">` +
	`<img src="{{image}}" alt="{{name}}" width="100" height="100">` +
	`<h4>{{name}}</h4><p class="price">{{price}}</p>` +
	`<button type="button">Buy Now</button></div>{{/each}}` +
	`</div>{{else}}<p class="block-empty">{{empty}}</p>{{/if}}` +
	`</div>`

const showcaseSrc = `<div class="block block-showcase">` +
	`{{#if image}}<img src="{{image}}" alt="{{alt}}" width="800" height="400">{{/if}}` +
	`</div>`

const unknownSrc = `<div class="block block-unknown">Unknown block: {{name}}</div>`

var unknownTmpl = tmpl.NewEngine().MustCompile("unknown", unknownSrc)

func unknownBlock(tag blocks.Tag) (template.HTML, error) {
	return unknownTmpl.Render(map[string]any{"name": tag.Name})
}

// TemplateWidget renders a block through a compiled template. Its
// variables are the tag's attributes (Tag.Map) plus whatever Vars adds.
type TemplateWidget struct {
	Template *tmpl.Template

	// Vars, if set, adjusts the variables before execution.
	Vars func(tag blocks.Tag, vars map[string]any) error
}

// Render implements Widget. Variables the template references but the tag
// does not set render as empty strings.
func (w TemplateWidget) Render(tag blocks.Tag) (template.HTML, error) {
	vars := tag.Map()
	for _, name := range w.Template.Variables() {
		if _, ok := vars[name]; !ok {
			vars[name] = ""
		}
	}
	if w.Vars != nil {
		if err := w.Vars(tag, vars); err != nil {
			return "", err
		}
	}
	return w.Template.Render(vars)
}

// RegisterTemplate compiles src with engine and registers it under name.
// The template sees the tag's attributes as variables, with "name" set
// to the block name.
func (r *Registry) RegisterTemplate(engine *tmpl.Engine, name, src string) error {
	t, err := engine.Compile("widget:"+name, src)
	if err != nil {
		return fmt.Errorf("widget %q: %w", name, err)
	}
	r.Register(name, TemplateWidget{Template: t})
	return nil
}

// RegisterDefaults registers the built-in widgets, resolving product SKUs
// through cat.
func RegisterDefaults(r *Registry, engine *tmpl.Engine, cat *catalog.Catalog) {
	grid := TemplateWidget{
		Template: engine.MustCompile("widget:products", productGridSrc),
		Vars: func(tag blocks.Tag, vars map[string]any) error {
			vars["title"] = tag.Name
			vars["image"] = tag.Image()
			vars["products"] = productVars(cat.Lookup(tag.Products()))
			vars["empty"] = EmptyProductsText
			return nil
		},
	}
	r.Register(TopPicks, grid)
	r.Register(ProductList, grid)

	r.Register(ImageShowcase, TemplateWidget{
		Template: engine.MustCompile("widget:showcase", showcaseSrc),
		Vars: func(tag blocks.Tag, vars map[string]any) error {
			vars["image"] = tag.Image()
			vars["alt"] = ImageShowcase
			return nil
		},
	})
}

func productVars(products []catalog.Product) []map[string]any {
	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		out = append(out, map[string]any{
			"sku":   p.SKU,
			"name":  p.Name,
			"price": p.Price,
			"image": p.Image,
		})
	}
	return out
}
