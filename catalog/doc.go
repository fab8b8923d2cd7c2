// Package catalog holds the products that block widgets display.
//
// Product List and Top Picks blocks reference products by SKU:
//
//	{{block name="Top Picks" products="SKU123, SKU789"}}
//
// The catalog resolves those SKUs. It starts from a built-in set of demo
// products, can be loaded from a YAML, TOML or JSON file, and can follow
// that file for changes:
//
//	cat := catalog.Default()
//	if path != "" {
//	    products, err := catalog.LoadFile(path)
//	    ...
//	    cat.Replace(products)
//	    go catalog.Watch(ctx, path, cat, catalog.WatchOptions{Logger: logger})
//	}
//
// A Catalog is safe for concurrent use.
package catalog
