package catalog

import (
	"errors"
	"sync"
)

// ErrInvalid is returned when a product list fails validation.
var ErrInvalid = errors.New("invalid catalog")

// Product is a purchasable item referenced from blocks by SKU.
type Product struct {
	SKU   string `json:"sku" yaml:"sku" toml:"sku"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Price string `json:"price" yaml:"price" toml:"price"`
	Image string `json:"image" yaml:"image" toml:"image"`
}

// Catalog is an ordered, SKU-indexed product set.
type Catalog struct {
	mu       sync.RWMutex
	products []Product
	bySKU    map[string]int
}

// New creates a catalog holding a copy of products.
func New(products []Product) *Catalog {
	c := &Catalog{}
	c.Replace(products)
	return c
}

// Default returns a catalog with the built-in demo products.
func Default() *Catalog {
	return New(DemoProducts())
}

// DemoProducts returns the built-in demo products.
func DemoProducts() []Product {
	return []Product{
		{SKU: "SKU123", Name: "Mechanical Keyboard", Price: "$99", Image: "/keyboard.jpg"},
		{SKU: "SKU456", Name: "Gaming Mouse", Price: "$49", Image: "/mouse.png"},
		{SKU: "SKU789", Name: "Monitor", Price: "$199", Image: "/monitor.jpg"},
	}
}

// Replace swaps the catalog contents for a copy of products.
// If a SKU repeats, the first occurrence is indexed.
func (c *Catalog) Replace(products []Product) {
	cp := make([]Product, len(products))
	copy(cp, products)

	idx := make(map[string]int, len(cp))
	for i, p := range cp {
		if _, dup := idx[p.SKU]; !dup {
			idx[p.SKU] = i
		}
	}

	c.mu.Lock()
	c.products = cp
	c.bySKU = idx
	c.mu.Unlock()
}

// Products returns a copy of all products in catalog order.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get returns the product with the given SKU.
func (c *Catalog) Get(sku string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.bySKU[sku]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Lookup returns the products whose SKU appears in skus, in catalog order.
// Unknown SKUs are ignored and duplicates in skus have no effect.
func (c *Catalog) Lookup(skus []string) []Product {
	if len(skus) == 0 {
		return nil
	}

	want := make(map[string]bool, len(skus))
	for _, s := range skus {
		want[s] = true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Product
	for _, p := range c.products {
		if want[p.SKU] {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
