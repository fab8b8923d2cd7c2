package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// file is the on-disk catalog layout shared by every format.
type file struct {
	Products []Product `json:"products" yaml:"products" toml:"products"`
}

// LoadFile reads a product list from path. The format is chosen by
// extension: .yaml, .yml, .toml or .json.
func LoadFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	products, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// Decode parses a product list in the format named by ext
// (with or without the leading dot) and validates it.
func Decode(data []byte, ext string) ([]Product, error) {
	var f file

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalid, ext)
	}

	if err := Validate(f.Products); err != nil {
		return nil, err
	}
	return f.Products, nil
}

// Validate checks that every product has a unique, non-empty SKU and a name.
func Validate(products []Product) error {
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.SKU) == "" {
			return fmt.Errorf("%w: product %d: sku is required", ErrInvalid, i)
		}
		if p.Name == "" {
			return fmt.Errorf("%w: product %s: name is required", ErrInvalid, p.SKU)
		}
		if seen[p.SKU] {
			return fmt.Errorf("%w: duplicate sku %s", ErrInvalid, p.SKU)
		}
		seen[p.SKU] = true
	}
	return nil
}
