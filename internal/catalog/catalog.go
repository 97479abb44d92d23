// Package catalog loads the affiliate product catalog and resolves
// LLM-suggested product names against it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/topicalmd/contentpipe/internal/model"
)

// Catalog is the loaded affiliate product set with a name index
type Catalog struct {
	products []model.Product
	byName   map[string]model.Product
}

type catalogFile struct {
	Products []model.Product `json:"products"`
}

// Load reads the catalog JSON file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	return New(file.Products), nil
}

// New builds a catalog from an in-memory product list
func New(products []model.Product) *Catalog {
	byName := make(map[string]model.Product, len(products))
	for _, p := range products {
		byName[p.ProductName] = p
	}
	return &Catalog{products: products, byName: byName}
}

// All returns every product in catalog order
func (c *Catalog) All() []model.Product {
	return c.products
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Resolve maps product names to catalog entries by exact name. Unmatched
// names are dropped rather than failing: upstream names are LLM-generated
// and will sometimes miss. The dropped count is returned so callers can
// surface how many products never reached the writer.
func (c *Catalog) Resolve(names []string) (matched []model.Product, dropped int) {
	for _, name := range names {
		if p, ok := c.byName[name]; ok {
			matched = append(matched, p)
		} else {
			dropped++
		}
	}
	return matched, dropped
}
