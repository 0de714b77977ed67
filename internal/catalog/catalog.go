package catalog

import (
	"github.com/jackrtech/jacks-telebot/internal/domain"
)

// Catalog is a read-only product index built once at startup.
type Catalog struct {
	ordered    []domain.Product
	byName     map[string]domain.Product
	categories []string
}

func New(products []domain.Product) *Catalog {
	c := &Catalog{
		ordered: products,
		byName:  make(map[string]domain.Product, len(products)),
	}
	seen := make(map[string]bool)
	for _, p := range products {
		c.byName[p.Name] = p
		if !seen[p.Category] {
			seen[p.Category] = true
			c.categories = append(c.categories, p.Category)
		}
	}
	return c
}

// Lookup resolves a product by its unique name.
func (c *Catalog) Lookup(name string) (domain.Product, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// All returns every product in catalog order.
func (c *Catalog) All() []domain.Product {
	return c.ordered
}

// Categories returns category names in catalog order.
func (c *Catalog) Categories() []string {
	return c.categories
}

// InCategory projects the flat catalog onto one category.
func (c *Catalog) InCategory(category string) []domain.Product {
	var out []domain.Product
	for _, p := range c.ordered {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
