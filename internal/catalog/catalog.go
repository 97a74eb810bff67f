// Package catalog serves the vendors and predefined items that instant tasks are ordered from.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"hustle/internal/domain"
)

var (
	// ErrItemNotFound is returned when an item id is not in the catalog.
	ErrItemNotFound = errors.New("item not found")

	// ErrVendorNotFound is returned when a vendor id is not in the catalog.
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrItemUnavailable is returned when an item exists but cannot be ordered.
	ErrItemUnavailable = errors.New("item unavailable")
)

//go:embed catalog.yaml
var defaultCatalog []byte

type document struct {
	Vendors []domain.Vendor         `yaml:"vendors"`
	Items   []domain.PredefinedItem `yaml:"items"`
}

// Catalog is an immutable, indexed set of vendors and items.
type Catalog struct {
	vendors   []domain.Vendor
	items     []domain.PredefinedItem
	vendorIdx map[string]int
	itemIdx   map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Every item must reference a known vendor.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		vendors:   doc.Vendors,
		items:     doc.Items,
		vendorIdx: make(map[string]int, len(doc.Vendors)),
		itemIdx:   make(map[string]int, len(doc.Items)),
	}
	for i, v := range c.vendors {
		if _, dup := c.vendorIdx[v.ID]; dup {
			return nil, fmt.Errorf("duplicate vendor %q", v.ID)
		}
		c.vendorIdx[v.ID] = i
	}
	for i, item := range c.items {
		if _, dup := c.itemIdx[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item %q", item.ID)
		}
		if _, ok := c.vendorIdx[item.VendorID]; !ok {
			return nil, fmt.Errorf("item %q references unknown vendor %q", item.ID, item.VendorID)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("item %q has negative price", item.ID)
		}
		c.itemIdx[item.ID] = i
	}

	return c, nil
}

// Vendors returns all vendors.
func (c *Catalog) Vendors() []domain.Vendor {
	return append([]domain.Vendor(nil), c.vendors...)
}

// Vendor returns a vendor by id.
func (c *Catalog) Vendor(id string) (domain.Vendor, error) {
	i, ok := c.vendorIdx[id]
	if !ok {
		return domain.Vendor{}, ErrVendorNotFound
	}
	return c.vendors[i], nil
}

// Item returns an item by id.
func (c *Catalog) Item(id string) (domain.PredefinedItem, error) {
	i, ok := c.itemIdx[id]
	if !ok {
		return domain.PredefinedItem{}, ErrItemNotFound
	}
	return c.items[i], nil
}

// OrderableItem returns an item together with its vendor, failing if either
// is closed or unavailable.
func (c *Catalog) OrderableItem(id string) (domain.PredefinedItem, domain.Vendor, error) {
	item, err := c.Item(id)
	if err != nil {
		return domain.PredefinedItem{}, domain.Vendor{}, err
	}
	vendor, err := c.Vendor(item.VendorID)
	if err != nil {
		return domain.PredefinedItem{}, domain.Vendor{}, err
	}
	if !item.IsAvailable || !vendor.IsOpen {
		return domain.PredefinedItem{}, domain.Vendor{}, ErrItemUnavailable
	}
	return item, vendor, nil
}

// ItemFilter narrows Items. Empty fields match everything.
type ItemFilter struct {
	VendorID      string
	Category      string
	AvailableOnly bool
}

// Items returns the items matching f in catalog order.
func (c *Catalog) Items(f ItemFilter) []domain.PredefinedItem {
	out := make([]domain.PredefinedItem, 0, len(c.items))
	for _, item := range c.items {
		if f.VendorID != "" && item.VendorID != f.VendorID {
			continue
		}
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.AvailableOnly && !item.IsAvailable {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Categories returns the distinct item categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	for _, item := range c.items {
		seen[item.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
