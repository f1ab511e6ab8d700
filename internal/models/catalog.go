package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// LocalizedText maps a locale code ("en", "es", ...) to display text.
type LocalizedText map[string]string

// Resolve returns the text for locale, falling back to "en" and then to
// any available translation.
func (lt LocalizedText) Resolve(locale string) string {
	if text, ok := lt[locale]; ok {
		return text
	}
	if text, ok := lt["en"]; ok {
		return text
	}
	for _, text := range lt {
		return text
	}
	return ""
}

type MenuItem struct {
	ID          string        `json:"id"`
	CategoryID  string        `json:"category_id"`
	Price       float64       `json:"price"` // base price, never mutated after load
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Allergens   []string      `json:"allergens"`
}

func (m *MenuItem) DisplayName(locale string) string {
	return m.Name.Resolve(locale)
}

func (m *MenuItem) DisplayDescription(locale string) string {
	return m.Description.Resolve(locale)
}

type Category struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	ItemIDs []string `json:"item_ids"`
}

// Catalog is the read-only set of categories and menu items, loaded once
// at startup. Lookup maps are built on construction.
type Catalog struct {
	Categories []Category `json:"categories"`
	Items      []MenuItem `json:"items"`

	categoryIndex map[string]int
	itemIndex     map[string]int
}

// NewCatalog builds a catalog from categories and items, wiring every item
// into its category's ItemIDs in catalog order.
func NewCatalog(categories []Category, items []MenuItem) *Catalog {
	c := &Catalog{
		Categories:    categories,
		Items:         items,
		categoryIndex: make(map[string]int, len(categories)),
		itemIndex:     make(map[string]int, len(items)),
	}
	for i := range c.Categories {
		c.Categories[i].ItemIDs = nil
		c.categoryIndex[c.Categories[i].ID] = i
	}
	for i := range c.Items {
		item := &c.Items[i]
		c.itemIndex[item.ID] = i
		if ci, ok := c.categoryIndex[item.CategoryID]; ok {
			c.Categories[ci].ItemIDs = append(c.Categories[ci].ItemIDs, item.ID)
		}
	}
	return c
}

// Item returns the menu item with the given ID, or nil if unknown.
func (c *Catalog) Item(id string) *MenuItem {
	if i, ok := c.itemIndex[id]; ok {
		return &c.Items[i]
	}
	return nil
}

// Category returns the category with the given ID, or nil if unknown.
func (c *Catalog) Category(id string) *Category {
	if i, ok := c.categoryIndex[id]; ok {
		return &c.Categories[i]
	}
	return nil
}

// CategoryItems returns the items of a category in catalog order.
func (c *Catalog) CategoryItems(categoryID string) []*MenuItem {
	cat := c.Category(categoryID)
	if cat == nil {
		return nil
	}
	items := make([]*MenuItem, 0, len(cat.ItemIDs))
	for _, id := range cat.ItemIDs {
		if item := c.Item(id); item != nil {
			items = append(items, item)
		}
	}
	return items
}

// CatalogFile is the on-disk layout of a catalog file.
type CatalogFile struct {
	Categories        []Category         `json:"categories"`
	Items             []MenuItem         `json:"items"`
	AvailabilityRules []AvailabilityRule `json:"availability_rules"`
	PricingRules      []PricingRule      `json:"pricing_rules"`
	PromoCodes        []Discount         `json:"promo_codes"`
}

// LoadCatalogFile reads a catalog file and returns the immutable catalog,
// the operator-editable rule set and the promo code table.
func LoadCatalogFile(path string) (*Catalog, *RuleSet, []Discount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, nil, fmt.Errorf("error parsing catalog file %s: %w", path, err)
	}

	catalog := NewCatalog(file.Categories, file.Items)
	rules := NewRuleSet(file.AvailabilityRules, file.PricingRules)
	return catalog, rules, file.PromoCodes, nil
}
