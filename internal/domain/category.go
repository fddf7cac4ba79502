package domain

import "strings"

// Category is one entry of the closed set offered by the popup.
type Category struct {
	// Name is the canonical, lowercased value stored on items.
	Name string `json:"name" yaml:"name"`

	// Label is the display text. Defaults to Name.
	Label string `json:"label" yaml:"label"`
}

var defaultCategories = []Category{
	{Name: "books", Label: "Books"},
	{Name: "electronics", Label: "Electronics"},
	{Name: "clothing", Label: "Clothing"},
	{Name: "home", Label: "Home & Kitchen"},
	{Name: "beauty", Label: "Beauty"},
	{Name: "sports", Label: "Sports"},
	{Name: "toys", Label: "Toys"},
	{Name: "food", Label: "Food"},
	{Name: "other", Label: "Other"},
}

// DefaultCategories returns the built-in category set.
func DefaultCategories() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// NormalizeCategory lowercases and trims a category name.
func NormalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
