package categories

import (
	"fmt"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
)

// MapCategories converts the parsed file to domain categories. Names are
// normalized, duplicates keep their first occurrence and a missing label
// falls back to the name.
func MapCategories(file File) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(file.Categories))
	seen := make(map[string]bool, len(file.Categories))

	for _, e := range file.Categories {
		name := domain.NormalizeCategory(e.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		label := e.Label
		if label == "" {
			label = name
		}
		out = append(out, domain.Category{Name: name, Label: label})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid categories found in config")
	}
	return out, nil
}

// LoadCategories reads and maps the file at path in one step.
func LoadCategories(path string) ([]domain.Category, error) {
	file, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return MapCategories(file)
}
