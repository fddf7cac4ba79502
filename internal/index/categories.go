package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
)

// CategoryIndex holds the closed set of categories the popup may offer.
// An empty index accepts any non-empty category.
type CategoryIndex struct {
	mu         sync.RWMutex
	categories []domain.Category   // display order
	byName     map[string]struct{} // Name -> present
	lastReload time.Time           // Timestamp of last reload
}

// NewCategoryIndex creates an index seeded with categories.
func NewCategoryIndex(categories []domain.Category) *CategoryIndex {
	idx := &CategoryIndex{}
	idx.replace(categories)
	return idx
}

// Update replaces all categories in the index
func (idx *CategoryIndex) Update(categories []domain.Category) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.replace(categories)
	idx.lastReload = time.Now()
}

func (idx *CategoryIndex) replace(categories []domain.Category) {
	idx.categories = make([]domain.Category, 0, len(categories))
	idx.byName = make(map[string]struct{}, len(categories))
	for _, c := range categories {
		name := domain.NormalizeCategory(c.Name)
		if name == "" {
			continue
		}
		if _, dup := idx.byName[name]; dup {
			continue
		}
		label := c.Label
		if label == "" {
			label = name
		}
		idx.byName[name] = struct{}{}
		idx.categories = append(idx.categories, domain.Category{Name: name, Label: label})
	}
}

// Contains reports whether name is an accepted category.
func (idx *CategoryIndex) Contains(name string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.byName) == 0 {
		return name != ""
	}
	_, ok := idx.byName[name]
	return ok
}

// All returns the categories in display order
func (idx *CategoryIndex) All() []domain.Category {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Category, len(idx.categories))
	copy(out, idx.categories)
	return out
}

// Count returns the number of categories in the index
func (idx *CategoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.categories)
}

// GetLastReload returns the timestamp of the last reload
func (idx *CategoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
