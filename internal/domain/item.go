package domain

import "time"

// SavedAtLayout is the human-readable layout used for Item.SavedAt.
const SavedAtLayout = "1/2/2006, 3:04:05 PM"

// Item represents one saved, tagged reference to a page.
type Item struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is derived from the creation time in milliseconds.
	// It is strictly increasing within a store.
	ID int64 `json:"id"`

	// ─────────────────────────────
	// User input
	// ─────────────────────────────

	// Category is one of the UI-offered categories.
	// Example: books
	Category string `json:"category"`

	// URL of the tab the item was saved from. Opaque to the store.
	URL string `json:"url"`

	// Title is the tab title, possibly truncated by the caller.
	Title string `json:"title"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// SavedAt is the creation time formatted with SavedAtLayout.
	SavedAt string `json:"savedAt"`
}

// NewItem builds an item created at now.
func NewItem(id int64, category, url, title string, now time.Time) Item {
	return Item{
		ID:       id,
		Category: category,
		URL:      url,
		Title:    title,
		SavedAt:  now.Format(SavedAtLayout),
	}
}

// Clone returns an independent copy of the item.
func (i Item) Clone() Item {
	return Item{
		ID:       i.ID,
		Category: i.Category,
		URL:      i.URL,
		Title:    i.Title,
		SavedAt:  i.SavedAt,
	}
}

// CloneItems returns a snapshot of items that shares no memory with the input.
// The result is never nil so that an empty snapshot encodes as [].
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func IndexOf(items []Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// MaxID returns the largest id in items, or 0 for an empty list.
func MaxID(items []Item) int64 {
	var highest int64
	for _, it := range items {
		if it.ID > highest {
			highest = it.ID
		}
	}
	return highest
}
