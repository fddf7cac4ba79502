package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPreviewTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		max      int
		expected string
	}{
		{
			name:     "empty title uses default",
			title:    "",
			max:      50,
			expected: DefaultTitle,
		},
		{
			name:     "short title unchanged",
			title:    "Go Programming Language",
			max:      50,
			expected: "Go Programming Language",
		},
		{
			name:     "long title truncated",
			title:    "abcdefghijklmnopqrstuvwxyz",
			max:      10,
			expected: "abcdefghij",
		},
		{
			name:     "truncation counts runes",
			title:    "日本語のタイトルです",
			max:      3,
			expected: "日本語",
		},
		{
			name:     "zero max disables truncation",
			title:    "abcdefghijklmnopqrstuvwxyz",
			max:      0,
			expected: "abcdefghijklmnopqrstuvwxyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PreviewTitle(tt.title, tt.max)
			if result != tt.expected {
				t.Errorf("PreviewTitle() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestUndoMessage(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionAdd, "Item addition undone"},
		{ActionDelete, "Item deletion undone"},
		{ActionClearAll, "Clear all undone"},
		{Action("rename"), MsgActionUndone},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := UndoMessage(tt.action); got != tt.expected {
				t.Errorf("UndoMessage(%q) = %q, want %q", tt.action, got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"invalid category", ErrInvalidCategory, MsgSelectCategory},
		{"not found wrapped", fmt.Errorf("remove 42: %w", ErrNotFound), MsgItemNotFound},
		{"empty history", ErrEmptyHistory, MsgNothingToUndo},
		{"persistence", fmt.Errorf("%w: boom", ErrPersistence), MsgStorageFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.expected {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCloneItemsDoesNotAlias(t *testing.T) {
	items := []Item{
		{ID: 1, Category: "books", URL: "https://a.example", Title: "A"},
		{ID: 2, Category: "toys", URL: "https://b.example", Title: "B"},
	}

	snapshot := CloneItems(items)
	items[0].Title = "changed"
	items = append(items[:1], items[2:]...)

	if len(snapshot) != 2 {
		t.Fatalf("CloneItems() length = %d, want 2", len(snapshot))
	}
	if snapshot[0].Title != "A" {
		t.Errorf("snapshot[0].Title = %q, want %q", snapshot[0].Title, "A")
	}
	if snapshot[1].ID != 2 {
		t.Errorf("snapshot[1].ID = %d, want 2", snapshot[1].ID)
	}
}

func TestCloneItemsEmptyIsNotNil(t *testing.T) {
	snapshot := CloneItems(nil)
	if snapshot == nil {
		t.Fatal("CloneItems(nil) returned nil, want empty slice")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("json.Marshal(CloneItems(nil)) = %s, want []", data)
	}
}

func TestHistoryEntryClone(t *testing.T) {
	item := Item{ID: 7, Category: "books", Title: "Dune"}
	entry := NewHistoryEntry(ActionDelete, &item, []Item{item}, time.UnixMilli(1000))

	item.Title = "mutated"
	clone := entry.Clone()
	entry.Item.Title = "entry mutated"
	entry.PreviousState[0].Title = "entry mutated"

	if clone.Item.Title != "Dune" {
		t.Errorf("clone.Item.Title = %q, want %q", clone.Item.Title, "Dune")
	}
	if clone.PreviousState[0].Title != "Dune" {
		t.Errorf("clone.PreviousState[0].Title = %q, want %q", clone.PreviousState[0].Title, "Dune")
	}
	if clone.Timestamp != 1000 {
		t.Errorf("clone.Timestamp = %d, want 1000", clone.Timestamp)
	}
}

func TestHistoryEntryJSONFieldNames(t *testing.T) {
	entry := NewHistoryEntry(ActionClearAll, nil, nil, time.UnixMilli(1700000000000))

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	expected := `{"action":"clearAll","item":null,"previousState":[],"timestamp":1700000000000}`
	if string(data) != expected {
		t.Errorf("json.Marshal() = %s, want %s", data, expected)
	}
}

func TestActionUnmarshalRejectsUnknown(t *testing.T) {
	var entry HistoryEntry
	err := json.Unmarshal([]byte(`{"action":"rename","item":null,"previousState":[],"timestamp":1}`), &entry)
	if err == nil {
		t.Fatal("json.Unmarshal() with unknown action should return error")
	}

	var ok HistoryEntry
	if err := json.Unmarshal([]byte(`{"action":"delete","item":{"id":1},"previousState":[],"timestamp":1}`), &ok); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if ok.Action != ActionDelete {
		t.Errorf("Action = %q, want %q", ok.Action, ActionDelete)
	}
}

func TestNewItemSavedAt(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 4, 5, 0, time.UTC)
	item := NewItem(1, "books", "https://example.com", "Example", now)

	if item.SavedAt != "3/4/2026, 3:04:05 PM" {
		t.Errorf("SavedAt = %q, want %q", item.SavedAt, "3/4/2026, 3:04:05 PM")
	}
}

func TestMaxIDAndIndexOf(t *testing.T) {
	items := []Item{{ID: 5}, {ID: 9}, {ID: 3}}

	if got := MaxID(items); got != 9 {
		t.Errorf("MaxID() = %d, want 9", got)
	}
	if got := MaxID(nil); got != 0 {
		t.Errorf("MaxID(nil) = %d, want 0", got)
	}
	if got := IndexOf(items, 3); got != 2 {
		t.Errorf("IndexOf(3) = %d, want 2", got)
	}
	if got := IndexOf(items, 42); got != -1 {
		t.Errorf("IndexOf(42) = %d, want -1", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory("  Books "); got != "books" {
		t.Errorf("NormalizeCategory() = %q, want %q", got, "books")
	}
	if !errors.Is(fmt.Errorf("wrap: %w", ErrPersistence), ErrPersistence) {
		t.Error("wrapped ErrPersistence should match errors.Is")
	}
}
