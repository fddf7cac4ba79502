package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the kind of mutation recorded in a HistoryEntry.
type Action string

const (
	ActionAdd      Action = "add"
	ActionDelete   Action = "delete"
	ActionClearAll Action = "clearAll"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionDelete, ActionClearAll:
		return true
	default:
		return false
	}
}

// UnmarshalJSON rejects unknown action names so a corrupted history
// is detected at load time instead of at undo time.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	act := Action(s)
	if !act.Valid() {
		return fmt.Errorf("unknown history action %q", s)
	}
	*a = act
	return nil
}

// HistoryEntry records one reversible mutation.
type HistoryEntry struct {
	// Action is the mutation that was applied.
	Action Action `json:"action"`

	// Item is the item added or removed. Nil for ActionClearAll.
	Item *Item `json:"item"`

	// PreviousState is the item list exactly as it was before Action.
	// It is owned by the entry and never aliases the live list.
	PreviousState []Item `json:"previousState"`

	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewHistoryEntry snapshots before and records action at now.
func NewHistoryEntry(action Action, subject *Item, before []Item, now time.Time) HistoryEntry {
	var item *Item
	if subject != nil {
		c := subject.Clone()
		item = &c
	}
	return HistoryEntry{
		Action:        action,
		Item:          item,
		PreviousState: CloneItems(before),
		Timestamp:     now.UnixMilli(),
	}
}

// Time returns the entry timestamp as a time.Time.
func (h HistoryEntry) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Clone returns a deep copy of the entry.
func (h HistoryEntry) Clone() HistoryEntry {
	out := HistoryEntry{
		Action:        h.Action,
		PreviousState: CloneItems(h.PreviousState),
		Timestamp:     h.Timestamp,
	}
	if h.Item != nil {
		c := h.Item.Clone()
		out.Item = &c
	}
	return out
}

// CloneHistory deep-copies a history slice. Never returns nil.
func CloneHistory(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
