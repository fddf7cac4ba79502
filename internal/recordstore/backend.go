package recordstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
)

// Names of the persisted collections.
const (
	CollectionItems   = "items"
	CollectionHistory = "history"
)

// Backend persists named collections as opaque documents.
//
// Load returns only the collections that exist; a missing name is not an error.
// Save must apply every value or none of them.
type Backend interface {
	Load(ctx context.Context, names ...string) (map[string][]byte, error)
	Save(ctx context.Context, values map[string][]byte) error
	Ping(ctx context.Context) error
	Close() error
}

// encodeState serializes both collections for a single Save call.
func encodeState(items []domain.Item, history []domain.HistoryEntry) (map[string][]byte, error) {
	if items == nil {
		items = []domain.Item{}
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}

	itemsData, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	historyData, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}

	return map[string][]byte{
		CollectionItems:   itemsData,
		CollectionHistory: historyData,
	}, nil
}

// decodeState parses what Load returned. Missing collections decode as empty.
func decodeState(values map[string][]byte) ([]domain.Item, []domain.HistoryEntry, error) {
	items := []domain.Item{}
	history := []domain.HistoryEntry{}

	if data, ok := values[CollectionItems]; ok && len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}
	if data, ok := values[CollectionHistory]; ok && len(data) > 0 {
		if err := json.Unmarshal(data, &history); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}

	// A null document decodes to a nil slice.
	if items == nil {
		items = []domain.Item{}
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	for i := range history {
		if history[i].PreviousState == nil {
			history[i].PreviousState = []domain.Item{}
		}
	}

	return items, history, nil
}
