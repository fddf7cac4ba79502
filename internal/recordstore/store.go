package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
)

// Options tunes a Store. The zero value is usable.
type Options struct {
	// Now is the clock used for ids and timestamps. Defaults to time.Now.
	Now func() time.Time

	// AcceptCategory restricts categories to a closed set.
	// When nil any non-empty category is accepted.
	AcceptCategory func(name string) bool

	// MaxHistory caps the number of history entries, dropping the oldest.
	// 0 keeps every entry.
	MaxHistory int

	// Logger receives debug lines for each committed operation.
	Logger logger.Logger
}

// UndoResult describes what an Undo reverted.
type UndoResult struct {
	Action domain.Action
	// Item is the subject of the undone action, nil for clearAll.
	Item *domain.Item
	// Items is the restored list.
	Items []domain.Item
}

// Store keeps the saved items and the undo history in sync with a Backend.
//
// Every public method runs under one mutex, so each operation is a single
// read-modify-write. Mutations build new slices, persist them, and only then
// replace the in-memory state: a failed Save leaves the store untouched.
type Store struct {
	mu      sync.Mutex
	backend Backend
	opts    Options
	log     logger.Logger

	items   []domain.Item
	history []domain.HistoryEntry
	lastID  int64
}

// Open loads the persisted collections from backend and returns a ready Store.
func Open(ctx context.Context, backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errors.New("recordstore: nil backend")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxHistory < 0 {
		return nil, fmt.Errorf("recordstore: MaxHistory must be >= 0, got %d", opts.MaxHistory)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	values, err := backend.Load(ctx, CollectionItems, CollectionHistory)
	if err != nil {
		return nil, fmt.Errorf("%w: load collections: %w", domain.ErrPersistence, err)
	}
	items, history, err := decodeState(values)
	if err != nil {
		return nil, err
	}

	s := &Store{
		backend: backend,
		opts:    opts,
		log:     log,
		items:   items,
		history: history,
		lastID:  highestID(items, history),
	}

	log.Debug("record store opened",
		logger.Int("items", len(items)),
		logger.Int("history", len(history)))

	return s, nil
}

// Add saves a new item and records an add entry.
func (s *Store) Add(ctx context.Context, category, url, title string) (domain.Item, error) {
	category = domain.NormalizeCategory(category)
	if category == "" {
		return domain.Item{}, fmt.Errorf("%w: category is required", domain.ErrInvalidCategory)
	}
	if s.opts.AcceptCategory != nil && !s.opts.AcceptCategory(category) {
		return domain.Item{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	id := s.nextID(now)
	item := domain.NewItem(id, category, url, title, now)

	history := s.pushHistory(domain.NewHistoryEntry(domain.ActionAdd, &item, s.items, now))
	items := append(domain.CloneItems(s.items), item)

	if err := s.commit(ctx, items, history); err != nil {
		return domain.Item{}, err
	}
	s.lastID = id

	s.log.Debug("item added",
		logger.Int64("id", item.ID),
		logger.String("category", item.Category))

	return item.Clone(), nil
}

// Remove deletes the item with id and records a delete entry.
func (s *Store) Remove(ctx context.Context, id int64) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := domain.IndexOf(s.items, id)
	if pos < 0 {
		return domain.Item{}, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	removed := s.items[pos].Clone()

	history := s.pushHistory(domain.NewHistoryEntry(domain.ActionDelete, &removed, s.items, s.opts.Now()))
	items := make([]domain.Item, 0, len(s.items)-1)
	items = append(items, s.items[:pos]...)
	items = append(items, s.items[pos+1:]...)

	if err := s.commit(ctx, items, history); err != nil {
		return domain.Item{}, err
	}

	s.log.Debug("item removed", logger.Int64("id", id))

	return removed, nil
}

// ClearAll empties the list. An entry is recorded even when the list is already empty.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.pushHistory(domain.NewHistoryEntry(domain.ActionClearAll, nil, s.items, s.opts.Now()))

	if err := s.commit(ctx, []domain.Item{}, history); err != nil {
		return err
	}

	s.log.Debug("items cleared", logger.Int("history", len(history)))

	return nil
}

// Undo pops the latest history entry and restores the list it captured.
// Undo itself is not recorded.
func (s *Store) Undo(ctx context.Context) (UndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return UndoResult{}, domain.ErrEmptyHistory
	}

	last := s.history[len(s.history)-1]
	history := make([]domain.HistoryEntry, len(s.history)-1)
	copy(history, s.history)
	items := domain.CloneItems(last.PreviousState)

	if err := s.commit(ctx, items, history); err != nil {
		return UndoResult{}, err
	}

	s.log.Debug("action undone",
		logger.String("action", string(last.Action)),
		logger.Int("items", len(items)))

	res := UndoResult{
		Action: last.Action,
		Items:  domain.CloneItems(items),
	}
	if last.Item != nil {
		c := last.Item.Clone()
		res.Item = &c
	}
	return res, nil
}

// PruneHistory drops history entries recorded before cutoff and returns how many were dropped.
func (s *Store) PruneHistory(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := cutoff.UnixMilli()
	kept := make([]domain.HistoryEntry, 0, len(s.history))
	for _, e := range s.history {
		if e.Timestamp >= limit {
			kept = append(kept, e)
		}
	}

	dropped := len(s.history) - len(kept)
	if dropped == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, domain.CloneItems(s.items), kept); err != nil {
		return 0, err
	}
	return dropped, nil
}

// List returns the items in insertion order. The result is a copy.
func (s *Store) List() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CloneItems(s.items)
}

// History returns the history entries, oldest first. The result is a copy.
func (s *Store) History() []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CloneHistory(s.history)
}

// HistoryDepth returns the number of undoable actions.
func (s *Store) HistoryDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.history)
}

// Len returns the number of saved items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// commit persists the new state and installs it on success. Caller holds mu.
func (s *Store) commit(ctx context.Context, items []domain.Item, history []domain.HistoryEntry) error {
	values, err := encodeState(items, history)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := s.backend.Save(ctx, values); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.items = items
	s.history = history
	return nil
}

// pushHistory returns a new history slice with entry appended, bounded by MaxHistory.
// Entries are never modified after creation, so they are shared rather than cloned.
func (s *Store) pushHistory(entry domain.HistoryEntry) []domain.HistoryEntry {
	history := make([]domain.HistoryEntry, 0, len(s.history)+1)
	history = append(history, s.history...)
	history = append(history, entry)
	if limit := s.opts.MaxHistory; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// nextID returns a millisecond id strictly greater than any id issued or loaded.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func highestID(items []domain.Item, history []domain.HistoryEntry) int64 {
	highest := domain.MaxID(items)
	for _, e := range history {
		if e.Item != nil && e.Item.ID > highest {
			highest = e.Item.ID
		}
		if m := domain.MaxID(e.PreviousState); m > highest {
			highest = m
		}
	}
	return highest
}
