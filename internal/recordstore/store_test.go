package recordstore

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/store/memory"
)

// fixedClock returns the same instant on every call so ids collide unless bumped.
func fixedClock() func() time.Time {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

// failingBackend wraps a memory backend and fails Save on demand.
type failingBackend struct {
	*memory.Backend
	fail bool
}

func (f *failingBackend) Save(ctx context.Context, values map[string][]byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Backend.Save(ctx, values)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), memory.NewBackend(), Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func mustAdd(t *testing.T, s *Store, category, url, title string) domain.Item {
	t.Helper()
	item, err := s.Add(context.Background(), category, url, title)
	if err != nil {
		t.Fatalf("Add(%q) error = %v", category, err)
	}
	return item
}

func TestAddAppendsItemAndHistory(t *testing.T) {
	s := newTestStore(t)

	item := mustAdd(t, s, "books", "https://example.com/dune", "Dune")

	items := s.List()
	if len(items) != 1 {
		t.Fatalf("List() length = %d, want 1", len(items))
	}
	if items[0] != item {
		t.Errorf("List()[0] = %+v, want %+v", items[0], item)
	}
	if s.HistoryDepth() != 1 {
		t.Errorf("HistoryDepth() = %d, want 1", s.HistoryDepth())
	}

	entry := s.History()[0]
	if entry.Action != domain.ActionAdd {
		t.Errorf("entry.Action = %q, want %q", entry.Action, domain.ActionAdd)
	}
	if entry.Item == nil || *entry.Item != item {
		t.Errorf("entry.Item = %+v, want %+v", entry.Item, item)
	}
	if len(entry.PreviousState) != 0 {
		t.Errorf("entry.PreviousState length = %d, want 0", len(entry.PreviousState))
	}
}

func TestAddRejectsInvalidCategory(t *testing.T) {
	backend := memory.NewBackend()
	s, err := Open(context.Background(), backend, Options{
		AcceptCategory: func(name string) bool { return name == "books" },
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		name     string
		category string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not offered", "weapons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(context.Background(), tt.category, "https://example.com", "x")
			if !errors.Is(err, domain.ErrInvalidCategory) {
				t.Errorf("Add(%q) error = %v, want ErrInvalidCategory", tt.category, err)
			}
		})
	}

	if s.Len() != 0 || s.HistoryDepth() != 0 {
		t.Errorf("invalid adds mutated state: items=%d history=%d", s.Len(), s.HistoryDepth())
	}
	stored, _ := backend.Load(context.Background(), CollectionItems, CollectionHistory)
	if len(stored) != 0 {
		t.Errorf("invalid adds persisted %d collections, want 0", len(stored))
	}
}

func TestHistoryDepthCountsEveryMutation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAdd(t, s, "books", "u1", "t1")
	mustAdd(t, s, "toys", "u2", "t2")
	if _, err := s.Remove(ctx, first.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	mustAdd(t, s, "food", "u3", "t3")

	if s.HistoryDepth() != 5 {
		t.Errorf("HistoryDepth() = %d, want 5", s.HistoryDepth())
	}
}

func TestUndoAdd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "books", "u1", "t1")
	before := s.List()
	added := mustAdd(t, s, "electronics", "u2", "t2")

	res, err := s.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Action != domain.ActionAdd {
		t.Errorf("Undo().Action = %q, want %q", res.Action, domain.ActionAdd)
	}
	if res.Item == nil || res.Item.ID != added.ID {
		t.Errorf("Undo().Item = %+v, want id %d", res.Item, added.ID)
	}
	if got := s.List(); !reflect.DeepEqual(got, before) {
		t.Errorf("List() after undo = %+v, want %+v", got, before)
	}
	if s.HistoryDepth() != 1 {
		t.Errorf("HistoryDepth() = %d, want 1", s.HistoryDepth())
	}
}

func TestUndoRemoveRestoresOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAdd(t, s, "books", "https://example.com/a", "A")
	second := mustAdd(t, s, "electronics", "https://example.com/b", "B")

	removed, err := s.Remove(ctx, first.ID)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if removed != first {
		t.Errorf("Remove() = %+v, want %+v", removed, first)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after remove = %d, want 1", s.Len())
	}

	res, err := s.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Action != domain.ActionDelete {
		t.Errorf("Undo().Action = %q, want %q", res.Action, domain.ActionDelete)
	}

	want := []domain.Item{first, second}
	if got := s.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() after undo = %+v, want %+v", got, want)
	}
	if s.HistoryDepth() != 2 {
		t.Errorf("HistoryDepth() = %d, want 2", s.HistoryDepth())
	}
}

func TestUndoClearAllRestoresEveryField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "books", "https://example.com/a", "A")
	mustAdd(t, s, "toys", "https://example.com/b", "B")
	mustAdd(t, s, "food", "https://example.com/c", "C")
	before := s.List()

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() after ClearAll = %d, want 0", s.Len())
	}

	res, err := s.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Action != domain.ActionClearAll || res.Item != nil {
		t.Errorf("Undo() = %+v, want clearAll with nil item", res)
	}
	if got := s.List(); !reflect.DeepEqual(got, before) {
		t.Errorf("List() after undo = %+v, want %+v", got, before)
	}
}

func TestClearAllOnEmptyListIsUndoable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if s.HistoryDepth() != 1 {
		t.Fatalf("HistoryDepth() = %d, want 1", s.HistoryDepth())
	}

	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if s.Len() != 0 || s.HistoryDepth() != 0 {
		t.Errorf("after undo items=%d history=%d, want 0/0", s.Len(), s.HistoryDepth())
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Undo(context.Background())
	if !errors.Is(err, domain.ErrEmptyHistory) {
		t.Fatalf("Undo() error = %v, want ErrEmptyHistory", err)
	}
	if s.Len() != 0 || s.HistoryDepth() != 0 {
		t.Errorf("Undo() on empty history mutated state")
	}
}

func TestUndoIsNotRecorded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "books", "u", "t")
	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if _, err := s.Undo(ctx); !errors.Is(err, domain.ErrEmptyHistory) {
		t.Errorf("second Undo() error = %v, want ErrEmptyHistory", err)
	}
}

func TestRemoveNotFound(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "books", "u", "t")
	before := s.List()

	_, err := s.Remove(context.Background(), 424242)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Remove() error = %v, want ErrNotFound", err)
	}
	if got := s.List(); !reflect.DeepEqual(got, before) {
		t.Errorf("List() changed after failed remove")
	}
	if s.HistoryDepth() != 1 {
		t.Errorf("HistoryDepth() = %d, want 1", s.HistoryDepth())
	}
}

func TestIDsAreUniqueWithFrozenClock(t *testing.T) {
	s := newTestStore(t)

	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		item := mustAdd(t, s, "books", "u", "t")
		if seen[item.ID] {
			t.Fatalf("duplicate id %d at iteration %d", item.ID, i)
		}
		seen[item.ID] = true
	}
}

func TestIDsIncreaseAfterUndo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAdd(t, s, "books", "u", "t")
	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	second := mustAdd(t, s, "books", "u", "t")

	if second.ID <= first.ID {
		t.Errorf("id after undo = %d, want > %d", second.ID, first.ID)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAdd(t, s, "books", "u1", "t1")
	mustAdd(t, s, "toys", "u2", "t2")

	// Mutating what readers receive must not leak into the store.
	listed := s.List()
	listed[0].Title = "tampered"
	history := s.History()
	history[1].PreviousState[0].Title = "tampered"

	// Mutating the live list must not change earlier snapshots.
	if _, err := s.Remove(ctx, first.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	entries := s.History()
	if len(entries[1].PreviousState) != 1 {
		t.Fatalf("add entry snapshot length = %d, want 1", len(entries[1].PreviousState))
	}
	if entries[1].PreviousState[0].Title != "t1" {
		t.Errorf("add entry snapshot title = %q, want %q", entries[1].PreviousState[0].Title, "t1")
	}
	if len(entries[0].PreviousState) != 0 {
		t.Errorf("first add snapshot length = %d, want 0", len(entries[0].PreviousState))
	}
}

func TestPersistenceFailureLeavesStateUnchanged(t *testing.T) {
	backend := &failingBackend{Backend: memory.NewBackend()}
	s, err := Open(context.Background(), backend, Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()

	item := mustAdd(t, s, "books", "u", "t")
	backend.fail = true

	if _, err := s.Add(ctx, "toys", "u2", "t2"); !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("Add() error = %v, want ErrPersistence", err)
	}
	if _, err := s.Remove(ctx, item.ID); !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("Remove() error = %v, want ErrPersistence", err)
	}
	if err := s.ClearAll(ctx); !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("ClearAll() error = %v, want ErrPersistence", err)
	}
	if _, err := s.Undo(ctx); !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("Undo() error = %v, want ErrPersistence", err)
	}

	if got := s.List(); len(got) != 1 || got[0] != item {
		t.Errorf("List() after failures = %+v, want [%+v]", got, item)
	}
	if s.HistoryDepth() != 1 {
		t.Errorf("HistoryDepth() after failures = %d, want 1", s.HistoryDepth())
	}

	backend.fail = false
	reopened, err := Open(ctx, backend.Backend, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if reopened.Len() != 1 || reopened.HistoryDepth() != 1 {
		t.Errorf("persisted state items=%d history=%d, want 1/1", reopened.Len(), reopened.HistoryDepth())
	}
}

func TestOpenRestoresPersistedState(t *testing.T) {
	backend := memory.NewBackend()
	ctx := context.Background()

	s, err := Open(ctx, backend, Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first := mustAdd(t, s, "books", "u1", "t1")
	mustAdd(t, s, "toys", "u2", "t2")
	if _, err := s.Remove(ctx, first.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	reopened, err := Open(ctx, backend, Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !reflect.DeepEqual(reopened.List(), s.List()) {
		t.Errorf("reopened List() = %+v, want %+v", reopened.List(), s.List())
	}
	if !reflect.DeepEqual(reopened.History(), s.History()) {
		t.Errorf("reopened History() differs from original")
	}

	// ids must stay above everything seen, including the removed item held in history.
	next := mustAdd(t, reopened, "food", "u3", "t3")
	for _, e := range reopened.History()[:3] {
		if e.Item.ID >= next.ID {
			t.Errorf("new id %d not above historical id %d", next.ID, e.Item.ID)
		}
	}

	res, err := reopened.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Action != domain.ActionAdd {
		t.Errorf("Undo().Action = %q, want add", res.Action)
	}
	res, err = reopened.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Action != domain.ActionDelete || reopened.Len() != 2 {
		t.Errorf("Undo() = %q with %d items, want delete with 2", res.Action, reopened.Len())
	}
}

func TestOpenRejectsCorruptHistory(t *testing.T) {
	backend := memory.NewBackend()
	ctx := context.Background()
	if err := backend.Save(ctx, map[string][]byte{
		CollectionHistory: []byte(`[{"action":"explode","item":null,"previousState":[],"timestamp":1}]`),
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := Open(ctx, backend, Options{}); err == nil {
		t.Error("Open() with corrupt history should return error")
	}
}

func TestMaxHistoryDropsOldest(t *testing.T) {
	s, err := Open(context.Background(), memory.NewBackend(), Options{Now: fixedClock(), MaxHistory: 2})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	mustAdd(t, s, "books", "u1", "t1")
	mustAdd(t, s, "books", "u2", "t2")
	third := mustAdd(t, s, "books", "u3", "t3")

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("HistoryDepth() = %d, want 2", len(history))
	}
	if history[1].Item.ID != third.ID {
		t.Errorf("newest entry id = %d, want %d", history[1].Item.ID, third.ID)
	}
}

func TestOpenRejectsNegativeMaxHistory(t *testing.T) {
	if _, err := Open(context.Background(), memory.NewBackend(), Options{MaxHistory: -1}); err == nil {
		t.Error("Open() with negative MaxHistory should return error")
	}
	if _, err := Open(context.Background(), nil, Options{}); err == nil {
		t.Error("Open() with nil backend should return error")
	}
}

func TestPruneHistory(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	clock := now
	s, err := Open(context.Background(), memory.NewBackend(), Options{Now: func() time.Time { return clock }})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()

	mustAdd(t, s, "books", "old", "old")
	clock = now.Add(48 * time.Hour)
	mustAdd(t, s, "books", "new", "new")

	dropped, err := s.PruneHistory(ctx, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if dropped != 1 {
		t.Errorf("PruneHistory() = %d, want 1", dropped)
	}
	if s.HistoryDepth() != 1 || s.Len() != 2 {
		t.Errorf("after prune history=%d items=%d, want 1/2", s.HistoryDepth(), s.Len())
	}

	dropped, err = s.PruneHistory(ctx, now.Add(24*time.Hour))
	if err != nil || dropped != 0 {
		t.Errorf("second PruneHistory() = %d, %v, want 0, nil", dropped, err)
	}
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	backend := memory.NewBackend()
	s, err := Open(context.Background(), backend, Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Add(context.Background(), "books", "u", "t"); err != nil {
				t.Errorf("Add() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len() = %d, want 100", s.Len())
	}
	if s.HistoryDepth() != 100 {
		t.Errorf("HistoryDepth() = %d, want 100", s.HistoryDepth())
	}

	reopened, err := Open(context.Background(), backend, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if reopened.Len() != 100 {
		t.Errorf("persisted Len() = %d, want 100 (lost update)", reopened.Len())
	}
}
