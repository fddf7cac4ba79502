package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/metrics"
)

// HistoryStore is the part of the record store the pruner needs.
type HistoryStore interface {
	PruneHistory(ctx context.Context, cutoff time.Time) (int, error)
	Len() int
	HistoryDepth() int
}

// HistoryPruner drops undo entries older than maxAge.
type HistoryPruner struct {
	store    HistoryStore
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewHistoryPruner creates a new history pruner. now defaults to time.Now.
func NewHistoryPruner(
	store HistoryStore,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
	now func() time.Time,
) *HistoryPruner {
	if now == nil {
		now = time.Now
	}

	return &HistoryPruner{
		store:    store,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		now:      now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic pruning process
func (hp *HistoryPruner) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := hp.Prune(ctx); err != nil {
		hp.logger.Warn("initial history prune failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(hp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := hp.Prune(ctx); err != nil {
					hp.logger.Error("history prune failed",
						logger.Error(err))
				}
			case <-hp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner
func (hp *HistoryPruner) Stop() {
	close(hp.stopCh)
}

// Prune removes history entries recorded more than maxAge ago.
func (hp *HistoryPruner) Prune(ctx context.Context) (int, error) {
	cutoff := hp.now().Add(-hp.maxAge)

	dropped, err := hp.store.PruneHistory(ctx, cutoff)
	metrics.RecordOperation(metrics.OpPrune, err)
	if err != nil {
		return 0, err
	}

	if dropped > 0 {
		metrics.HistoryPruned.Add(float64(dropped))
		metrics.SetState(hp.store.Len(), hp.store.HistoryDepth())
		hp.logger.Info("history pruned",
			logger.Int("dropped", dropped),
			logger.Duration("max_age", hp.maxAge))
	} else {
		hp.logger.Debug("no history entries to prune")
	}

	return dropped, nil
}
