package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/index"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/metrics"
	"github.com/MrSnakeDoc/snapstash/internal/sources/categories"
)

// CategoryReloader handles periodic reloading of the category file
type CategoryReloader struct {
	loader        *categories.Loader
	index         *index.CategoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCategoryReloader creates a new category reloader
func NewCategoryReloader(
	categoryFile string,
	idx *index.CategoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CategoryReloader {
	return &CategoryReloader{
		loader:        categories.NewLoader(categoryFile),
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the file once, then reloads it on every tick or manual trigger.
// A broken file at startup is fatal; later failures keep the previous set.
func (cr *CategoryReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial category reload failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload categories",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual category reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload categories",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CategoryReloader) Stop() {
	close(cr.stopCh)
}

// Reload reads the category file and swaps the index contents.
func (cr *CategoryReloader) Reload(_ context.Context) error {
	cr.logger.Debug("reloading categories", logger.String("file", cr.loader.Path()))

	file, err := cr.loader.Load()
	if err != nil {
		metrics.RecordReload(0, err)
		return fmt.Errorf("failed to load categories: %w", err)
	}

	cats, err := categories.MapCategories(file)
	if err != nil {
		metrics.RecordReload(0, err)
		return fmt.Errorf("failed to map categories: %w", err)
	}

	cr.index.Update(cats)
	metrics.RecordReload(len(cats), nil)

	cr.logger.Info("loaded categories",
		logger.Int("count", len(cats)))

	return nil
}
