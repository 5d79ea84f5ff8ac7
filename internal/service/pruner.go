package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"go.uber.org/zap"
)

const defaultPrunerInterval = 1 * time.Hour

// Pruner deletes memories older than the retention period on a schedule.
type Pruner struct {
	memoryStore domain.MemoryStore
	retention   time.Duration
	logger      *zap.Logger
	now         func() time.Time

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewPruner(ms domain.MemoryStore, retention time.Duration, logger *zap.Logger) *Pruner {
	return &Pruner{
		memoryStore: ms,
		retention:   retention,
		logger:      logger,
		now:         time.Now,
		interval:    defaultPrunerInterval,
		stopCh:      make(chan struct{}),
	}
}

func (p *Pruner) SetInterval(d time.Duration) {
	p.interval = d
}

// Start runs the pruner periodically in a background goroutine.
func (p *Pruner) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.logger.Info("memory pruner started",
			zap.Duration("interval", p.interval),
			zap.Duration("retention", p.retention))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				p.PruneOnce(ctx)
				cancel()
			case <-p.stopCh:
				p.logger.Info("memory pruner stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the pruner.
func (p *Pruner) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

// PruneOnce deletes every memory created before now minus the retention
// period and returns how many were removed.
func (p *Pruner) PruneOnce(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.retention)
	deleted, err := p.memoryStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to prune memories", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		p.logger.Info("pruned memories past retention",
			zap.Time("cutoff", cutoff),
			zap.Int64("count", deleted))
	}
	return deleted
}
