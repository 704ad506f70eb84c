package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, grace time.Duration) (int64, error)
}

// Reaper периодически удаляет ссылки, истекшие более чем grace назад.
// Первый проход выполняется сразу при запуске.
type Reaper struct {
	purger   ExpiredPurger
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger
}

func NewReaper(purger ExpiredPurger, interval, grace time.Duration, logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reaper{
		purger:   purger,
		interval: interval,
		grace:    grace,
		logger:   logger,
	}
}

// Run блокируется до отмены ctx. При interval <= 0 сразу возвращается.
func (r *Reaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("reaper disabled")
		return
	}
	r.logger.Info("reaper started", zap.Duration("interval", r.interval), zap.Duration("grace", r.grace))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.reap(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	deleted, err := r.purger.PurgeExpired(ctx, r.grace)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("failed to purge expired short urls", zap.Error(err))
		}
		return
	}
	r.logger.Debug("reaper pass finished", zap.Int64("deleted", deleted))
}
