// Package workers фоновые задачи сервиса: запись переходов и удаление истекших ссылок.
package workers

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/models"
)

const recordTimeout = 5 * time.Second

type ClickRecorder interface {
	RecordClick(ctx context.Context, link *models.Link, cc models.ClickContext) (*models.Link, error)
}

type clickJob struct {
	link *models.Link
	cc   models.ClickContext
}

// ClickDispatcher записывает переходы, не задерживая перенаправление.
//
// При workers == 0 переход записывается синхронно в Dispatch. Иначе у каждого воркера своя
// очередь, а очередь выбирается по хешу короткого кода: все переходы одной ссылки пишет один
// воркер в порядке поступления. Переполненная очередь отбрасывает переход. Ошибки записи
// только логируются.
type ClickDispatcher struct {
	recorder ClickRecorder
	logger   *zap.Logger

	queues []chan clickJob
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
	failed  atomic.Int64
}

func NewClickDispatcher(recorder ClickRecorder, workers, buffer int, logger *zap.Logger) *ClickDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &ClickDispatcher{
		recorder: recorder,
		logger:   logger,
	}
	if workers <= 0 {
		return d
	}
	if buffer < 0 {
		buffer = 0
	}
	d.queues = make([]chan clickJob, workers)
	for i := range d.queues {
		q := make(chan clickJob, buffer)
		d.queues[i] = q
		d.wg.Add(1)
		go d.run(q)
	}
	logger.Info("click workers started", zap.Int("workers", workers), zap.Int("buffer", buffer))
	return d
}

// Dispatch передаёт переход на запись. Возвращает false, если переход отброшен
// или (в синхронном режиме) не записан.
func (d *ClickDispatcher) Dispatch(ctx context.Context, link *models.Link, cc models.ClickContext) bool {
	if cc.OccurredAt.IsZero() {
		cc.OccurredAt = time.Now().UTC()
	}
	if len(d.queues) == 0 {
		// клиент мог уже отключиться, переход всё равно нужно записать
		return d.record(context.WithoutCancel(ctx), clickJob{link: link, cc: cc})
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(link.ShortCode, "dispatcher closed")
		return false
	}
	select {
	case d.queues[shard(link.ShortCode, len(d.queues))] <- clickJob{link: link, cc: cc}:
		return true
	default:
		d.drop(link.ShortCode, "queue is full")
		return false
	}
}

// Close прекращает приём переходов и ждёт, пока воркеры допишут очереди.
func (d *ClickDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	}
}

// Dropped количество отброшенных переходов.
func (d *ClickDispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Failed количество переходов, которые не удалось записать.
func (d *ClickDispatcher) Failed() int64 {
	return d.failed.Load()
}

func (d *ClickDispatcher) run(q <-chan clickJob) {
	defer d.wg.Done()
	for job := range q {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		d.record(ctx, job)
		cancel()
	}
}

func (d *ClickDispatcher) record(ctx context.Context, job clickJob) bool {
	if _, err := d.recorder.RecordClick(ctx, job.link, job.cc); err != nil {
		d.failed.Add(1)
		d.logger.Error("failed to record click",
			zap.String("shortCode", job.link.ShortCode),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (d *ClickDispatcher) drop(shortCode, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("click dropped", zap.String("shortCode", shortCode), zap.String("reason", reason))
}

func shard(shortCode string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(shortCode))
	return int(h.Sum32() % uint32(n)) //nolint:gosec
}
