package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const (
	failureBackoff    = time.Second
	maxFailureBackoff = time.Minute
)

var errBatchFailed = errors.New("outbox batch has failed events")

// OutboxNotifier сообщает о появлении новых событий в outbox.
type OutboxNotifier interface {
	Pending() <-chan struct{}
}

// OutboxWorker переносит события из outbox в Kafka.
// Очередь разбирается по сигналу notifier и по таймеру.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	notifier  OutboxNotifier
	producer  usecase.MessageProducer
	logger    logger.Logger
	interval  time.Duration
	batchSize int

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOutboxWorker создаёт воркер. notifier может быть nil, тогда очередь разбирается только по таймеру.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	notifier OutboxNotifier,
	producer usecase.MessageProducer,
	cfg *cfg.KafkaCfg,
	logger logger.Logger,
) *OutboxWorker {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:      repo,
		notifier:  notifier,
		producer:  producer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")

	var pending <-chan struct{}
	if w.notifier != nil {
		pending = w.notifier.Pending()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failures := 0
	for {
		if err := w.drain(ctx); err != nil {
			wait := jitter.ExponentialBackoff(failureBackoff, maxFailureBackoff, failures, jitter.DefaultJitter)
			failures++
			w.logger.Warnf("Outbox drain failed, next attempt in %v: %v", wait, err)

			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				w.logger.Infof("Outbox worker stopped by context cancellation")
				return
			case <-w.stop:
				return
			}
		}
		failures = 0

		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped by context cancellation")
			return
		case <-w.stop:
			return
		case <-ticker.C:
		case <-pending:
			w.logger.Debugf("Received outbox notification, draining outbox events")
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет или пока отправка не упадёт.
func (w *OutboxWorker) drain(ctx context.Context) error {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			return err
		}
		if !hasMore {
			return nil
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	const op = "OutboxWorker.processBatch"

	events, err := w.repo.GetPending(ctx, w.batchSize)
	if err != nil {
		return false, e.Wrap(op, err)
	}
	if len(events) == 0 {
		return false, nil
	}

	failed := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			if isRetryableError(err) {
				w.logger.Warnf("temporary kafka failure, event %s will be retried: %v", event.ID, err)
			} else {
				w.logger.Errorf(e.Wrap(op, err), "failed to publish outbox event. event_id: %s", event.ID)
			}
			if err := w.repo.MarkAsFailed(ctx, event.ID); err != nil {
				w.logger.Warnf("mark failed failed: %v", err)
			}
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			failed++
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	if failed > 0 {
		return false, e.Wrap(op, errBatchFailed)
	}

	return len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event domain.OutboxEvent) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.Payload))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
