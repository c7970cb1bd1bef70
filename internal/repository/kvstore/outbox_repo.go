package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
)

// retainProcessed ограничивает число обработанных событий, оставленных для диагностики.
const retainProcessed = 50

// OutboxRepo хранит очередь событий одним JSON-документом по ключу orders_outbox.
type OutboxRepo struct {
	store  usecase.KeyValueStore
	now    func() time.Time
	notify chan struct{}

	mu sync.Mutex
}

func NewOutboxRepo(store usecase.KeyValueStore) *OutboxRepo {
	return &OutboxRepo{
		store:  store,
		now:    time.Now,
		notify: make(chan struct{}, 1),
	}
}

// Pending сигнализирует о новых событиях. Сигналы схлопываются.
func (o *OutboxRepo) Pending() <-chan struct{} {
	return o.notify
}

func (o *OutboxRepo) Create(ctx context.Context, event domain.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	events, err := o.load(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if slices.ContainsFunc(events, func(ev domain.OutboxEvent) bool { return ev.ID == event.ID }) {
		return fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.ID)
	}

	if err := o.save(ctx, append(events, event)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	select {
	case o.notify <- struct{}{}:
	default:
	}

	return nil
}

// GetPending возвращает до limit необработанных событий в порядке создания.
func (o *OutboxRepo) GetPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	events, err := o.load(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	pending := make([]domain.OutboxEvent, 0, limit)
	for _, ev := range events {
		if ev.Status != domain.OutboxPending {
			continue
		}
		pending = append(pending, ev)
		if len(pending) == limit {
			break
		}
	}

	return pending, nil
}

func (o *OutboxRepo) MarkAsProcessed(ctx context.Context, id string) error {
	return o.update(ctx, id, func(ev *domain.OutboxEvent) {
		at := o.now()
		ev.Status = domain.OutboxProcessed
		ev.ProcessedAt = &at
	})
}

// MarkAsFailed увеличивает счётчик попыток, событие остаётся в очереди.
func (o *OutboxRepo) MarkAsFailed(ctx context.Context, id string) error {
	return o.update(ctx, id, func(ev *domain.OutboxEvent) {
		ev.Attempts++
	})
}

func (o *OutboxRepo) update(ctx context.Context, id string, fn func(ev *domain.OutboxEvent)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	events, err := o.load(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	idx := slices.IndexFunc(events, func(ev domain.OutboxEvent) bool { return ev.ID == id })
	if idx < 0 {
		return fmt.Errorf("%s: event %s not found", whereami.WhereAmI(), id)
	}
	fn(&events[idx])

	if err := o.save(ctx, pruneProcessed(events)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// pruneProcessed удаляет самые старые обработанные события сверх лимита.
func pruneProcessed(events []domain.OutboxEvent) []domain.OutboxEvent {
	processed := 0
	for _, ev := range events {
		if ev.Status == domain.OutboxProcessed {
			processed++
		}
	}

	drop := processed - retainProcessed
	if drop <= 0 {
		return events
	}

	out := make([]domain.OutboxEvent, 0, len(events)-drop)
	for _, ev := range events {
		if drop > 0 && ev.Status == domain.OutboxProcessed {
			drop--
			continue
		}
		out = append(out, ev)
	}

	return out
}

func (o *OutboxRepo) load(ctx context.Context) ([]domain.OutboxEvent, error) {
	raw, ok, err := o.store.Get(ctx, usecase.OutboxKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var events []domain.OutboxEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox: %w", err)
	}

	return events, nil
}

func (o *OutboxRepo) save(ctx context.Context, events []domain.OutboxEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}

	return o.store.Set(ctx, usecase.OutboxKey, string(data))
}
