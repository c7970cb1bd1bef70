package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

// OrderLedger хранит историю заказов, новые заказы идут первыми.
type OrderLedger struct {
	store   KeyValueStore
	outbox  OutboxRepository
	encoder EventEncoder
	logger  logger.Logger
	now     func() time.Time

	mu        sync.Mutex
	orders    []domain.Order
	lastMilli int64
}

// NewOrderLedger создаёт журнал заказов. outbox и encoder могут быть nil:
// события о заказах тогда не публикуются.
func NewOrderLedger(store KeyValueStore, outbox OutboxRepository, encoder EventEncoder, logger logger.Logger) *OrderLedger {
	return &OrderLedger{
		store:   store,
		outbox:  outbox,
		encoder: encoder,
		logger:  logger,
		now:     time.Now,
		orders:  []domain.Order{},
	}
}

// PlaceOrder фиксирует заказ со статусом completed и сохраняет историю.
// Идентификаторы строго возрастают даже при нескольких заказах за одну миллисекунду.
func (l *OrderLedger) PlaceOrder(ctx context.Context, lines []domain.CartLine, totalAmount int64, totalItems int) domain.Order {
	const op = "OrderLedger.PlaceOrder"

	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now()
	milli := at.UnixMilli()
	if milli <= l.lastMilli {
		milli = l.lastMilli + 1
	}
	l.lastMilli = milli

	order := domain.NewOrder(domain.OrderID(milli), lines, totalAmount, totalItems, at)

	orders := make([]domain.Order, 0, len(l.orders)+1)
	orders = append(orders, order)
	orders = append(orders, l.orders...)
	l.orders = orders

	if err := saveJSON(ctx, l.store, OrdersKey, l.orders); err != nil {
		l.logger.Warnf("Failed to persist orders: %v", e.Wrap(op, err))
	}

	l.recordEvent(ctx, order)

	return order.Clone()
}

// recordEvent кладёт событие о заказе в outbox. Ошибки только логируются.
func (l *OrderLedger) recordEvent(ctx context.Context, order domain.Order) {
	const op = "OrderLedger.recordEvent"

	if l.outbox == nil || l.encoder == nil {
		return
	}

	payload, err := l.encoder.EncodeOrderPlaced(order)
	if err != nil {
		l.logger.Errorf(e.Wrap(op, err), "failed to encode order event. order_id: %s", order.ID)
		return
	}

	event := domain.NewOutboxEvent(uuid.NewString(), domain.EventOrderPlaced, order.ID, payload, l.now())
	if err := l.outbox.Create(ctx, event); err != nil {
		l.logger.Errorf(e.Wrap(op, err), "failed to enqueue order event. order_id: %s", order.ID)
	}
}

// Orders возвращает копию истории заказов.
func (l *OrderLedger) Orders() []domain.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders := make([]domain.Order, len(l.orders))
	for i, o := range l.orders {
		orders[i] = o.Clone()
	}

	return orders
}

// Hydrate восстанавливает историю из хранилища. Повреждённые данные дают пустую историю.
func (l *OrderLedger) Hydrate(ctx context.Context) {
	const op = "OrderLedger.Hydrate"

	var orders []domain.Order
	ok, err := loadJSON(ctx, l.store, OrdersKey, &orders)
	if err != nil {
		l.logger.Warnf("Failed to load orders, starting empty: %v", e.Wrap(op, err))
		return
	}
	if !ok || orders == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.orders = orders
	for _, o := range orders {
		if milli, ok := parseOrderMilli(o.ID); ok && milli > l.lastMilli {
			l.lastMilli = milli
		}
	}
}

func parseOrderMilli(id string) (int64, bool) {
	raw, ok := strings.CutPrefix(id, "order-")
	if !ok {
		return 0, false
	}

	milli, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return milli, true
}
