package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestOrderLedger_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	outbox := &fakeOutbox{}
	now := time.UnixMilli(1700000000000).UTC()

	ledger := NewOrderLedger(store, outbox, fakeEncoder{}, logger.NewNop())
	ledger.now = fixedClock(now)

	lines := []domain.CartLine{{Product: product(1, "a", 100, "x"), Quantity: 2}}
	first := ledger.PlaceOrder(ctx, lines, 220, 2)
	second := ledger.PlaceOrder(ctx, lines, 220, 2)

	assert.Equal(t, "order-1700000000000", first.ID)
	assert.Equal(t, "order-1700000000001", second.ID)
	assert.Equal(t, domain.OrderCompleted, first.Status)
	assert.Equal(t, now, first.OrderDate)
	assert.Equal(t, int64(220), first.TotalAmount)

	orders := ledger.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, domain.EventOrderPlaced, outbox.events[0].Type)
	assert.Equal(t, first.ID, outbox.events[0].AggregateID)
	assert.Equal(t, []byte(first.ID), outbox.events[0].Payload)
	assert.Equal(t, domain.OutboxPending, outbox.events[0].Status)
}

func TestOrderLedger_SnapshotsLines(t *testing.T) {
	ledger := NewOrderLedger(newFakeStore(), nil, nil, logger.NewNop())

	lines := []domain.CartLine{{Product: product(1, "a", 100, "x"), Quantity: 1}}
	order := ledger.PlaceOrder(context.Background(), lines, 110, 1)
	lines[0].Quantity = 99

	assert.Equal(t, 1, order.Lines[0].Quantity)
	assert.Equal(t, 1, ledger.Orders()[0].Lines[0].Quantity)
}

func TestOrderLedger_HydrateKeepsIDsIncreasing(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	now := time.UnixMilli(1700000000000).UTC()

	ledger := NewOrderLedger(store, nil, nil, logger.NewNop())
	ledger.now = fixedClock(now)
	placed := ledger.PlaceOrder(ctx, nil, 0, 0)

	restored := NewOrderLedger(store, nil, nil, logger.NewNop())
	restored.now = fixedClock(now)
	restored.Hydrate(ctx)

	require.Len(t, restored.Orders(), 1)
	assert.Equal(t, placed.ID, restored.Orders()[0].ID)

	next := restored.PlaceOrder(ctx, nil, 0, 0)
	assert.Equal(t, "order-1700000000001", next.ID)
}

func TestOrderLedger_PersistFailureIsSoft(t *testing.T) {
	store := newFakeStore()
	store.failSet = true

	ledger := NewOrderLedger(store, nil, nil, logger.NewNop())
	order := ledger.PlaceOrder(context.Background(), nil, 0, 0)

	assert.Equal(t, []domain.Order{order}, ledger.Orders())
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cart := NewCartStore(store, logger.NewNop())
	ledger := NewOrderLedger(store, nil, nil, logger.NewNop())
	checkout := NewCheckoutUC(cart, ledger, DefaultTaxRate, logger.NewNop())

	_, err := checkout.Checkout(ctx)
	assert.ErrorIs(t, err, e.ErrEmptyCart)

	cart.Add(ctx, product(1, "a", 1999, "x"))
	cart.Add(ctx, product(1, "a", 1999, "x"))
	cart.Add(ctx, product(2, "b", 505, "x"))

	order, err := checkout.Checkout(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, order.TotalItems)
	assert.Equal(t, int64(4953), order.TotalAmount)
	assert.Len(t, order.Lines, 2)
	assert.True(t, cart.State().IsEmpty())
	assert.Len(t, ledger.Orders(), 1)
}

func TestWithTax(t *testing.T) {
	tests := []struct {
		cents int64
		want  int64
	}{
		{0, 0},
		{1000, 1100},
		{4503, 4953},
		{5, 6},
		{4, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WithTax(tt.cents, DefaultTaxRate), tt.cents)
	}
}

func TestOrderLedger_ReturnedOrdersAreCopies(t *testing.T) {
	ledger := NewOrderLedger(newFakeStore(), nil, nil, logger.NewNop())

	lines := []domain.CartLine{{Product: product(1, "a", 100, "x"), Quantity: 1}}
	placed := ledger.PlaceOrder(context.Background(), lines, 110, 1)
	placed.Lines[0].Quantity = 7

	history := ledger.Orders()
	history[0].Lines[0].Quantity = 42
	history[0].Lines[0].Title = "changed"

	stored := ledger.Orders()[0].Lines[0]
	assert.Equal(t, 1, stored.Quantity)
	assert.Equal(t, "a", stored.Title)
}
