package usecase

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceCart_AddTwice(t *testing.T) {
	p := product(1, "Mug", 1299, "kitchen")
	before := ReduceCart(domain.EmptyCart(), AddToCart{Product: product(2, "Cup", 500, "kitchen")})

	after := ReduceCart(ReduceCart(before, AddToCart{Product: p}), AddToCart{Product: p})

	idx := after.FindLine(p.ID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 2, after.Lines[idx].Quantity)
	assert.Equal(t, before.TotalItems+2, after.TotalItems)
	assert.Equal(t, before.TotalAmount+2*p.Price, after.TotalAmount)
}

func TestReduceCart_TotalsInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalog := []domain.Product{
		product(1, "a", 100, "x"),
		product(2, "b", 250, "x"),
		product(3, "c", 999, "y"),
		product(1001, "d", 1, "z"),
	}

	state := domain.EmptyCart()
	for i := 0; i < 500; i++ {
		p := catalog[rng.Intn(len(catalog))]

		var action CartAction
		switch rng.Intn(5) {
		case 0, 1:
			action = AddToCart{Product: p}
		case 2:
			action = RemoveFromCart{ID: p.ID}
		case 3:
			action = UpdateQuantity{ID: p.ID, Quantity: rng.Intn(7) - 1}
		case 4:
			if rng.Intn(10) == 0 {
				action = ClearCart{}
			} else {
				action = AddToCart{Product: p}
			}
		}

		state = ReduceCart(state, action)

		items, amount := domain.CalculateTotals(state.Lines)
		require.Equal(t, items, state.TotalItems)
		require.Equal(t, amount, state.TotalAmount)
		for _, line := range state.Lines {
			require.GreaterOrEqual(t, line.Quantity, 1)
		}
	}
}

func TestReduceCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	start := domain.EmptyCart()
	start = ReduceCart(start, AddToCart{Product: product(1, "a", 100, "x")})
	start = ReduceCart(start, AddToCart{Product: product(2, "b", 200, "x")})
	start = ReduceCart(start, AddToCart{Product: product(2, "b", 200, "x")})

	assert.Equal(t,
		ReduceCart(start, RemoveFromCart{ID: 2}),
		ReduceCart(start, UpdateQuantity{ID: 2, Quantity: 0}),
	)
	assert.Equal(t,
		ReduceCart(start, RemoveFromCart{ID: 2}),
		ReduceCart(start, UpdateQuantity{ID: 2, Quantity: -3}),
	)
}

func TestReduceCart_RemoveIsIdempotent(t *testing.T) {
	start := ReduceCart(domain.EmptyCart(), AddToCart{Product: product(1, "a", 100, "x")})

	once := ReduceCart(start, RemoveFromCart{ID: 1})
	twice := ReduceCart(once, RemoveFromCart{ID: 1})
	assert.Equal(t, once, twice)

	absent := ReduceCart(start, RemoveFromCart{ID: 42})
	assert.Equal(t, start, absent)
}

func TestReduceCart_UpdateAbsentIsNoop(t *testing.T) {
	start := ReduceCart(domain.EmptyCart(), AddToCart{Product: product(1, "a", 100, "x")})
	assert.Equal(t, start, ReduceCart(start, UpdateQuantity{ID: 99, Quantity: 3}))
}

func TestReduceCart_DoesNotMutateInput(t *testing.T) {
	start := ReduceCart(domain.EmptyCart(), AddToCart{Product: product(1, "a", 100, "x")})
	snapshot := domain.NewCartState(domain.CloneLines(start.Lines))

	ReduceCart(start, AddToCart{Product: product(1, "a", 100, "x")})
	ReduceCart(start, UpdateQuantity{ID: 1, Quantity: 9})
	ReduceCart(start, RemoveFromCart{ID: 1})

	assert.Equal(t, snapshot, start)
}

func TestReduceCart_Scenario(t *testing.T) {
	x := product(7, "X", 1500, "x")

	state := domain.EmptyCart()
	state = ReduceCart(state, AddToCart{Product: x})
	state = ReduceCart(state, AddToCart{Product: x})
	state = ReduceCart(state, UpdateQuantity{ID: x.ID, Quantity: 5})
	assert.Equal(t, 5, state.TotalItems)
	assert.Equal(t, int64(7500), state.TotalAmount)

	state = ReduceCart(state, RemoveFromCart{ID: x.ID})
	assert.True(t, state.IsEmpty())
	assert.Zero(t, state.TotalItems)
	assert.Zero(t, state.TotalAmount)
}

func TestCartStore_PersistsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	cart := NewCartStore(store, logger.NewNop())
	cart.Add(ctx, product(1, "a", 100, "x"))
	cart.Add(ctx, product(2, "b", 250, "y"))
	want := cart.SetQuantity(ctx, 2, 3)
	require.NoError(t, cart.PersistErr())

	restored := NewCartStore(store, logger.NewNop())
	restored.Hydrate(ctx)

	assert.Equal(t, want, restored.State())
}

func TestCartStore_LoadIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cart := NewCartStore(store, logger.NewNop())

	state := ReduceCart(domain.EmptyCart(), AddToCart{Product: product(1, "a", 100, "x")})
	got := cart.Load(ctx, state)

	assert.Equal(t, state, got)
	assert.Zero(t, store.setCount())

	cart.Clear(ctx)
	assert.Equal(t, 1, store.setCount())
}

func TestCartStore_PersistFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failSet = true

	cart := NewCartStore(store, logger.NewNop())
	state := cart.Add(ctx, product(1, "a", 100, "x"))

	assert.Equal(t, 1, state.TotalItems)
	assert.ErrorIs(t, cart.PersistErr(), errStoreDown)
	assert.Equal(t, state, cart.State())

	store.failSet = false
	cart.Add(ctx, product(1, "a", 100, "x"))
	assert.NoError(t, cart.PersistErr())
}

func TestCartStore_HydrateCorruptData(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	require.NoError(t, store.Set(ctx, CartKey, "{not json"))

	cart := NewCartStore(store, logger.NewNop())
	cart.Hydrate(ctx)

	assert.True(t, cart.State().IsEmpty())
}

func TestCartStore_StateIsACopy(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(newFakeStore(), logger.NewNop())
	cart.Add(ctx, product(1, "a", 100, "x"))

	state := cart.State()
	state.Lines[0].Quantity = 50

	assert.Equal(t, 1, cart.State().Lines[0].Quantity)
}

func TestReduceCart_AddWithQuantity(t *testing.T) {
	p := product(1, "Mug", 1299, "kitchen")

	state := ReduceCart(domain.EmptyCart(), AddToCart{Product: p, Quantity: 3})
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity)

	state = ReduceCart(state, AddToCart{Product: p, Quantity: 2})
	assert.Equal(t, 5, state.Lines[0].Quantity)
	assert.Equal(t, 5*p.Price, state.TotalAmount)

	state = ReduceCart(state, AddToCart{Product: p, Quantity: 0})
	assert.Equal(t, 6, state.Lines[0].Quantity)
}

func TestCartStore_ConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cart := NewCartStore(store, logger.NewNop())
	p := product(1, "a", 100, "x")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart.AddQuantity(ctx, p, 3)
			cart.Add(ctx, p)
		}()
	}
	wg.Wait()

	state := cart.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, workers*4, state.Lines[0].Quantity)
	assert.Equal(t, workers*2, store.setCount())
}
