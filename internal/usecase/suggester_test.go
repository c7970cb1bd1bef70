package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

type staticCatalog struct {
	products []domain.Product
	err      error
	calls    int
	mu       sync.Mutex
}

func (s *staticCatalog) GetCatalog(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.products, s.err
}

type collector struct {
	mu      sync.Mutex
	results []SuggestionResult
}

func (c *collector) deliver(r SuggestionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) snapshot() []SuggestionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SuggestionResult(nil), c.results...)
}

func suggestionCatalog() *staticCatalog {
	return &staticCatalog{products: []domain.Product{
		product(1, "Mens Casual Shirt", 100, "men's clothing"),
		product(2, "Gold Ring", 100, "jewelery"),
		product(3, "Shirt Dress", 100, "women's clothing"),
		product(4, "Laptop", 100, "electronics"),
		product(5, "T-Shirt", 100, "men's clothing"),
		product(6, "Shirt Pack", 100, "men's clothing"),
		product(7, "Shirt Slim", 100, "men's clothing"),
		product(8, "Shirt Wide", 100, "men's clothing"),
	}}
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	catalog := suggestionCatalog()

	got, err := Suggest(ctx, catalog, " shirt ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 5, 6, 7}, ids(got))

	got, err = Suggest(ctx, catalog, "JEWEL")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(got))

	calls := catalog.calls
	got, err = Suggest(ctx, catalog, " a ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, calls, catalog.calls)
}

func TestSuggest_CatalogError(t *testing.T) {
	_, err := Suggest(context.Background(), &staticCatalog{err: errors.New("down")}, "shirt")
	assert.Error(t, err)
}

func TestSuggester_DebouncesToLastQuery(t *testing.T) {
	c := &collector{}
	s := NewSuggester(suggestionCatalog(), 30*time.Millisecond, c.deliver)
	defer s.Close()

	s.Type("s")
	s.Type("sh")
	s.Type("shi")
	s.Type("ring")

	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, testTimeout, testTick)
	time.Sleep(60 * time.Millisecond)

	results := c.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, "ring", results[0].Query)
	assert.Equal(t, []int64{2}, ids(results[0].Products))
}

func TestSuggester_CloseDiscardsPending(t *testing.T) {
	c := &collector{}
	s := NewSuggester(suggestionCatalog(), 20*time.Millisecond, c.deliver)

	s.Type("shirt")
	s.Close()
	s.Type("ring")

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, c.snapshot())
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	log := logger.NewNop()

	primary := &fakeSource{name: "a", products: []domain.Product{product(1, "Shirt", 1000, "men")}}
	secondary := &fakeSource{name: "b"}

	newSession := func() *Session {
		catalog := NewCatalogUC(primary, secondary, store, nil, log)
		cart := NewCartStore(store, log)
		ledger := NewOrderLedger(store, nil, nil, log)
		return NewSession(catalog, cart, ledger, NewCheckoutUC(cart, ledger, DefaultTaxRate, log), 10*time.Millisecond, log)
	}

	s := newSession()
	s.Start(ctx)

	p, err := s.Catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	s.Cart.Add(ctx, p)
	_, err = s.Catalog.AddLocalProduct(ctx, NewAddLocalProductReq(domain.ProductDraft{Title: "Mug", Price: 500}, nil))
	require.NoError(t, err)
	_, err = s.Checkout.Checkout(ctx)
	require.NoError(t, err)
	s.Cart.Add(ctx, p)

	suggestions, err := s.Suggest(ctx, "shi")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(suggestions))

	c := &collector{}
	suggester := s.NewSuggester(c.deliver)
	suggester.Type("shirt")
	s.Close()

	restarted := newSession()
	restarted.Start(ctx)
	assert.Len(t, restarted.Catalog.LocalProducts(), 1)
	assert.Equal(t, 1, restarted.Cart.State().TotalItems)
	assert.Len(t, restarted.Orders.Orders(), 1)

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, c.snapshot())
}
