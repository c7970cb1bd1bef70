package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// Session владеет состоянием витрины одного пользователя: каталогом, корзиной,
// историей заказов и активными поисками.
type Session struct {
	Catalog  *CatalogUseCase
	Cart     *CartStore
	Orders   *OrderLedger
	Checkout *CheckoutUseCase

	searchDelay time.Duration
	logger      logger.Logger

	mu         sync.Mutex
	suggesters []*Suggester
}

func NewSession(
	catalog *CatalogUseCase,
	cart *CartStore,
	orders *OrderLedger,
	checkout *CheckoutUseCase,
	searchDelay time.Duration,
	logger logger.Logger,
) *Session {
	return &Session{
		Catalog:     catalog,
		Cart:        cart,
		Orders:      orders,
		Checkout:    checkout,
		searchDelay: searchDelay,
		logger:      logger,
	}
}

// Start восстанавливает локальные товары, корзину и историю заказов из хранилища.
func (s *Session) Start(ctx context.Context) {
	s.Catalog.LoadLocalProducts(ctx)
	s.Cart.Hydrate(ctx)
	s.Orders.Hydrate(ctx)

	s.logger.Infof(
		"session started. local_products: %d, cart_items: %d, orders: %d",
		len(s.Catalog.LocalProducts()),
		s.Cart.State().TotalItems,
		len(s.Orders.Orders()),
	)
}

// NewSuggester создаёт поиск с задержкой, который будет закрыт вместе с сессией.
func (s *Session) NewSuggester(deliver func(SuggestionResult)) *Suggester {
	suggester := NewSuggester(s.Catalog, s.searchDelay, deliver)

	s.mu.Lock()
	s.suggesters = append(s.suggesters, suggester)
	s.mu.Unlock()

	return suggester
}

// Suggest ищет без задержки.
func (s *Session) Suggest(ctx context.Context, query string) ([]domain.Product, error) {
	return Suggest(ctx, s.Catalog, query)
}

// Close останавливает все поиски сессии.
func (s *Session) Close() {
	s.mu.Lock()
	suggesters := s.suggesters
	s.suggesters = nil
	s.mu.Unlock()

	for _, suggester := range suggesters {
		suggester.Close()
	}
}
