package usecase

import (
	"context"
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate — налог, добавляемый к сумме корзины при оформлении.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// CheckoutUseCase оформляет заказ из текущей корзины и очищает её.
// Заказ и очистка корзины не атомарны: при сбое между ними заказ уже записан.
type CheckoutUseCase struct {
	cart    CartUC
	ledger  OrdersUC
	taxRate decimal.Decimal
	logger  logger.Logger

	mu sync.Mutex
}

func NewCheckoutUC(cart CartUC, ledger OrdersUC, taxRate decimal.Decimal, logger logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		cart:    cart,
		ledger:  ledger,
		taxRate: taxRate,
		logger:  logger,
	}
}

func (c *CheckoutUseCase) Checkout(ctx context.Context) (domain.Order, error) {
	const op = "CheckoutUseCase.Checkout"

	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.cart.State()
	if state.IsEmpty() {
		return domain.Order{}, e.Wrap(op, e.ErrEmptyCart)
	}

	amount := WithTax(state.TotalAmount, c.taxRate)
	order := c.ledger.PlaceOrder(ctx, state.Lines, amount, state.TotalItems)
	c.cart.Clear(ctx)

	c.logger.Infof("order placed. order_id: %s, items: %d, amount: %d", order.ID, order.TotalItems, order.TotalAmount)

	return order, nil
}

// WithTax возвращает сумму с налогом в центах, округление половины от нуля.
func WithTax(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromInt(1).Add(rate)).
		Round(0).
		IntPart()
}
