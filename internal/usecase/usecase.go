package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CatalogUC interface {
	GetCatalog(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	AddLocalProduct(ctx context.Context, req *AddLocalProductReq) (domain.Product, error)
	UpdateLocalProduct(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error)
	DeleteLocalProduct(ctx context.Context, id int64) error
}

type CartUC interface {
	State() domain.CartState
	Add(ctx context.Context, product domain.Product) domain.CartState
	AddQuantity(ctx context.Context, product domain.Product, quantity int) domain.CartState
	Remove(ctx context.Context, id int64) domain.CartState
	SetQuantity(ctx context.Context, id int64, quantity int) domain.CartState
	Clear(ctx context.Context) domain.CartState
	PersistErr() error
}

type OrdersUC interface {
	PlaceOrder(ctx context.Context, lines []domain.CartLine, totalAmount int64, totalItems int) domain.Order
	Orders() []domain.Order
}

type CheckoutUC interface {
	Checkout(ctx context.Context) (domain.Order, error)
}
