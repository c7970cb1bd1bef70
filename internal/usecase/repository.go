package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// KeyValueStore — постоянное хранилище строк по строковым ключам.
// Запись синхронная, последняя запись побеждает.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

// Ключи хранилища
const (
	CartKey          = "cart"
	OrdersKey        = "orders"
	LocalProductsKey = "products_local"
	OutboxKey        = "orders_outbox"
)

type OutboxRepository interface {
	Create(ctx context.Context, event domain.OutboxEvent) error
	GetPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id string) error
	MarkAsFailed(ctx context.Context, id string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
