package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// ProductSource — внешний источник товаров.
type ProductSource interface {
	Name() string
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
	// CleanupImages удаляет изображения в фоне. Чужие URL пропускаются.
	CleanupImages(imageURLs []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventEncoder сериализует доменные события для публикации.
type EventEncoder interface {
	EncodeOrderPlaced(order domain.Order) ([]byte, error)
}
