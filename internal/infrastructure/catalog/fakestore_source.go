package catalog

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// FakeStoreSource — основной источник: GET /products возвращает JSON-массив товаров.
type FakeStoreSource struct {
	client client
}

type fakeStoreProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int64   `json:"count"`
	} `json:"rating"`
}

func NewFakeStoreSource(cfg *cfg.SourcesCfg, httpClient *http.Client, logger logger.Logger) *FakeStoreSource {
	return &FakeStoreSource{
		client: newClient("fakestore", cfg.PrimaryURL, cfg, httpClient, logger),
	}
}

func (s *FakeStoreSource) Name() string {
	return s.client.name
}

func (s *FakeStoreSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "FakeStoreSource.FetchProducts"

	var raw []fakeStoreProduct
	if err := s.client.getJSON(ctx, s.client.productsURL(), &raw); err != nil {
		return nil, e.Wrap(op, err)
	}

	products := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, domain.Product{
			ID:          p.ID,
			Title:       p.Title,
			Price:       priceToCents(p.Price),
			Description: p.Description,
			Category:    p.Category,
			Image:       p.Image,
			Rating: domain.Rating{
				Rate:  p.Rating.Rate,
				Count: p.Rating.Count,
			},
		})
	}

	return products, nil
}
