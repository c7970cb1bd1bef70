package catalog

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// DummyJSONSource — второй источник: GET /products возвращает {"products": [...]}.
// Идентификаторы возвращаются как есть, сдвиг выполняет каталог.
type DummyJSONSource struct {
	client client
}

type dummyJSONResponse struct {
	Products []dummyJSONProduct `json:"products"`
}

type dummyJSONProduct struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
	Rating      float64  `json:"rating"`
	Stock       int64    `json:"stock"`
}

func NewDummyJSONSource(cfg *cfg.SourcesCfg, httpClient *http.Client, logger logger.Logger) *DummyJSONSource {
	return &DummyJSONSource{
		client: newClient("dummyjson", cfg.SecondaryURL, cfg, httpClient, logger),
	}
}

func (s *DummyJSONSource) Name() string {
	return s.client.name
}

func (s *DummyJSONSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "DummyJSONSource.FetchProducts"

	var raw dummyJSONResponse
	if err := s.client.getJSON(ctx, s.client.productsURL(), &raw); err != nil {
		return nil, e.Wrap(op, err)
	}

	products := make([]domain.Product, 0, len(raw.Products))
	for _, p := range raw.Products {
		products = append(products, domain.Product{
			ID:          p.ID,
			Title:       p.Title,
			Price:       priceToCents(p.Price),
			Description: p.Description,
			Category:    p.Category,
			Image:       p.image(),
			Rating: domain.Rating{
				Rate:  p.Rating,
				Count: p.Stock,
			},
		})
	}

	return products, nil
}

// image возвращает миниатюру, а без неё первое изображение.
func (p dummyJSONProduct) image() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}

	return ""
}
