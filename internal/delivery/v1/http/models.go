package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/window"
)

type ProductResponse struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Price        int64         `json:"price"` // в центах
	DisplayPrice string        `json:"displayPrice"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Image        string        `json:"image"`
	Rating       domain.Rating `json:"rating"`
}

type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Total      int               `json:"total"`
	Collisions []int64           `json:"collisions,omitempty"`
}

type WindowResponse struct {
	Window window.Window     `json:"window"`
	Items  []ProductResponse `json:"items"`
	Total  int               `json:"total"`
}

type SuggestionsResponse struct {
	Query string            `json:"query"`
	Items []ProductResponse `json:"items"`
}

type PriceBoundsResponse struct {
	Min        int64  `json:"min"`
	Max        int64  `json:"max"`
	DisplayMin string `json:"displayMin"`
	DisplayMax string `json:"displayMax"`
}

type CategoriesResponse struct {
	Categories []string             `json:"categories"`
	PriceRange *PriceBoundsResponse `json:"priceRange"`
}

type CartLineResponse struct {
	ProductResponse
	Quantity         int    `json:"quantity"`
	LineTotal        int64  `json:"lineTotal"`
	DisplayLineTotal string `json:"displayLineTotal"`
}

type CartResponse struct {
	Lines              []CartLineResponse `json:"lines"`
	TotalItems         int                `json:"totalItems"`
	TotalAmount        int64              `json:"totalAmount"`
	DisplayTotalAmount string             `json:"displayTotalAmount"`
	Durable            bool               `json:"durable"` // false, если последнее изменение не сохранилось
}

type OrderResponse struct {
	ID                 string             `json:"id"`
	Lines              []CartLineResponse `json:"lines"`
	TotalItems         int                `json:"totalItems"`
	TotalAmount        int64              `json:"totalAmount"`
	DisplayTotalAmount string             `json:"displayTotalAmount"`
	OrderDate          time.Time          `json:"orderDate"`
	Status             string             `json:"status"`
}

// ProductRequest — тело POST /products в формате JSON.
type ProductRequest struct {
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
}

// ProductPatchRequest — тело PATCH /products/{id}. Отсутствующие поля не меняются.
type ProductPatchRequest struct {
	Title       *string      `json:"title"`
	Price       *json.Number `json:"price"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Image       *string      `json:"image"`
}

type AddCartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

// MAPPERS

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		DisplayPrice: formatCents(p.Price),
		Description:  p.Description,
		Category:     p.Category,
		Image:        p.Image,
		Rating:       p.Rating,
	}
}

func NewProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}

func NewCartLineResponses(lines []domain.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		total := l.Price * int64(l.Quantity)
		out = append(out, CartLineResponse{
			ProductResponse:  NewProductResponse(l.Product),
			Quantity:         l.Quantity,
			LineTotal:        total,
			DisplayLineTotal: formatCents(total),
		})
	}
	return out
}

func NewCartResponse(state domain.CartState, durable bool) CartResponse {
	return CartResponse{
		Lines:              NewCartLineResponses(state.Lines),
		TotalItems:         state.TotalItems,
		TotalAmount:        state.TotalAmount,
		DisplayTotalAmount: formatCents(state.TotalAmount),
		Durable:            durable,
	}
}

func NewOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:                 o.ID,
		Lines:              NewCartLineResponses(o.Lines),
		TotalItems:         o.TotalItems,
		TotalAmount:        o.TotalAmount,
		DisplayTotalAmount: formatCents(o.TotalAmount),
		OrderDate:          o.OrderDate,
		Status:             string(o.Status),
	}
}

func NewPriceBoundsResponse(r domain.PriceRange) *PriceBoundsResponse {
	return &PriceBoundsResponse{
		Min:        r.Min,
		Max:        r.Max,
		DisplayMin: formatCents(r.Min),
		DisplayMax: formatCents(r.Max),
	}
}
