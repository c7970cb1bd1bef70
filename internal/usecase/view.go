package usecase

import (
	"cmp"
	"slices"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

// DeriveView фильтрует и сортирует каталог. Входной срез не изменяется.
// Порядок: текст (title или description без учёта регистра), категория, диапазон цен, сортировка.
// Сортировка стабильная, при равенстве сохраняется порядок каталога.
func DeriveView(catalog []domain.Product, q domain.FilterQuery) []domain.Product {
	text := strings.ToLower(q.Text)

	view := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Title), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if !q.PriceRange.Contains(p.Price) {
			continue
		}
		view = append(view, p)
	}

	switch q.SortKey {
	case domain.SortPriceAsc:
		slices.SortStableFunc(view, func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) })
	case domain.SortPriceDesc:
		slices.SortStableFunc(view, func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) })
	case domain.SortRatingDesc:
		slices.SortStableFunc(view, func(a, b domain.Product) int { return cmp.Compare(b.Rating.Rate, a.Rating.Rate) })
	}

	return view
}

// ParseSortKey принимает канонические имена и имена из интерфейса витрины.
func ParseSortKey(s string) (domain.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return domain.SortNone, nil
	case "price-asc", "price-low-high":
		return domain.SortPriceAsc, nil
	case "price-desc", "price-high-low":
		return domain.SortPriceDesc, nil
	case "rating-desc", "rating":
		return domain.SortRatingDesc, nil
	default:
		return "", e.ErrInvalidSortKey
	}
}
