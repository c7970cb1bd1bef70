package domain

import "math"

type SortKey string

const (
	SortNone       SortKey = "none"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
)

// PriceRange — включительный диапазон цен в центах.
type PriceRange struct {
	Min int64
	Max int64
}

// FilterQuery описывает фильтрацию и сортировку списка товаров. Не сохраняется.
type FilterQuery struct {
	Text       string
	Category   string
	PriceRange PriceRange
	SortKey    SortKey
}

// NewFilterQuery возвращает запрос без ограничений.
func NewFilterQuery() FilterQuery {
	return FilterQuery{
		PriceRange: PriceRange{Min: 0, Max: math.MaxInt64},
		SortKey:    SortNone,
	}
}

func (r PriceRange) Contains(price int64) bool {
	return r.Min <= price && price <= r.Max
}
