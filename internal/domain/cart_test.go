package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartState_Totals(t *testing.T) {
	lines := []CartLine{
		{Product: Product{ID: 1, Price: 1000}, Quantity: 2},
		{Product: Product{ID: 2, Price: 250}, Quantity: 3},
	}

	state := NewCartState(lines)
	assert.Equal(t, 5, state.TotalItems)
	assert.Equal(t, int64(2750), state.TotalAmount)
}

func TestEmptyCart(t *testing.T) {
	state := EmptyCart()
	assert.True(t, state.IsEmpty())
	assert.NotNil(t, state.Lines)
	assert.Zero(t, state.TotalItems)
	assert.Zero(t, state.TotalAmount)
}

func TestCartLine_JSONIsFlat(t *testing.T) {
	line := CartLine{Product: Product{ID: 7, Title: "Mug", Price: 499}, Quantity: 2}

	data, err := json.Marshal(line)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 7, raw["id"])
	assert.EqualValues(t, 2, raw["quantity"])
	assert.Equal(t, "Mug", raw["title"])
}

func TestMaxProductID(t *testing.T) {
	assert.Equal(t, int64(0), MaxProductID())
	assert.Equal(t, int64(1007), MaxProductID(
		[]Product{{ID: 3}, {ID: 20}},
		[]Product{{ID: 1007}},
		nil,
	))
}

func TestProduct_Apply(t *testing.T) {
	title := "New"
	price := int64(1500)
	p := Product{ID: 5, Title: "Old", Price: 100, Category: "a", Rating: Rating{Rate: 4, Count: 2}}

	got := p.Apply(ProductPatch{Title: &title, Price: &price})
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, int64(1500), got.Price)
	assert.Equal(t, "a", got.Category)
	assert.Equal(t, Rating{Rate: 4, Count: 2}, got.Rating)
	assert.Equal(t, "Old", p.Title)
}

func TestPriceRange_Contains(t *testing.T) {
	r := PriceRange{Min: 100, Max: 200}
	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(200))
	assert.False(t, r.Contains(99))
	assert.False(t, r.Contains(201))
	assert.True(t, NewFilterQuery().PriceRange.Contains(1<<40))
}
