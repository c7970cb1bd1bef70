package domain

// Product описывает товар единого каталога.
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Price       int64  `json:"price"` // Цена хранится в центах
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Rating      Rating `json:"rating"`
}

// Rating хранит средний балл товара от 0 до 5 и число оценок.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int64   `json:"count"`
}

// ProductDraft — данные нового локального товара до присвоения идентификатора.
type ProductDraft struct {
	Title       string
	Price       int64
	Description string
	Category    string
	Image       string
}

// ProductPatch частично обновляет локальный товар. Поля со значением nil не меняются.
type ProductPatch struct {
	Title       *string
	Price       *int64
	Description *string
	Category    *string
	Image       *string
}

func NewProduct(id int64, draft ProductDraft) Product {
	return Product{
		ID:          id,
		Title:       draft.Title,
		Price:       draft.Price,
		Description: draft.Description,
		Category:    draft.Category,
		Image:       draft.Image,
		Rating:      Rating{},
	}
}

// Apply возвращает копию товара с применённым патчем. Идентификатор и рейтинг не меняются.
func (p Product) Apply(patch ProductPatch) Product {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}

	return p
}

// MaxProductID возвращает максимальный идентификатор среди всех наборов, 0 для пустых.
func MaxProductID(sets ...[]Product) int64 {
	var maxID int64
	for _, set := range sets {
		for _, p := range set {
			if p.ID > maxID {
				maxID = p.ID
			}
		}
	}

	return maxID
}
