package domain

// CartLine описывает строку корзины: товар и количество не меньше 1.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// CartState описывает корзину. Итоги всегда согласованы со строками:
// состояние создаётся только через NewCartState.
type CartState struct {
	Lines       []CartLine `json:"lines"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount int64      `json:"totalAmount"` // в центах
}

// NewCartState строит состояние корзины, пересчитывая итоги по строкам.
func NewCartState(lines []CartLine) CartState {
	if lines == nil {
		lines = []CartLine{}
	}

	totalItems, totalAmount := CalculateTotals(lines)
	return CartState{
		Lines:       lines,
		TotalItems:  totalItems,
		TotalAmount: totalAmount,
	}
}

// EmptyCart возвращает пустую корзину.
func EmptyCart() CartState {
	return NewCartState(nil)
}

// CalculateTotals сворачивает строки в число товаров и сумму в центах.
func CalculateTotals(lines []CartLine) (int, int64) {
	var (
		totalItems  int
		totalAmount int64
	)
	for _, line := range lines {
		totalItems += line.Quantity
		totalAmount += line.Price * int64(line.Quantity)
	}

	return totalItems, totalAmount
}

// IsEmpty сообщает, что в корзине нет строк.
func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// FindLine возвращает индекс строки с товаром id или -1.
func (s CartState) FindLine(id int64) int {
	for i, line := range s.Lines {
		if line.ID == id {
			return i
		}
	}

	return -1
}

// CloneLines возвращает независимую копию строк.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
