package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order хранит снимок корзины на момент оформления.
type Order struct {
	ID          string      `json:"id"`
	Lines       []CartLine  `json:"lines"`
	TotalAmount int64       `json:"totalAmount"` // в центах
	TotalItems  int         `json:"totalItems"`
	OrderDate   time.Time   `json:"orderDate"`
	Status      OrderStatus `json:"status"`
}

func NewOrder(id string, lines []CartLine, totalAmount int64, totalItems int, at time.Time) Order {
	return Order{
		ID:          id,
		Lines:       CloneLines(lines),
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		OrderDate:   at,
		Status:      OrderCompleted,
	}
}

// OrderID формирует идентификатор заказа из отметки времени в миллисекундах.
func OrderID(unixMilli int64) string {
	return fmt.Sprintf("order-%d", unixMilli)
}

// Clone возвращает копию заказа с независимыми строками.
func (o Order) Clone() Order {
	o.Lines = CloneLines(o.Lines)
	return o
}
