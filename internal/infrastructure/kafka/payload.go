package kafka

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrderEventEncoder кодирует события заказов в protobuf (google.protobuf.Struct).
type OrderEventEncoder struct{}

func NewOrderEventEncoder() OrderEventEncoder {
	return OrderEventEncoder{}
}

func (OrderEventEncoder) EncodeOrderPlaced(order domain.Order) ([]byte, error) {
	lines := make([]any, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, map[string]any{
			"product_id": l.ID,
			"title":      l.Title,
			"price":      l.Price,
			"quantity":   l.Quantity,
		})
	}

	event, err := structpb.NewStruct(map[string]any{
		"type":         string(domain.EventOrderPlaced),
		"order_id":     order.ID,
		"status":       string(order.Status),
		"total_amount": order.TotalAmount,
		"total_items":  order.TotalItems,
		"order_date":   order.OrderDate.UTC().Format(time.RFC3339Nano),
		"lines":        lines,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := proto.Marshal(event)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}
