package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type OrderHandler struct {
	checkoutUsecase usecase.CheckoutUC
	ordersUsecase   usecase.OrdersUC
	logger          logger.Logger
}

func NewOrderHandler(checkoutUsecase usecase.CheckoutUC, ordersUsecase usecase.OrdersUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{checkoutUsecase: checkoutUsecase, ordersUsecase: ordersUsecase, logger: logger}
}

// checkout
//
//	@Summary		Оформление заказа
//	@Description	Фиксирует заказ по текущей корзине с учётом налога и очищает корзину
//	@Tags			orders
//	@Produce		json
//	@Success		201	{object}	OrderResponse
//	@Failure		409	{object}	ErrorResponse	"Корзина пуста"
//	@Router			/checkout [post]
func (o *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	order, err := o.checkoutUsecase.Checkout(r.Context())
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewOrderResponse(order))
}

// listOrders
//
//	@Summary		История заказов
//	@Description	Новые заказы первыми
//	@Tags			orders
//	@Produce		json
//	@Success		200	{array}	OrderResponse
//	@Router			/orders [get]
func (o *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders := o.ordersUsecase.Orders()

	resp := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, NewOrderResponse(order))
	}

	WriteSuccess(w, http.StatusOK, resp)
}
