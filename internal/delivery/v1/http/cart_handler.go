package http

import (
	"fmt"
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type CartHandler struct {
	cartUsecase    usecase.CartUC
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, catalogUsecase usecase.CatalogUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, catalogUsecase: catalogUsecase, logger: logger}
}

func (c *CartHandler) writeCart(w http.ResponseWriter, status int) {
	durable := true
	if err := c.cartUsecase.PersistErr(); err != nil {
		durable = false
		c.logger.Warnf("cart change is not durable: %v", err)
	}

	WriteSuccess(w, status, NewCartResponse(c.cartUsecase.State(), durable))
}

// getCart
//
//	@Summary	Текущая корзина
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	c.writeCart(w, http.StatusOK)
}

// addItem
//
//	@Summary		Добавление товара в корзину
//	@Description	Повторное добавление увеличивает количество. quantity по умолчанию 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddCartItemRequest	true	"Товар"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/items [post]
func (c *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var body AddCartItemRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	quantity := 1
	if body.Quantity != nil {
		quantity = *body.Quantity
	}
	if quantity < 1 {
		WriteError(w, e.Wrap(fmt.Sprintf("quantity: %d", quantity), e.ErrInvalidQuantity))
		return
	}
	if body.ProductID <= 0 {
		WriteError(w, e.Wrap(fmt.Sprintf("productId: %d", body.ProductID), e.ErrInvalidProductID))
		return
	}

	product, err := c.catalogUsecase.GetProduct(r.Context(), body.ProductID)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	c.cartUsecase.AddQuantity(r.Context(), product, quantity)

	c.writeCart(w, http.StatusOK)
}

// updateItem
//
//	@Summary		Изменение количества
//	@Description	Количество 0 удаляет строку. Отсутствующий товар игнорируется
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Идентификатор товара"
//	@Param			body	body		UpdateCartItemRequest	true	"Количество"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/cart/items/{id} [put]
func (c *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body UpdateCartItemRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	if body.Quantity == nil || *body.Quantity < 0 {
		WriteError(w, e.Wrap("quantity", e.ErrInvalidQuantity))
		return
	}

	c.cartUsecase.SetQuantity(r.Context(), id, *body.Quantity)
	c.writeCart(w, http.StatusOK)
}

// removeItem
//
//	@Summary	Удаление товара из корзины
//	@Tags		cart
//	@Produce	json
//	@Param		id	path		int	true	"Идентификатор товара"
//	@Success	200	{object}	CartResponse
//	@Router		/cart/items/{id} [delete]
func (c *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	c.cartUsecase.Remove(r.Context(), id)
	c.writeCart(w, http.StatusOK)
}

// clearCart
//
//	@Summary	Очистка корзины
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [delete]
func (c *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	c.cartUsecase.Clear(r.Context())
	c.writeCart(w, http.StatusOK)
}
