package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/window"
)

const (
	maxTotalRequestSize = 16 << 20
	maxMemory           = 8 << 20
	maxImageSize        = 5 << 20
)

type ProductHandler struct {
	catalogUsecase usecase.CatalogUC
	layout         window.Layout
	logger         logger.Logger
}

func NewProductHandler(catalogUsecase usecase.CatalogUC, layout window.Layout, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUsecase: catalogUsecase, layout: layout, logger: logger}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Единый каталог с фильтрацией и сортировкой
//	@Tags			products
//	@Produce		json
//	@Param			q			query		string	false	"Подстрока в названии или описании"
//	@Param			category	query		string	false	"Категория"
//	@Param			minPrice	query		string	false	"Минимальная цена, например 10.50"
//	@Param			maxPrice	query		string	false	"Максимальная цена"
//	@Param			sort		query		string	false	"none | price-asc | price-desc | rating-desc"
//	@Success		200			{object}	ProductListResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse	"Оба источника недоступны"
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseFilterQuery(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	catalog, err := p.catalogUsecase.GetCatalog(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	view := usecase.DeriveView(catalog, q)
	WriteSuccess(w, http.StatusOK, ProductListResponse{
		Items:      NewProductResponses(view),
		Total:      len(view),
		Collisions: usecase.FindIDCollisions(catalog),
	})
}

// productsWindow
//
//	@Summary		Видимая часть списка товаров
//	@Description	Отфильтрованный список, урезанный до окна отрисовки сетки
//	@Tags			products
//	@Produce		json
//	@Param			width	query		int	true	"Ширина области просмотра, px"
//	@Param			height	query		int	true	"Высота области просмотра, px"
//	@Param			scroll	query		int	false	"Смещение прокрутки, px"
//	@Success		200		{object}	WindowResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/products/window [get]
func (p *ProductHandler) productsWindow(w http.ResponseWriter, r *http.Request) {
	width, errW := queryInt(r, "width", 0)
	height, errH := queryInt(r, "height", 0)
	scroll, errS := queryInt(r, "scroll", 0)
	if errW != nil || errH != nil || errS != nil || width == 0 || height == 0 {
		err := e.Wrap(fmt.Sprintf("width=%q height=%q scroll=%q",
			r.URL.Query().Get("width"), r.URL.Query().Get("height"), r.URL.Query().Get("scroll")), e.ErrInvalidViewport)
		p.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	q, err := parseFilterQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	catalog, err := p.catalogUsecase.GetCatalog(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	view := usecase.DeriveView(catalog, q)
	columns := p.layout.Columns(width)
	start, end := p.layout.Range(len(view), columns, scroll, height)

	WriteSuccess(w, http.StatusOK, WindowResponse{
		Window: window.Window{
			Start:       start,
			End:         end,
			Columns:     columns,
			TotalHeight: p.layout.TotalHeight(len(view), columns),
		},
		Items: NewProductResponses(view[start:end]),
		Total: len(view),
	})
}

// suggestions
//
//	@Summary		Подсказки поиска
//	@Description	До 5 товаров, у которых название или категория содержат запрос (не короче 2 символов)
//	@Tags			products
//	@Produce		json
//	@Param			q	query		string	true	"Запрос"
//	@Success		200	{object}	SuggestionsResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/products/suggestions [get]
func (p *ProductHandler) suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := usecase.Suggest(r.Context(), p.catalogUsecase, query)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, SuggestionsResponse{
		Query: query,
		Items: NewProductResponses(products),
	})
}

// getProduct
//
//	@Summary	Товар по идентификатору
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"Идентификатор товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.catalogUsecase.GetProduct(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponse(product))
}

// createProduct
//
//	@Summary		Добавление локального товара
//	@Description	Принимает JSON или multipart/form-data с необязательным файлом image
//	@Tags			products
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			title		formData	string	true	"Название"
//	@Param			price		formData	string	true	"Цена, например 19.99"
//	@Param			description	formData	string	false	"Описание"
//	@Param			category	formData	string	false	"Категория"
//	@Param			image		formData	file	false	"Изображение товара"
//	@Success		201			{object}	ProductResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		413			{object}	ErrorResponse
//	@Failure		415			{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	var (
		req *usecase.AddLocalProductReq
		err error
	)
	switch {
	case isMultipart(r):
		req, err = p.parseProductForm(r)
	case isJSON(r):
		req, err = p.parseProductJSON(r)
	default:
		err = e.Wrap(r.Header.Get("Content-Type"), e.ErrUnsupportedMediaType)
	}
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.catalogUsecase.AddLocalProduct(r.Context(), req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	p.logger.Infof("local product created. id: %d, title: %s", product.ID, product.Title)
	WriteSuccess(w, http.StatusCreated, NewProductResponse(product))
}

func (p *ProductHandler) parseProductJSON(r *http.Request) (*usecase.AddLocalProductReq, error) {
	var body ProductRequest
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}

	price, err := parsePriceToCents(body.Price.String())
	if err != nil {
		return nil, err
	}

	return usecase.NewAddLocalProductReq(domain.ProductDraft{
		Title:       body.Title,
		Price:       price,
		Description: body.Description,
		Category:    body.Category,
		Image:       strings.TrimSpace(body.Image),
	}, nil), nil
}

func (p *ProductHandler) parseProductForm(r *http.Request) (*usecase.AddLocalProductReq, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	price, err := parsePriceToCents(r.FormValue("price"))
	if err != nil {
		return nil, err
	}

	draft := domain.ProductDraft{
		Title:       r.FormValue("title"),
		Price:       price,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Image:       strings.TrimSpace(r.FormValue("image_url")),
	}

	var image *usecase.ProductImage
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		image, err = readImage(files[0], maxImageSize)
		if err != nil {
			return nil, err
		}
	}

	return usecase.NewAddLocalProductReq(draft, image), nil
}

// updateProduct
//
//	@Summary	Изменение локального товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Идентификатор товара"
//	@Param		body	body		ProductPatchRequest	true	"Изменяемые поля"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse	"Товар из внешнего источника"
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{id} [patch]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body ProductPatchRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	patch := domain.ProductPatch{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		Image:       body.Image,
	}
	if body.Price != nil {
		price, err := parsePriceToCents(body.Price.String())
		if err != nil {
			WriteError(w, err)
			return
		}
		patch.Price = &price
	}

	product, err := p.catalogUsecase.UpdateLocalProduct(r.Context(), id, patch)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление локального товара
//	@Tags		products
//	@Param		id	path	int	true	"Идентификатор товара"
//	@Success	204
//	@Failure	403	{object}	ErrorResponse	"Товар из внешнего источника"
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.catalogUsecase.DeleteLocalProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listCategories
//
//	@Summary		Категории и диапазон цен
//	@Description	Категории в порядке первого появления и границы цен, округлённые до целых единиц
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/categories [get]
func (p *ProductHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := p.catalogUsecase.GetCatalog(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	resp := CategoriesResponse{Categories: usecase.Categories(catalog)}
	if bounds, ok := usecase.PriceBounds(catalog); ok {
		resp.PriceRange = NewPriceBoundsResponse(bounds)
	}

	WriteSuccess(w, http.StatusOK, resp)
}
