package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/infrastructure"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// maxPriceCents ограничивает цену миллиардом в основной валюте.
const maxPriceCents = 100_000_000_000

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var badRequestErrs = []error{
	e.ErrStatusBadRequest,
	e.ErrProductTitleRequired,
	e.ErrPriceMustBePositive,
	e.ErrInvalidImageURL,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrInvalidProductID,
	e.ErrInvalidSortKey,
	e.ErrInvalidViewport,
	e.ErrInvalidQuantity,
	e.ErrImagesDisabled,
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, e.ErrCatalogUnavailable.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrRemoteProductReadOnly):
		return http.StatusForbidden, e.ErrRemoteProductReadOnly.Error()
	case errors.Is(err, e.ErrEmptyCart):
		return http.StatusConflict, e.ErrEmptyCart.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	}

	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePriceToCents переводит строку вида "599.99" или "600" в центы.
// Допускается не более двух знаков после запятой.
func parsePriceToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}
	if d.IsNegative() {
		return 0, e.ErrInvalidPrice
	}
	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	cents := d.Shift(2)
	if cents.GreaterThan(decimal.NewFromInt(maxPriceCents)) {
		return 0, e.ErrInvalidPrice
	}

	return cents.IntPart(), nil
}

// formatCents выводит сумму в центах с двумя знаками после запятой.
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func parseProductID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(fmt.Sprintf("id: %q", raw), e.ErrInvalidProductID)
	}
	return id, nil
}

// queryInt читает целый неотрицательный параметр запроса. Пустое значение даёт def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, e.Wrap(fmt.Sprintf("%s: %q", name, raw), e.ErrStatusBadRequest)
	}
	return v, nil
}

// parseFilterQuery собирает FilterQuery из параметров q, category, minPrice, maxPrice и sort.
func parseFilterQuery(r *http.Request) (domain.FilterQuery, error) {
	query := r.URL.Query()
	q := domain.NewFilterQuery()
	q.Text = query.Get("q")
	q.Category = query.Get("category")

	if raw := query.Get("minPrice"); raw != "" {
		cents, err := parsePriceToCents(raw)
		if err != nil {
			return q, e.Wrap("minPrice", err)
		}
		q.PriceRange.Min = cents
	}
	if raw := query.Get("maxPrice"); raw != "" {
		cents, err := parsePriceToCents(raw)
		if err != nil {
			return q, e.Wrap("maxPrice", err)
		}
		q.PriceRange.Max = cents
	}
	if q.PriceRange.Min > q.PriceRange.Max {
		return q, e.Wrap("minPrice > maxPrice", e.ErrInvalidPrice)
	}

	sortKey, err := usecase.ParseSortKey(query.Get("sort"))
	if err != nil {
		return q, err
	}
	q.SortKey = sortKey

	return q, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err))
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func readImage(fh *multipart.FileHeader, maxSize int64) (*usecase.ProductImage, error) {
	if fh.Size > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	if !infrastructure.IsSupportedImage(mimeType) {
		return nil, e.Wrap(mimeType, e.ErrUnsupportedMediaType)
	}

	return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
}
