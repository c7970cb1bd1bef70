package e

import "fmt"

var (
	// Каталог
	ErrCatalogUnavailable    = fmt.Errorf("catalog unavailable")
	ErrSourceStatus          = fmt.Errorf("unexpected source status")
	ErrProductNotFound       = fmt.Errorf("product not found")
	ErrRemoteProductReadOnly = fmt.Errorf("remote products are read-only")

	// Корзина и заказы
	ErrEmptyCart       = fmt.Errorf("cart is empty")
	ErrInvalidQuantity = fmt.Errorf("invalid quantity")

	// Внутренние ошибки хранилища
	ErrStoreUnavailable = fmt.Errorf("store unavailable")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")
	ErrUnknownStoreBackend  = fmt.Errorf("unknown store backend")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrProductTitleRequired = fmt.Errorf("product title is required")
	ErrPriceMustBePositive  = fmt.Errorf("price must be positive")
	ErrInvalidImageURL      = fmt.Errorf("invalid image url")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidProductID     = fmt.Errorf("invalid product id")
	ErrInvalidSortKey       = fmt.Errorf("invalid sort key")
	ErrInvalidViewport      = fmt.Errorf("invalid viewport")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrImagesDisabled       = fmt.Errorf("image upload is disabled")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
