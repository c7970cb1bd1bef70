package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/storefront/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/window"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Handlers — зависимости HTTP API.
type Handlers struct {
	Catalog  usecase.CatalogUC
	Cart     usecase.CartUC
	Orders   usecase.OrdersUC
	Checkout usecase.CheckoutUC
	Layout   window.Layout
}

func (r *Router) Init(h Handlers) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(r.requestLogger)
	r.router.Use(middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"), // относительно /swagger/
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerProductRoutes(v1, NewProductHandler(h.Catalog, h.Layout, r.logger))
		registerCartRoutes(v1, NewCartHandler(h.Cart, h.Catalog, r.logger))
		registerOrderRoutes(v1, NewOrderHandler(h.Checkout, h.Orders, r.logger))
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Post("/", prHandler.createProduct)
		pr.Get("/window", prHandler.productsWindow)
		pr.Get("/suggestions", prHandler.suggestions)
		pr.Get("/{id}", prHandler.getProduct)
		pr.Patch("/{id}", prHandler.updateProduct)
		pr.Delete("/{id}", prHandler.deleteProduct)
	})
	router.Get("/categories", prHandler.listCategories)
}

func registerCartRoutes(router chi.Router, cartHandler *CartHandler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Get("/", cartHandler.getCart)
		cr.Delete("/", cartHandler.clearCart)
		cr.Post("/items", cartHandler.addItem)
		cr.Put("/items/{id}", cartHandler.updateItem)
		cr.Delete("/items/{id}", cartHandler.removeItem)
	})
}

func registerOrderRoutes(router chi.Router, orderHandler *OrderHandler) {
	router.Post("/checkout", orderHandler.checkout)
	router.Get("/orders", orderHandler.listOrders)
}

func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, req)

		r.logger.Debugf("%s %s -> %d (%v) request_id=%s",
			req.Method, req.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(req.Context()))
	})
}
