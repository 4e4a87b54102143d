package router

import (
	"net/http"

	"restore/internal/handler"
	"restore/internal/middleware"
	"restore/internal/observability"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Search   *handler.SearchHandler
	Basket   *handler.BasketHandler
	Chat     *handler.ChatHandler
}

// Options configures cross-cutting router behaviour.
type Options struct {
	APIKey       string
	AllowOrigins []string
	Metrics      *observability.Metrics
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	admin := middleware.APIKeyAuth(opts.APIKey, logger)

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})
	mux.Handle("GET /metrics", opts.Metrics.Handler())

	// Catalog
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("GET /api/products/filters", h.Products.Filters)
	mux.HandleFunc("GET /api/products/search", h.Search.Search)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)

	// Catalog administration
	mux.Handle("POST /api/products", admin(http.HandlerFunc(h.Products.Create)))
	mux.Handle("PUT /api/products", admin(http.HandlerFunc(h.Products.Update)))
	mux.Handle("DELETE /api/products/{id}", admin(http.HandlerFunc(h.Products.Delete)))
	mux.Handle("POST /api/products/index", admin(http.HandlerFunc(h.Search.IndexAll)))
	mux.Handle("POST /api/products/index/{id}", admin(http.HandlerFunc(h.Search.IndexOne)))

	// Basket and payments
	mux.HandleFunc("GET /api/basket", h.Basket.Get)
	mux.HandleFunc("POST /api/basket", h.Basket.AddItem)
	mux.HandleFunc("DELETE /api/basket", h.Basket.RemoveItem)
	mux.HandleFunc("POST /api/basket/coupon/{code}", h.Basket.ApplyCoupon)
	mux.HandleFunc("DELETE /api/basket/remove-coupon", h.Basket.RemoveCoupon)
	mux.HandleFunc("POST /api/payments", h.Basket.CreateOrUpdatePaymentIntent)

	// Assistant
	mux.HandleFunc("POST /api/chat", h.Chat.Chat)

	// Apply middleware in order: Recovery -> Metrics -> Logging -> CORS
	var root http.Handler = mux
	root = middleware.CORS(opts.AllowOrigins)(root)
	root = middleware.Logging(logger)(root)
	root = middleware.Metrics(opts.Metrics)(root)
	root = middleware.Recovery(logger)(root)

	return root
}
