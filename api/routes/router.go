package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mweidner/product-inventory-backend/api/controllers"
	"github.com/mweidner/product-inventory-backend/api/middleware"
	products "github.com/mweidner/product-inventory-backend/internal/products"
	"github.com/mweidner/product-inventory-backend/pkg/config"
	"github.com/mweidner/product-inventory-backend/pkg/db"
	"github.com/mweidner/product-inventory-backend/pkg/logger"
	"github.com/mweidner/product-inventory-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface of the inventory API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	productService products.Service,
	metricsGatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productService, logg))
		r.Post("/", controllers.CreateProduct(productService, logg))
		r.Get("/export", controllers.ExportProducts(productService, logg))
		r.Get("/{productId}", controllers.GetProduct(productService, logg))
		r.Patch("/{productId}", controllers.UpdateProduct(productService, logg))
		r.Delete("/{productId}", controllers.DeleteProduct(productService, logg))
	})

	return r
}
