package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/corestore/commerce-backend/app/api"
	"github.com/corestore/commerce-backend/app/cart"
	"github.com/corestore/commerce-backend/app/catalog"
	"github.com/corestore/commerce-backend/app/orders"
	"github.com/corestore/commerce-backend/app/quotations"
	"github.com/corestore/commerce-backend/models"
)

// New constructs the root handler: repositories, feature handlers, and
// the route table with auth gating per route.
func New(db *gorm.DB, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "degraded")
			return
		}
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	catalogHandler := catalog.NewCatalogHandler(models.NewProductsRepository(db))
	r.Get("/products", catalogHandler.HandleGet)
	r.Get("/products/{sku}", catalogHandler.HandleGetProduct)

	cartHandler := cart.NewCartHandler(models.NewCartsRepository(db))
	r.Route("/cart", func(r chi.Router) {
		r.Use(api.RequireIdentity)
		r.Get("/", cartHandler.HandleGet)
		r.Delete("/", cartHandler.HandleClear)
		r.Post("/items", cartHandler.HandleAddItem)
		r.Put("/items/{itemId}", cartHandler.HandleUpdateItem)
		r.Delete("/items/{itemId}", cartHandler.HandleRemoveItem)
	})

	orderHandler := orders.NewOrderHandler(models.NewOrdersRepository(db))
	r.Route("/orders", func(r chi.Router) {
		r.Use(api.RequireIdentity)
		r.Post("/", orderHandler.HandleCreate)
		r.Get("/", orderHandler.HandleList)
		r.Get("/{id}", orderHandler.HandleGet)
		r.Get("/number/{number}", orderHandler.HandleGetByNumber)
		r.Patch("/{id}/cancel", orderHandler.HandleCancel)
		r.With(api.RequireAdmin).Patch("/{id}/status", orderHandler.HandleUpdateStatus)
	})

	quotationHandler := quotations.NewQuotationHandler(models.NewQuotationsRepository(db))
	r.Route("/quotations", func(r chi.Router) {
		r.Use(api.RequireIdentity)
		r.Post("/", quotationHandler.HandleCreate)
		r.Get("/", quotationHandler.HandleList)
		r.Get("/{id}", quotationHandler.HandleGet)
		r.Get("/number/{number}", quotationHandler.HandleGetByNumber)
		r.Post("/{id}/convert-to-order", quotationHandler.HandleConvert)
		r.Delete("/{id}", quotationHandler.HandleDelete)
		r.With(api.RequireAdmin).Patch("/{id}/status", quotationHandler.HandleUpdateStatus)
	})

	return r
}
