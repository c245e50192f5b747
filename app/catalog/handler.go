package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/corestore/commerce-backend/app/api"
	"github.com/corestore/commerce-backend/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	ID       string   `json:"id"`
	SKU      string   `json:"sku"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Stock    int      `json:"stock"`
	IsActive bool     `json:"isActive"`
	Images   []string `json:"images"`
}

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	filters := models.ProductFilters{
		SKU:        r.URL.Query().Get("sku"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	res, total, err := h.repo.GetFilteredProducts(r.Context(), offset, limit, filters)
	if err != nil {
		api.Error(w, err)
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = present(p)
	}

	api.JSON(w, http.StatusOK, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")

	product, err := h.repo.GetBySKU(r.Context(), sku)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, present(*product))
}

func present(p models.Product) Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Price:    p.Price.InexactFloat64(),
		Stock:    p.Stock,
		IsActive: p.IsActive,
		Images:   images,
	}
}
