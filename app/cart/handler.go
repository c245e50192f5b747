package cart

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corestore/commerce-backend/app/api"
	"github.com/corestore/commerce-backend/models"
)

type Item struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	SKU       string   `json:"sku"`
	Name      string   `json:"name"`
	Images    []string `json:"images"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
	ItemTotal float64  `json:"itemTotal"`
	Stock     int      `json:"stock"`
	IsActive  bool     `json:"isActive"`
}

type Response struct {
	ID     string  `json:"id,omitempty"`
	UserID string  `json:"userId"`
	Items  []Item  `json:"items"`
	Total  float64 `json:"total"`
}

type CartProvider interface {
	Get(ctx context.Context, userID string) (*models.CartView, error)
	AddItem(ctx context.Context, userID, productID string, qty int) (*models.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, qty int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	repo CartProvider
}

func NewCartHandler(r CartProvider) *CartHandler {
	return &CartHandler{repo: r}
}

// HandleGet returns the live-priced cart. Totals here are advisory; the
// binding price is fixed only at checkout.
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	view, err := h.repo.Get(r.Context(), id.UserID)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, present(view))
}

func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.ProductID == "" {
		api.Fail(w, http.StatusBadRequest, "productId is required")
		return
	}

	if _, err := h.repo.AddItem(r.Context(), id.UserID, input.ProductID, input.Quantity); err != nil {
		api.Error(w, err)
		return
	}

	view, err := h.repo.Get(r.Context(), id.UserID)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, present(view))
}

func (h *CartHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())
	itemID := r.PathValue("itemId")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := h.repo.UpdateItem(r.Context(), id.UserID, itemID, input.Quantity); err != nil {
		api.Error(w, err)
		return
	}

	view, err := h.repo.Get(r.Context(), id.UserID)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, present(view))
}

func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())
	itemID := r.PathValue("itemId")

	if err := h.repo.RemoveItem(r.Context(), id.UserID, itemID); err != nil {
		api.Error(w, err)
		return
	}

	view, err := h.repo.Get(r.Context(), id.UserID)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, present(view))
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	if err := h.repo.Clear(r.Context(), id.UserID); err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, Response{UserID: id.UserID, Items: []Item{}, Total: 0})
}

func present(view *models.CartView) Response {
	items := make([]Item, len(view.Items))
	for i, it := range view.Items {
		images := it.Images
		if images == nil {
			images = []string{}
		}
		items[i] = Item{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Images:    images,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
			ItemTotal: it.ItemTotal.InexactFloat64(),
			Stock:     it.Stock,
			IsActive:  it.IsActive,
		}
	}
	return Response{
		ID:     view.ID,
		UserID: view.UserID,
		Items:  items,
		Total:  view.Total.InexactFloat64(),
	}
}
