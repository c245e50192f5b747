package quotations

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/corestore/commerce-backend/app/api"
	"github.com/corestore/commerce-backend/app/orders"
	"github.com/corestore/commerce-backend/models"
)

type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Quotation struct {
	ID              string  `json:"id"`
	QuotationNumber string  `json:"quotationNumber"`
	UserID          string  `json:"userId"`
	Status          string  `json:"status"`
	Total           float64 `json:"total"`
	ValidUntil      string  `json:"validUntil"`
	Notes           string  `json:"notes,omitempty"`
	CustomerNotes   string  `json:"customerNotes,omitempty"`
	Items           []Item  `json:"items"`
	CreatedAt       string  `json:"createdAt"`
}

type ListResponse struct {
	Total      int         `json:"total"`
	Quotations []Quotation `json:"quotations"`
}

type QuotationProvider interface {
	Create(ctx context.Context, userID string, in models.QuotationInput) (*models.Quotation, error)
	UpdateStatus(ctx context.Context, id string, next models.QuotationStatus, notes string) (*models.Quotation, error)
	ConvertToOrder(ctx context.Context, quotationID, userID, shippingAddress, billingAddress string) (*models.Order, error)
	Delete(ctx context.Context, id, userID string, isAdmin bool) error
	FindAll(ctx context.Context, offset, limit int, filters models.QuotationFilters) ([]models.Quotation, int64, error)
	FindByID(ctx context.Context, id string) (*models.Quotation, error)
	FindByNumber(ctx context.Context, number string) (*models.Quotation, error)
}

type QuotationHandler struct {
	repo QuotationProvider
}

func NewQuotationHandler(r QuotationProvider) *QuotationHandler {
	return &QuotationHandler{repo: r}
}

func (h *QuotationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	var input struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		ValidUntil    time.Time `json:"validUntil"`
		Notes         string    `json:"notes"`
		CustomerNotes string    `json:"customerNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items := make([]models.QuotationItemInput, len(input.Items))
	for i, it := range input.Items {
		if it.ProductID == "" {
			api.Fail(w, http.StatusBadRequest, "items[].productId is required")
			return
		}
		items[i] = models.QuotationItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	quotation, err := h.repo.Create(r.Context(), id.UserID, models.QuotationInput{
		Items:         items,
		ValidUntil:    input.ValidUntil,
		Notes:         input.Notes,
		CustomerNotes: input.CustomerNotes,
	})
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, present(quotation))
}

func (h *QuotationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	page := 1
	limit := 20
	if pStr := r.URL.Query().Get("page"); pStr != "" {
		if p, err := strconv.Atoi(pStr); err == nil && p >= 1 {
			page = p
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

	filters := models.QuotationFilters{
		Status: models.QuotationStatus(r.URL.Query().Get("status")),
	}
	if id.IsAdmin() {
		filters.UserID = r.URL.Query().Get("userId")
	} else {
		filters.UserID = id.UserID
	}

	res, total, err := h.repo.FindAll(r.Context(), (page-1)*limit, limit, filters)
	if err != nil {
		api.Error(w, err)
		return
	}

	quotations := make([]Quotation, len(res))
	for i, q := range res {
		quotations[i] = present(&q)
	}
	api.JSON(w, http.StatusOK, ListResponse{Total: int(total), Quotations: quotations})
}

func (h *QuotationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, func(ctx context.Context) (*models.Quotation, error) {
		return h.repo.FindByID(ctx, r.PathValue("id"))
	})
}

func (h *QuotationHandler) HandleGetByNumber(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, func(ctx context.Context) (*models.Quotation, error) {
		return h.repo.FindByNumber(ctx, r.PathValue("number"))
	})
}

func (h *QuotationHandler) getOne(w http.ResponseWriter, r *http.Request, load func(context.Context) (*models.Quotation, error)) {
	id, _ := api.IdentityFrom(r.Context())

	quotation, err := load(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	if !id.IsAdmin() && quotation.UserID != id.UserID {
		api.Error(w, models.ErrNotOwner)
		return
	}

	api.JSON(w, http.StatusOK, present(quotation))
}

func (h *QuotationHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.Status == "" {
		api.Fail(w, http.StatusBadRequest, "status is required")
		return
	}

	quotation, err := h.repo.UpdateStatus(r.Context(), r.PathValue("id"), models.QuotationStatus(input.Status), input.Notes)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, present(quotation))
}

// HandleConvert materializes an approved quotation into an order at the
// quotation's locked prices.
func (h *QuotationHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	var input struct {
		ShippingAddress string `json:"shippingAddress"`
		BillingAddress  string `json:"billingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.ShippingAddress == "" || input.BillingAddress == "" {
		api.Fail(w, http.StatusBadRequest, "shippingAddress and billingAddress are required")
		return
	}

	order, err := h.repo.ConvertToOrder(r.Context(), r.PathValue("id"), id.UserID, input.ShippingAddress, input.BillingAddress)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, orders.Present(order))
}

func (h *QuotationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	if err := h.repo.Delete(r.Context(), r.PathValue("id"), id.UserID, id.IsAdmin()); err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, nil)
}

func present(q *models.Quotation) Quotation {
	items := make([]Item, len(q.Items))
	for i, it := range q.Items {
		items[i] = Item{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		}
	}
	return Quotation{
		ID:              q.ID,
		QuotationNumber: q.QuotationNumber,
		UserID:          q.UserID,
		Status:          string(q.Status),
		Total:           q.Total.InexactFloat64(),
		ValidUntil:      q.ValidUntil.UTC().Format(time.RFC3339),
		Notes:           q.Notes,
		CustomerNotes:   q.CustomerNotes,
		Items:           items,
		CreatedAt:       q.CreatedAt.UTC().Format(time.RFC3339),
	}
}
