package orders

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"encoding/json"

	"github.com/corestore/commerce-backend/app/api"
	"github.com/corestore/commerce-backend/models"
)

type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID              string  `json:"id"`
	OrderNumber     string  `json:"orderNumber"`
	UserID          string  `json:"userId"`
	Status          string  `json:"status"`
	Total           float64 `json:"total"`
	ShippingAddress string  `json:"shippingAddress"`
	BillingAddress  string  `json:"billingAddress"`
	PaymentMethod   string  `json:"paymentMethod,omitempty"`
	PaymentStatus   string  `json:"paymentStatus"`
	Notes           string  `json:"notes,omitempty"`
	Items           []Item  `json:"items"`
	CreatedAt       string  `json:"createdAt"`
}

type ListResponse struct {
	Total  int     `json:"total"`
	Orders []Order `json:"orders"`
}

type OrderProvider interface {
	CreateFromCart(ctx context.Context, userID string, in models.CheckoutInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus, paymentStatus string) (*models.Order, error)
	Cancel(ctx context.Context, orderID, userID string, isAdmin bool) (*models.Order, error)
	FindAll(ctx context.Context, offset, limit int, filters models.OrderFilters) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
}

type OrderHandler struct {
	repo OrderProvider
}

func NewOrderHandler(r OrderProvider) *OrderHandler {
	return &OrderHandler{repo: r}
}

// HandleCreate is the checkout: the caller's cart becomes an immutable
// priced order in one transaction.
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	var input struct {
		ShippingAddress string `json:"shippingAddress"`
		BillingAddress  string `json:"billingAddress"`
		PaymentMethod   string `json:"paymentMethod"`
		Notes           string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.ShippingAddress == "" || input.BillingAddress == "" {
		api.Fail(w, http.StatusBadRequest, "shippingAddress and billingAddress are required")
		return
	}

	order, err := h.repo.CreateFromCart(r.Context(), id.UserID, models.CheckoutInput{
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	})
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, Present(order))
}

func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	filters := models.OrderFilters{
		Status: models.OrderStatus(r.URL.Query().Get("status")),
	}
	// non-admin callers only ever see their own orders
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

	orders := make([]Order, len(res))
	for i, o := range res {
		orders[i] = Present(&o)
	}
	api.JSON(w, http.StatusOK, ListResponse{Total: int(total), Orders: orders})
}

func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, func(ctx context.Context) (*models.Order, error) {
		return h.repo.FindByID(ctx, r.PathValue("id"))
	})
}

func (h *OrderHandler) HandleGetByNumber(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, func(ctx context.Context) (*models.Order, error) {
		return h.repo.FindByNumber(ctx, r.PathValue("number"))
	})
}

func (h *OrderHandler) getOne(w http.ResponseWriter, r *http.Request, load func(context.Context) (*models.Order, error)) {
	id, _ := api.IdentityFrom(r.Context())

	order, err := load(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	if !id.IsAdmin() && order.UserID != id.UserID {
		api.Error(w, models.ErrNotOwner)
		return
	}

	api.JSON(w, http.StatusOK, Present(order))
}

// HandleUpdateStatus is admin-only (enforced by the router) and validates
// the transition against the order state machine.
func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.Status == "" {
		api.Fail(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), r.PathValue("id"), models.OrderStatus(input.Status), input.PaymentStatus)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, Present(order))
}

func (h *OrderHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())

	order, err := h.repo.Cancel(r.Context(), r.PathValue("id"), id.UserID, id.IsAdmin())
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, Present(order))
}

// Present maps a domain order onto its response shape. Exported because
// quotation conversion responds with the created order.
func Present(o *models.Order) Order {
	items := make([]Item, len(o.Items))
	for i, it := range o.Items {
		items[i] = Item{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		}
	}
	return Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		Total:           o.Total.InexactFloat64(),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
