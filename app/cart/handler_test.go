package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/corestore/commerce-backend/app/api"
	"github.com/corestore/commerce-backend/models"
)

// --- Mock Repo ---

type MockCartRepo struct {
	View *models.CartView
	Err  error

	lastUserID    string
	lastProductID string
	lastItemID    string
	lastQty       int
	cleared       bool
}

func (m *MockCartRepo) Get(_ context.Context, userID string) (*models.CartView, error) {
	m.lastUserID = userID
	if m.Err != nil {
		return nil, m.Err
	}
	if m.View != nil {
		return m.View, nil
	}
	return &models.CartView{UserID: userID, Items: []models.CartItemView{}, Total: decimal.Zero}, nil
}

func (m *MockCartRepo) AddItem(_ context.Context, userID, productID string, qty int) (*models.CartItem, error) {
	m.lastUserID = userID
	m.lastProductID = productID
	m.lastQty = qty
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.CartItem{ID: "item-1", ProductID: productID, Quantity: qty}, nil
}

func (m *MockCartRepo) UpdateItem(_ context.Context, userID, itemID string, qty int) (*models.CartItem, error) {
	m.lastUserID = userID
	m.lastItemID = itemID
	m.lastQty = qty
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.CartItem{ID: itemID, Quantity: qty}, nil
}

func (m *MockCartRepo) RemoveItem(_ context.Context, userID, itemID string) error {
	m.lastUserID = userID
	m.lastItemID = itemID
	return m.Err
}

func (m *MockCartRepo) Clear(_ context.Context, userID string) error {
	m.lastUserID = userID
	m.cleared = true
	return m.Err
}

// --- Helpers ---

func authedRequest(method, url, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	ctx := api.WithIdentity(req.Context(), api.Identity{UserID: "user-1", Role: api.RoleCustomer})
	return req.WithContext(ctx)
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	view := &models.CartView{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []models.CartItemView{
			{
				ID:        "item-1",
				ProductID: "prod-1",
				SKU:       "PROD001",
				Name:      "Product PROD001",
				Quantity:  2,
				UnitPrice: decimal.NewFromFloat(19.99),
				ItemTotal: decimal.NewFromFloat(39.98),
				Stock:     5,
				IsActive:  true,
			},
		},
		Total: decimal.NewFromFloat(39.98),
	}

	repo := &MockCartRepo{View: view}
	handler := NewCartHandler(repo)

	rec := httptest.NewRecorder()
	handler.HandleGet(rec, authedRequest(http.MethodGet, "/cart", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", repo.lastUserID)

	var env struct {
		Status string   `json:"status"`
		Data   Response `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "success", env.Status)
	assert.Len(t, env.Data.Items, 1)
	assert.Equal(t, 39.98, env.Data.Items[0].ItemTotal)
	assert.Equal(t, 39.98, env.Data.Total)
}

func TestHandleAddItem(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		repoErr            error
		expectedStatusCode int
	}{
		{
			name:               "Success",
			body:               `{"productId":"prod-1","quantity":2}`,
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:               "Invalid JSON",
			body:               `{`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Missing productId",
			body:               `{"quantity":2}`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Insufficient stock maps to 400",
			body:               `{"productId":"prod-1","quantity":99}`,
			repoErr:            models.ErrInsufficientStock,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Unknown product maps to 404",
			body:               `{"productId":"prod-404","quantity":1}`,
			repoErr:            models.ErrProductNotFound,
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Inactive product maps to 400",
			body:               `{"productId":"prod-1","quantity":1}`,
			repoErr:            models.ErrProductInactive,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockCartRepo{Err: tc.repoErr}
			handler := NewCartHandler(repo)

			rec := httptest.NewRecorder()
			handler.HandleAddItem(rec, authedRequest(http.MethodPost, "/cart/items", tc.body))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}

func TestHandleUpdateItem(t *testing.T) {
	repo := &MockCartRepo{}
	handler := NewCartHandler(repo)

	req := authedRequest(http.MethodPut, "/cart/items/item-1", `{"quantity":4}`)
	req.SetPathValue("itemId", "item-1")
	rec := httptest.NewRecorder()

	handler.HandleUpdateItem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item-1", repo.lastItemID)
	assert.Equal(t, 4, repo.lastQty)
}

func TestHandleUpdateItemNotFound(t *testing.T) {
	repo := &MockCartRepo{Err: models.ErrCartItemNotFound}
	handler := NewCartHandler(repo)

	req := authedRequest(http.MethodPut, "/cart/items/other", `{"quantity":4}`)
	req.SetPathValue("itemId", "other")
	rec := httptest.NewRecorder()

	handler.HandleUpdateItem(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRemoveItem(t *testing.T) {
	repo := &MockCartRepo{}
	handler := NewCartHandler(repo)

	req := authedRequest(http.MethodDelete, "/cart/items/item-1", "")
	req.SetPathValue("itemId", "item-1")
	rec := httptest.NewRecorder()

	handler.HandleRemoveItem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item-1", repo.lastItemID)
}

func TestHandleClear(t *testing.T) {
	repo := &MockCartRepo{}
	handler := NewCartHandler(repo)

	rec := httptest.NewRecorder()
	handler.HandleClear(rec, authedRequest(http.MethodDelete, "/cart", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.cleared)
}
