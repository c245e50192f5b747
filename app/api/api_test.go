package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corestore/commerce-backend/models"
)

func TestRequireIdentity(t *testing.T) {
	testCases := []struct {
		name               string
		userID             string
		role               string
		expectedStatusCode int
		expectNext         bool
	}{
		{
			name:               "Both headers present",
			userID:             "user-1",
			role:               RoleCustomer,
			expectedStatusCode: http.StatusOK,
			expectNext:         true,
		},
		{
			name:               "Missing user header",
			role:               RoleCustomer,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Missing role header",
			userID:             "user-1",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "No headers",
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var nextCalled bool
			var seen Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				seen, _ = IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tc.userID != "" {
				req.Header.Set(HeaderUserID, tc.userID)
			}
			if tc.role != "" {
				req.Header.Set(HeaderUserRole, tc.role)
			}
			rec := httptest.NewRecorder()

			RequireIdentity(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectNext, nextCalled)
			if tc.expectNext {
				assert.Equal(t, tc.userID, seen.UserID)
				assert.Equal(t, tc.role, seen.Role)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	testCases := []struct {
		name               string
		identity           *Identity
		expectedStatusCode int
	}{
		{
			name:               "Admin passes",
			identity:           &Identity{UserID: "admin-1", Role: RoleAdmin},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Customer is rejected",
			identity:           &Identity{UserID: "user-1", Role: RoleCustomer},
			expectedStatusCode: http.StatusForbidden,
		},
		{
			name:               "No identity in context",
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", nil)
			if tc.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tc.identity))
			}
			rec := httptest.NewRecorder()

			RequireAdmin(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}

func TestErrorMapsDomainKinds(t *testing.T) {
	testCases := []struct {
		name               string
		err                error
		expectedStatusCode int
		expectedMessage    string
	}{
		{
			name:               "Not found",
			err:                models.ErrProductNotFound,
			expectedStatusCode: http.StatusNotFound,
			expectedMessage:    "product not found",
		},
		{
			name:               "Validation",
			err:                models.ErrInsufficientStock,
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "insufficient stock",
		},
		{
			name:               "Conflict",
			err:                models.ErrNumberCollision,
			expectedStatusCode: http.StatusConflict,
			expectedMessage:    "could not generate a unique document number",
		},
		{
			name:               "Forbidden",
			err:                models.ErrNotOwner,
			expectedStatusCode: http.StatusForbidden,
			expectedMessage:    "resource belongs to another user",
		},
		{
			name:               "Infrastructure errors stay generic",
			err:                errors.New("pq: connection refused"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedMessage:    "internal server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			Error(rec, tc.err)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			var env Envelope
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tc.expectedMessage, env.Message)
		})
	}
}

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env Envelope
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "success", env.Status)
	assert.Empty(t, env.Message)
}
