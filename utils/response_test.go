package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{Validation("Rating must be between 1 and 5"), http.StatusBadRequest, "Rating must be between 1 and 5"},
		{Unauthorized("Not authorized"), http.StatusUnauthorized, "Not authorized"},
		{Forbidden("Vendors only"), http.StatusForbidden, "Vendors only"},
		{NotFound("Order not found"), http.StatusNotFound, "Order not found"},
		{Conflict("User already exists"), http.StatusConflict, "User already exists"},
		{InvalidState("Cannot create an order from an empty cart"), http.StatusBadRequest, "Cannot create an order from an empty cart"},
		{Internal(errors.New("db down"), "load cart"), http.StatusInternalServerError, "Internal Server Error"},
		{errors.New("plain"), http.StatusInternalServerError, "Internal Server Error"},
		{fmt.Errorf("wrapped: %w", NotFound("Product not found")), http.StatusNotFound, "Product not found"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, H{"count": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"count":2}`, rec.Body.String())
}
