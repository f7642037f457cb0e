package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInvalidCostData, http.StatusBadRequest},
		{ErrCodeInvalidAllocation, http.StatusBadRequest},
		{ErrCodeUnsupportedStrategy, http.StatusBadRequest},
		{ErrCodeUnsupportedAllocationMethod, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeRegistrySealed, http.StatusConflict},
		{ErrCodeInvalidPeriodTransition, http.StatusUnprocessableEntity},
		{ErrCodePeriodNotOpen, http.StatusUnprocessableEntity},
		{ErrCodeAllocationUnbalanced, http.StatusUnprocessableEntity},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorCodeHTTPStatus_CoversDomainSentinels(t *testing.T) {
	sentinels := []*shared.DomainError{
		shared.ErrNotFound,
		shared.ErrAlreadyExists,
		shared.ErrInvalidInput,
		shared.ErrConcurrencyConflict,
		shared.ErrInvalidState,
		shared.ErrInsufficientStock,
		shared.ErrInvalidCostData,
		shared.ErrInvalidAllocation,
		shared.ErrUnsupportedAllocationMethod,
		shared.ErrUnsupportedStrategy,
		shared.ErrInvalidPeriodTransition,
		shared.ErrPeriodNotOpen,
		shared.ErrAllocationUnbalanced,
	}
	for _, s := range sentinels {
		_, ok := ErrorCodeHTTPStatus[s.Code]
		assert.True(t, ok, "no status mapped for %s", s.Code)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		pageSize  int
		wantPages int
		wantPage  int
	}{
		{"exact pages", 40, 2, 20, 2, 2},
		{"partial last page", 41, 1, 20, 3, 1},
		{"empty", 0, 1, 20, 0, 1},
		{"zero page is clamped", 5, 0, 10, 1, 1},
		{"zero page size", 5, 1, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]int{}, tt.total, tt.page, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.wantPage, resp.Meta.Page)
			assert.Equal(t, tt.total, resp.Meta.Total)
		})
	}
}

func TestErrorResponses_JSONShape(t *testing.T) {
	t.Run("error envelope omits data and meta", func(t *testing.T) {
		body, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeNotFound, "cost period not found", "req-1"))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.Equal(t, false, decoded["success"])
		assert.NotContains(t, decoded, "data")
		assert.NotContains(t, decoded, "meta")

		errInfo := decoded["error"].(map[string]any)
		assert.Equal(t, "NOT_FOUND", errInfo["code"])
		assert.Equal(t, "cost period not found", errInfo["message"])
		assert.Equal(t, "req-1", errInfo["request_id"])
		assert.NotContains(t, errInfo, "details")
	})

	t.Run("validation envelope lists fields", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
			{Field: "sku", Message: "This field is required"},
		})
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "sku", resp.Error.Details[0].Field)

		body, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "request_id")
	})

	t.Run("plain error response has no request id", func(t *testing.T) {
		resp := NewErrorResponse(ErrCodeBadRequest, "bad")
		assert.Empty(t, resp.Error.RequestID)
	})
}
