package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/logger"
	"github.com/erp/costing/internal/interfaces/http/dto"
	"github.com/erp/costing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.Success(c, map[string]string{"sku": "SKU-1"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("created", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/")
		h.Created(c, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		c, w := newTestContext(http.MethodDelete, "/")
		h.NoContent(c)
		c.Writer.WriteHeaderNow()
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Zero(t, w.Body.Len())
	})
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		wantPage       int
		wantPageSize   int
		wantTotalPages int
	}{
		{"explicit paging", 2, 10, 2, 10, 5},
		{"defaults applied", 0, 0, 1, 20, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			(&BaseHandler{}).SuccessWithMeta(c, []int{}, 50, tt.page, tt.pageSize)

			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, int64(50), resp.Meta.Total)
			assert.Equal(t, tt.wantPage, resp.Meta.Page)
			assert.Equal(t, tt.wantPageSize, resp.Meta.PageSize)
			assert.Equal(t, tt.wantTotalPages, resp.Meta.TotalPages)
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         shared.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "Resource not found",
		},
		{
			name:        "wrapped domain error keeps full message",
			err:         fmt.Errorf("%w: period P1 is CLOSED", shared.ErrPeriodNotOpen),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "PERIOD_NOT_OPEN",
			wantMessage: "Cost period is not open: period P1 is CLOSED",
		},
		{
			name:       "unsupported strategy",
			err:        fmt.Errorf("%w: no calculator for cost method 'x'", shared.ErrUnsupportedStrategy),
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_STRATEGY",
		},
		{
			name:       "concurrency conflict",
			err:        shared.ErrConcurrencyConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "CONCURRENCY_CONFLICT",
		},
		{
			name:        "unknown error hides details",
			err:         errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		(&BaseHandler{}).HandleError(c, nil)
		assert.False(t, c.Writer.Written())
		assert.Zero(t, w.Body.Len())
	})
}

func TestBaseHandlerHandleError_LogsRequestScope(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c, _ := newTestContext(http.MethodPost, "/costs/records")
	ctx := logger.WithOperator(logger.WithContext(c.Request.Context(), zap.New(core)), "alice")
	c.Request = c.Request.WithContext(ctx)

	scopeSKU(c, "SKU-9")
	scopeSKU(c, "")
	assert.Equal(t, "SKU-9", logger.GetSKU(c.Request.Context()))

	(&BaseHandler{}).HandleError(c, errors.New("disk full"))

	entries := logs.FilterMessage("Unhandled request error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "SKU-9", fields["sku"])
	assert.Equal(t, "alice", fields["operator"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestBaseHandlerPathID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		c, _ := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		got, ok := h.pathID(c, "period")
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("invalid", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: "nope"}}

		_, ok := h.pathID(c, "period")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "Invalid period ID format", resp.Error.Message)
	})
}
