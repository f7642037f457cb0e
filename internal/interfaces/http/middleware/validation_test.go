package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/costing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int64  `json:"quantity" binding:"gt=0"`
	Method   string `json:"method" binding:"omitempty,cost_method"`
	Alloc    string `json:"alloc" binding:"omitempty,allocation_method"`
}

func validationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validatedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	router := validationRouter(t)

	t.Run("valid input", func(t *testing.T) {
		w := postJSON(router, `{"sku":"SKU-001","quantity":5,"method":"weighted_average","alloc":"ratio"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		w := postJSON(router, `{"quantity":0,"method":"Bad-Method","alloc":"9x"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["sku"])
		assert.Equal(t, "Must be greater than 0", fields["quantity"])
		assert.Equal(t, "Invalid cost method name", fields["method"])
		assert.Equal(t, "Invalid allocation method name", fields["alloc"])
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		w := postJSON(router, `{"sku":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
	})
}

func TestMethodIdentifier(t *testing.T) {
	for _, ok := range []string{"fifo", "lifo", "weighted_average", "standard", "activity2"} {
		assert.True(t, methodIdentifier.MatchString(ok), ok)
	}
	for _, bad := range []string{"", "FIFO", "2fifo", "fi-fo", "_x", "a b"} {
		assert.False(t, methodIdentifier.MatchString(bad), bad)
	}
}
