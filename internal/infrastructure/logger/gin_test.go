package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ginRequestIDKey, "req-1")
		c.Next()
	}, GinMiddleware(zap.New(core)))

	var seenOperator string
	router.POST("/costs/records", func(c *gin.Context) {
		seenOperator = GetOperator(c.Request.Context())
		c.Request = c.Request.WithContext(WithSKU(c.Request.Context(), "SKU-1"))
		L(c.Request.Context()).Info("Cost recorded")
		c.Status(http.StatusCreated)
	})
	router.GET("/stock/skus/:sku", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/consistency/repair", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	t.Run("operator header reaches handlers and the request line", func(t *testing.T) {
		logs.TakeAll()
		req := httptest.NewRequest(http.MethodPost, "/costs/records?dry=1", nil)
		req.Header.Set(OperatorHeader, "alice")
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "alice", seenOperator)

		service := logs.FilterMessage("Cost recorded").All()
		require.Len(t, service, 1)
		assert.Equal(t, "req-1", service[0].ContextMap()["request_id"])
		assert.Equal(t, "/costs/records", service[0].ContextMap()["path"])

		line := logs.FilterMessage("HTTP Request").All()
		require.Len(t, line, 1)
		fields := line[0].ContextMap()
		assert.Equal(t, zapcore.InfoLevel, line[0].Level)
		assert.Equal(t, "alice", fields["operator"])
		assert.Equal(t, "SKU-1", fields["sku"])
		assert.Equal(t, "POST", fields["method"])
		assert.Equal(t, "dry=1", fields["query"])
		assert.Equal(t, int64(http.StatusCreated), fields["status"])
	})

	levels := []struct {
		path string
		want zapcore.Level
	}{
		{"/stock/skus/X", zapcore.WarnLevel},
		{"/consistency/repair", zapcore.ErrorLevel},
	}
	for _, tt := range levels {
		t.Run(tt.path, func(t *testing.T) {
			logs.TakeAll()
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			line := logs.FilterMessage("HTTP Request").All()
			require.Len(t, line, 1)
			assert.Equal(t, tt.want, line[0].Level)
			_, hasOperator := line[0].ContextMap()["operator"]
			assert.False(t, hasOperator)
		})
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/periods/:id", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/periods/1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}
