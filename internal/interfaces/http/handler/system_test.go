package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeHealth(t *testing.T, body []byte) HealthResponse {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		h := NewSystemHandler("erp-costing", "1.2.3")
		c, w := newTestContext(http.MethodGet, "/health")
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		health := decodeHealth(t, w.Body.Bytes())
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "erp-costing", health.Name)
		assert.Equal(t, "1.2.3", health.Version)
		assert.Empty(t, health.Checks)
	})

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("erp-costing", "dev")
		h.AddCheck("database", func(context.Context) error { return nil })

		c, w := newTestContext(http.MethodGet, "/health")
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"database": "ok"}, decodeHealth(t, w.Body.Bytes()).Checks)
	})

	t.Run("failing check degrades", func(t *testing.T) {
		h := NewSystemHandler("erp-costing", "dev")
		h.AddCheck("database", func(context.Context) error { return nil })
		h.AddCheck("redis", func(context.Context) error { return errors.New("dial tcp: refused") })

		c, w := newTestContext(http.MethodGet, "/health")
		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		health := decodeHealth(t, w.Body.Bytes())
		assert.Equal(t, "degraded", health.Status)
		assert.Equal(t, "dial tcp: refused", health.Checks["redis"])
		assert.Equal(t, "ok", health.Checks["database"])
	})
}
