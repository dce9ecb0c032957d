package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemEngine(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
	r.GET("/system/info", h.GetSystemInfo)
	return r
}

func getPath(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSystemHandler_Live(t *testing.T) {
	w := getPath(systemEngine(NewSystemHandler("storefront", "1.0.0", nil)), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	w := getPath(systemEngine(NewSystemHandler("storefront", "1.2.3", nil)), "/system/info")
	info := decodeData[SystemInfoResponse](t, w)
	assert.Equal(t, "storefront", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestSystemHandler_Ready(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0", map[string]HealthCheck{"store": ok, "cache": ok})
		w := getPath(systemEngine(h), "/health/ready")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeData[ReadinessResponse](t, w)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"store": "ok", "cache": "ok"}, resp.Checks)
	})

	t.Run("one check fails", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0", map[string]HealthCheck{
			"store": ok,
			"cache": func(ctx context.Context) error { return errors.New("connection refused") },
		})
		w := getPath(systemEngine(h), "/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		env := decode(t, w)
		assert.False(t, env.Success)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["cache"])
		assert.Equal(t, "ok", resp.Checks["store"])
	})

	t.Run("a hung check times out", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0", map[string]HealthCheck{
			"backend": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		})
		w := getPath(systemEngine(h), "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("no checks", func(t *testing.T) {
		w := getPath(systemEngine(NewSystemHandler("storefront", "1.0.0", nil)), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
