package logger

import (
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

func TestRedactQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"nothing sensitive", "page=2&search=filtro", "page=2&search=filtro"},
		{"token", "token=eyJhbGciOi", "token=%5BREDACTED%5D"},
		{"mixed case key", "Token=abc&page=1", "Token=%5BREDACTED%5D&page=1"},
		{"repeated", "code=a&code=b", "code=%5BREDACTED%5D&code=%5BREDACTED%5D"},
		{"unparseable", "token=%zz", "[REDACTED]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactQuery(tt.in))
		})
	}
}

func TestGinMiddleware_RedactsOAuthToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/api/v1/auth/google/callback", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?token=secret-jwt", nil))

	logs := httpLogs(recorded)
	require.Len(t, logs, 1)
	query, _ := logs[0].ContextMap()["query"].(string)
	assert.NotContains(t, query, "secret-jwt")
	assert.Contains(t, query, "REDACTED")
}
