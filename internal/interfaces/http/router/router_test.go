package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/autoparts/storefront/internal/application/account"
	"github.com/autoparts/storefront/internal/application/admin"
	appcatalog "github.com/autoparts/storefront/internal/application/catalog"
	appcheckout "github.com/autoparts/storefront/internal/application/checkout"
	"github.com/autoparts/storefront/internal/application/clientstore"
	appidentity "github.com/autoparts/storefront/internal/application/identity"
	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/event"
	"github.com/autoparts/storefront/internal/infrastructure/store"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"github.com/autoparts/storefront/internal/interfaces/http/handler"
	"github.com/autoparts/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.Prefix())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})

	g := NewDomainGroup("test", "/test").
		GET("/a", func(c *gin.Context) { c.String(http.StatusOK, "a") }).
		POST("/b", func(c *gin.Context) { c.String(http.StatusCreated, "b") }).
		PUT("/c/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
		PATCH("/d/:id", func(c *gin.Context) { c.String(http.StatusOK, "d") }).
		DELETE("/e/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	other := NewDomainGroup("other", "/other").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "other") })
	r.Register(g, other).Setup()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/test/a", http.StatusOK},
		{http.MethodPost, "/api/v1/test/b", http.StatusCreated},
		{http.MethodPut, "/api/v1/test/c/1", http.StatusOK},
		{http.MethodPatch, "/api/v1/test/d/1", http.StatusOK},
		{http.MethodDelete, "/api/v1/test/e/1", http.StatusNoContent},
		{http.MethodGet, "/api/v1/other", http.StatusOK},
		{http.MethodGet, "/test/a", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		if tt.status != http.StatusNotFound {
			assert.Equal(t, "yes", w.Header().Get("X-Api"))
		}
	}
}

func TestDomainGroup_SubgroupsInheritMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("admin", "/admin").Use(func(c *gin.Context) {
		c.Header("X-Group", "admin")
		c.Next()
	})
	g.Group("brands", "/brands").GET("", func(c *gin.Context) { c.String(http.StatusOK, "brands") })
	assert.Equal(t, "admin", g.Name())
	assert.Equal(t, "/admin", g.Prefix())

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/admin/brands")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "brands", w.Body.String())
	assert.Equal(t, "admin", w.Header().Get("X-Group"))
}

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront", Env: "test"},
		HTTP: config.HTTPConfig{
			MaxBodySize:       1 << 10,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitBurst:    2,
		},
		Backend: config.BackendConfig{
			URL:       backendURL,
			APIPrefix: "/api/v1",
			Timeout:   time.Second,
		},
		Cookie:  config.CookieConfig{Name: "sf_profile", Path: "/", SameSite: "lax", MaxAge: time.Hour},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	log := zap.NewNop()
	metrics := telemetry.NewMetrics()

	client := backend.NewClient(cfg.Backend, backend.WithMetrics(metrics))
	pricer, err := cart.NewPricer(decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	bus := event.NewInMemoryEventBus(log)
	sessions := clientstore.NewService(store.NewMemoryStore(time.Hour), bus, pricer, time.Hour, log)
	qc := cache.NewQueryCache(cache.NewMemoryStore())
	t.Cleanup(func() { _ = qc.Close() })

	catalogService := appcatalog.NewService(client, qc, appcatalog.NewDebouncer(time.Millisecond), appcatalog.Config{}, metrics, log)
	h := Handlers{
		Auth:     handler.NewAuthHandler(appidentity.NewAuthService(client, sessions, log)),
		Cart:     handler.NewCartHandler(sessions, catalogService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Checkout: handler.NewCheckoutHandler(appcheckout.NewService(client, sessions, qc, "", metrics, log)),
		Account:  handler.NewAccountHandler(account.NewService(client, qc, log)),
		Admin:    handler.NewAdminHandler(admin.NewService(client, qc, log), catalogService),
		System:   handler.NewSystemHandler("storefront", "test", nil),
	}

	deps := Deps{Config: cfg, Logger: log, Metrics: metrics, Sessions: sessions}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		t.Cleanup(limiter.Close)
		deps.RateLimiter = limiter
	}
	return NewEngine(deps, h)
}

func TestNewEngine_Probes(t *testing.T) {
	engine := newTestEngine(t, testConfig("http://127.0.0.1:1"))

	w := serve(engine, http.MethodGet, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	// probes do not mint profiles
	assert.Empty(t, w.Result().Cookies())

	w = serve(engine, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}

func TestNewEngine_MetricsDisabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Metrics.Enabled = false
	engine := newTestEngine(t, cfg)

	w := serve(engine, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewEngine_ProfileCookieAndGates(t *testing.T) {
	engine := newTestEngine(t, testConfig("http://127.0.0.1:1"))

	w := serve(engine, http.MethodGet, "/api/v1/cart")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sf_profile", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	for _, path := range []string{
		"/api/v1/checkout",
		"/api/v1/account/orders",
		"/api/v1/admin/users",
	} {
		w := serve(engine, http.MethodGet, path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestNewEngine_PaymentCallbacksWithoutSession(t *testing.T) {
	engine := newTestEngine(t, testConfig("http://127.0.0.1:1"))

	w := serve(engine, http.MethodGet, "/checkout-success?orderId=o-1&status=success")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"orderId":"o-1"`)

	req := httptest.NewRequest(http.MethodGet, "/checkout-success?orderId=o-1&status=success", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?orderId=o-1&status=success", w.Header().Get("Location"))

	w = serve(engine, http.MethodGet, "/checkout-cancelled")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"step":"cart"`)

	// the API variants still need a session
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/checkout/success").Code)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	engine := newTestEngine(t, testConfig("http://127.0.0.1:1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin",
		strings.NewReader(`{"email":"`+strings.Repeat("a", 2048)+`@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestNewEngine_RateLimit(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.HTTP.RateLimitEnabled = true
	engine := newTestEngine(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(engine, http.MethodGet, "/api/v1/catalog/years").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// probes are never limited
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health/live").Code)
}
