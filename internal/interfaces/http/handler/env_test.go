package handler

import (
	"context"
	"encoding/json"
	"io"
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
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/event"
	"github.com/autoparts/storefront/internal/infrastructure/store"
	"github.com/autoparts/storefront/internal/interfaces/http/dto"
	"github.com/autoparts/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testCookie = "sf_profile"

// testEnv is the full handler stack over a fake backend. Each env is one
// browser: it carries the profile cookie between requests.
type testEnv struct {
	t       *testing.T
	engine  *gin.Engine
	backend *http.ServeMux
	store   *clientstore.Service
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var sessions *clientstore.Service
	client := backend.NewClient(config.BackendConfig{
		URL:             srv.URL,
		APIPrefix:       "/api/v1",
		Timeout:         2 * time.Second,
		MutationRetries: 1,
		RetryBackoff:    time.Millisecond,
	}, backend.WithUnauthorizedHandler(func(ctx context.Context) {
		sessions.EndUnauthorized(ctx)
	}))

	pricer, err := cart.NewPricer(decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	bus := event.NewInMemoryEventBus(zap.NewNop())
	sessions = clientstore.NewService(store.NewMemoryStore(time.Hour), bus, pricer, time.Hour, zap.NewNop())
	bus.Subscribe(clientstore.NewSessionEndedHandler(sessions, zap.NewNop()))

	qc := cache.NewQueryCache(cache.NewMemoryStore())
	t.Cleanup(func() { _ = qc.Close() })

	catalogService := appcatalog.NewService(client, qc, appcatalog.NewDebouncer(time.Millisecond), appcatalog.Config{}, nil, zap.NewNop())
	authHandler := NewAuthHandler(appidentity.NewAuthService(client, sessions, zap.NewNop()))
	cartHandler := NewCartHandler(sessions, catalogService)
	catalogHandler := NewCatalogHandler(catalogService)
	checkoutHandler := NewCheckoutHandler(appcheckout.NewService(client, sessions, qc, "https://shop.example.com", nil, zap.NewNop()))
	accountHandler := NewAccountHandler(account.NewService(client, qc, zap.NewNop()))
	adminHandler := NewAdminHandler(admin.NewService(client, qc, zap.NewNop()), catalogService)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Profile(config.CookieConfig{
		Name:   testCookie,
		Path:   "/",
		MaxAge: time.Hour,
	}, sessions))

	engine.GET(checkout.SuccessPath, checkoutHandler.PaymentSucceeded)
	engine.GET(checkout.CancelledPath, checkoutHandler.PaymentCancelled)

	api := engine.Group("/api/v1")
	api.GET("/session", authHandler.Session)
	api.POST("/session/refresh", authHandler.Refresh)
	api.POST("/auth/signin", authHandler.SignIn)
	api.POST("/auth/signup", authHandler.SignUp)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/google", authHandler.Google)
	api.GET("/auth/google/callback", authHandler.GoogleCallback)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.POST("/auth/change-password", authHandler.ChangePassword)

	api.GET("/cart", cartHandler.Get)
	api.DELETE("/cart", cartHandler.Clear)
	api.POST("/cart/items", cartHandler.AddItem)
	api.PATCH("/cart/items/:id", cartHandler.UpdateQuantity)
	api.DELETE("/cart/items/:id", cartHandler.RemoveItem)

	api.GET("/catalog/spare-parts", catalogHandler.ListSpareParts)
	api.GET("/catalog/spare-parts/:id", catalogHandler.GetSparePart)
	api.GET("/catalog/search", catalogHandler.Search)
	api.GET("/catalog/filters", catalogHandler.Filters)
	api.GET("/catalog/categories", catalogHandler.Categories)
	api.GET("/catalog/brands", catalogHandler.Brands)
	api.GET("/catalog/years", catalogHandler.Years)

	authed := api.Group("", middleware.RequireSession())
	authed.GET("/checkout", checkoutHandler.State)
	authed.POST("/checkout/next", checkoutHandler.Next)
	authed.POST("/checkout/back", checkoutHandler.Back)
	authed.POST("/checkout/payment", checkoutHandler.Payment)
	authed.GET("/checkout/success", checkoutHandler.PaymentSucceeded)
	authed.GET("/checkout/cancelled", checkoutHandler.PaymentCancelled)
	authed.GET("/account/details", accountHandler.ListDetails)
	authed.POST("/account/details", accountHandler.CreateDetail)
	authed.GET("/account/details/:id", accountHandler.GetDetail)
	authed.PUT("/account/details/:id", accountHandler.UpdateDetail)
	authed.DELETE("/account/details/:id", accountHandler.DeleteDetail)
	authed.GET("/account/orders", accountHandler.ListOrders)
	authed.GET("/account/orders/:id", accountHandler.GetOrder)

	adm := api.Group("/admin", middleware.RequireSession(), middleware.RequireRoles(identity.BackOfficeRoles...))
	adm.GET("/spare-parts", adminHandler.ListSpareParts)
	adm.POST("/spare-parts", adminHandler.CreateSparePart)
	adm.PATCH("/spare-parts/:id", adminHandler.UpdateSparePart)
	adm.DELETE("/spare-parts/:id", adminHandler.DeleteSparePart)
	adm.GET("/brands", adminHandler.ListBrands)
	adm.POST("/brands", adminHandler.CreateBrand)
	adm.DELETE("/brands/:id", adminHandler.DeleteBrand)
	adm.GET("/brand-models", adminHandler.ListBrandModels)
	adm.GET("/users", adminHandler.ListUsers)
	adm.PATCH("/users/:id", adminHandler.UpdateUser)
	adm.GET("/orders", adminHandler.ListOrders)
	adm.POST("/uploads", adminHandler.UploadImage)
	adm.POST("/files/image", adminHandler.UploadFile)

	return &testEnv{t: t, engine: engine, backend: mux, store: sessions}
}

// serve runs req through the engine, keeping the profile cookie
func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			e.cookie = c
		}
	}
	return w
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(req)
}

// signIn stores a session for the env's profile through the real sign-in
func (e *testEnv) signIn(roles ...string) {
	e.t.Helper()
	rolesJSON, err := json.Marshal(roles)
	require.NoError(e.t, err)
	e.backend.HandleFunc("POST /api/v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"_id":"u1","email":"ana@example.com","roles":`+string(rolesJSON)+`,"token":"tok-1"}`)
	})
	w := e.do(http.MethodPost, "/api/v1/auth/signin", map[string]string{"email": "ana@example.com", "password": "secret"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
