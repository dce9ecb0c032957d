package router

import (
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"github.com/autoparts/storefront/internal/interfaces/http/handler"
	"github.com/autoparts/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Auth     *handler.AuthHandler
	Cart     *handler.CartHandler
	Catalog  *handler.CatalogHandler
	Checkout *handler.CheckoutHandler
	Account  *handler.AccountHandler
	Admin    *handler.AdminHandler
	System   *handler.SystemHandler
}

// Deps are the shared resources the middleware stack needs
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *telemetry.Metrics
	Sessions middleware.SessionSource
	// RateLimiter is used when rate limiting is enabled. The caller owns
	// it and closes it on shutdown.
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the middleware stack and every
// route of the storefront and the back-office.
func NewEngine(deps Deps, h Handlers) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id is needed by the logger, the span by
	// SpanAttributes, and the profile by everything mounted below.
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(deps.Metrics))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.Secure())

	// probes and metrics stay outside rate limiting and profiles
	engine.GET("/health/live", h.System.Live)
	engine.GET("/health/ready", h.System.Ready)
	engine.GET("/system/info", h.System.GetSystemInfo)
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	app := engine.Group("")
	if cfg.HTTP.RateLimitEnabled && deps.RateLimiter != nil {
		app.Use(middleware.RateLimit(deps.RateLimiter, deps.Metrics))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	app.Use(
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Profile(cfg.Cookie, deps.Sessions),
		middleware.SpanAttributes(),
	)

	// Payment provider redirects land on the storefront root. The session
	// may have lapsed on the provider's page, so only the profile is needed.
	app.GET(checkout.SuccessPath, h.Checkout.PaymentSucceeded)
	app.GET(checkout.CancelledPath, h.Checkout.PaymentCancelled)

	api := app.Group("/api/v1")
	for _, g := range domainGroups(h) {
		g.RegisterRoutes(api)
	}
	return engine
}

func domainGroups(h Handlers) []*DomainGroup {
	session := NewDomainGroup("session", "/session").
		GET("", h.Auth.Session).
		POST("/refresh", h.Auth.Refresh)

	auth := NewDomainGroup("auth", "/auth").
		POST("/signin", h.Auth.SignIn).
		POST("/signup", h.Auth.SignUp).
		POST("/logout", h.Auth.Logout).
		GET("/google", h.Auth.Google).
		GET("/google/callback", h.Auth.GoogleCallback).
		POST("/reset-password", h.Auth.ResetPassword).
		POST("/change-password", h.Auth.ChangePassword)

	cart := NewDomainGroup("cart", "/cart").
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PATCH("/items/:id", h.Cart.UpdateQuantity).
		DELETE("/items/:id", h.Cart.RemoveItem)

	catalog := NewDomainGroup("catalog", "/catalog").
		GET("/spare-parts", h.Catalog.ListSpareParts).
		GET("/spare-parts/:id", h.Catalog.GetSparePart).
		GET("/search", h.Catalog.Search).
		GET("/filters", h.Catalog.Filters).
		GET("/categories", h.Catalog.Categories).
		GET("/brands", h.Catalog.Brands).
		GET("/brands/:id/models", h.Catalog.BrandModels).
		GET("/brand-models/:id/types", h.Catalog.ModelTypes).
		GET("/years", h.Catalog.Years)

	checkoutGroup := NewDomainGroup("checkout", "/checkout").
		Use(middleware.RequireSession()).
		GET("", h.Checkout.State).
		POST("/next", h.Checkout.Next).
		POST("/back", h.Checkout.Back).
		POST("/payment", h.Checkout.Payment).
		GET("/success", h.Checkout.PaymentSucceeded).
		GET("/cancelled", h.Checkout.PaymentCancelled)

	account := NewDomainGroup("account", "/account").
		Use(middleware.RequireSession()).
		GET("/details", h.Account.ListDetails).
		POST("/details", h.Account.CreateDetail).
		GET("/details/:id", h.Account.GetDetail).
		PUT("/details/:id", h.Account.UpdateDetail).
		DELETE("/details/:id", h.Account.DeleteDetail).
		GET("/orders", h.Account.ListOrders).
		GET("/orders/:id", h.Account.GetOrder)

	return []*DomainGroup{session, auth, cart, catalog, checkoutGroup, account, adminGroup(h.Admin)}
}

func adminGroup(a *handler.AdminHandler) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		Use(middleware.RequireSession(), middleware.RequireRoles(identity.BackOfficeRoles...))

	admin.Group("spare-parts", "/spare-parts").
		GET("", a.ListSpareParts).
		POST("", a.CreateSparePart).
		GET("/:id", a.GetSparePart).
		PATCH("/:id", a.UpdateSparePart).
		DELETE("/:id", a.DeleteSparePart)

	admin.Group("categories", "/categories").
		GET("", a.ListCategories).
		POST("", a.CreateCategory).
		GET("/:id", a.GetCategory).
		PATCH("/:id", a.UpdateCategory).
		DELETE("/:id", a.DeleteCategory)

	admin.Group("brands", "/brands").
		GET("", a.ListBrands).
		POST("", a.CreateBrand).
		GET("/:id", a.GetBrand).
		PATCH("/:id", a.UpdateBrand).
		DELETE("/:id", a.DeleteBrand)

	admin.Group("brand-models", "/brand-models").
		GET("", a.ListBrandModels).
		POST("", a.CreateBrandModel).
		GET("/:id", a.GetBrandModel).
		PATCH("/:id", a.UpdateBrandModel).
		DELETE("/:id", a.DeleteBrandModel)

	admin.Group("model-types", "/model-types").
		GET("", a.ListModelTypes).
		POST("", a.CreateModelType).
		GET("/:id", a.GetModelType).
		PATCH("/:id", a.UpdateModelType).
		DELETE("/:id", a.DeleteModelType)

	admin.Group("users", "/users").
		GET("", a.ListUsers).
		GET("/:id", a.GetUser).
		PATCH("/:id", a.UpdateUser)

	admin.Group("orders", "/orders").
		GET("", a.ListOrders).
		GET("/:id", a.GetOrder)

	admin.POST("/uploads", a.UploadImage)
	admin.POST("/files/image", a.UploadFile)
	return admin
}
