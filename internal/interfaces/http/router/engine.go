package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/handler"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Config assembles the middleware stack of the engine
type Config struct {
	Logger         *zap.Logger
	TrustedProxies []string
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	JWT            middleware.JWTAuthConfig
	Tracing        middleware.TracingConfig
	// Metrics, when set, records HTTP metrics and MetricsHandler is served
	// at /metrics
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	SwaggerEnabled bool
}

// Handlers are the endpoint handlers mounted by NewEngine
type Handlers struct {
	Bills     *handler.BillHandler
	Inventory *handler.InventoryHandler
	Products  *handler.ProductHandler
	Customers *handler.CustomerHandler
	Settings  *handler.SettingsHandler
	Health    *handler.HealthHandler
}

// NewEngine builds the gin engine: ops endpoints at the root and the
// tenant-scoped API under /api/v1.
//
// Middleware order: request ID, recovery, tracing, request log, metrics,
// security headers, CORS, body limit; then JWT and tenant on the API group.
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(logger.GinMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.Middleware())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	if cfg.Metrics != nil && cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	if cfg.SwaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.JWT.SkipPathPrefixes == nil {
		cfg.JWT.SkipPathPrefixes = []string{"/swagger"}
	}
	if cfg.JWT.Logger == nil {
		cfg.JWT.Logger = cfg.Logger
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuth(cfg.JWT),
		middleware.Tenant(middleware.TenantConfig{HeaderEnabled: !cfg.JWT.Required}),
		middleware.SpanAttributes(),
	)
	registerRoutes(r, h)
	r.Setup()

	return engine, nil
}

func registerRoutes(r *Router, h Handlers) {
	if h.Bills != nil {
		bills := NewDomainGroup("billing", "/bills")
		bills.POST("", h.Bills.Create)
		bills.GET("", h.Bills.List)
		bills.GET("/stats", h.Bills.Stats)
		bills.GET("/daily-sales", h.Bills.DailySales)
		bills.GET("/:id", h.Bills.Get)
		bills.PATCH("/:id", h.Bills.Update)
		bills.POST("/:id/cancel", h.Bills.Cancel)
		bills.POST("/:id/payments", h.Bills.AddPayment)
		bills.GET("/:id/payments", h.Bills.ListPayments)
		r.Register(bills)
	}

	if h.Inventory != nil {
		inventory := NewDomainGroup("inventory", "/inventory")
		inventory.POST("/transactions", h.Inventory.AddTransaction)
		inventory.GET("/products/:id/stock", h.Inventory.GetProductStock)
		inventory.GET("/stats", h.Inventory.GetStats)
		r.Register(inventory)
	}

	if h.Products != nil {
		products := NewDomainGroup("catalog", "/products")
		products.POST("", h.Products.Create)
		products.GET("", h.Products.List)
		products.GET("/:id", h.Products.Get)
		products.POST("/:id/deactivate", h.Products.Deactivate)
		r.Register(products)
	}

	if h.Customers != nil {
		customers := NewDomainGroup("partner", "/customers")
		customers.POST("", h.Customers.Create)
		customers.GET("/:id", h.Customers.Get)
		r.Register(customers)
	}

	if h.Settings != nil {
		settings := NewDomainGroup("settings", "/settings")
		settings.GET("", h.Settings.Get)
		settings.PUT("", h.Settings.Update)
		r.Register(settings)
	}
}
