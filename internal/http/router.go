package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/http/handlers"
	"github.com/quickkart/marketplace/internal/http/middlewares"
	"github.com/quickkart/marketplace/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const jsonBodyLimit = 1 << 20

type Sessions interface {
	handlers.SessionService
	middlewares.SessionVerifier
}

type Catalog interface {
	handlers.ProductLister
	handlers.SellerCatalog
}

type Carts interface {
	handlers.CartService
	handlers.CartNames
}

// Deps is everything the router needs. Prom and Gatherer may be nil in tests.
type Deps struct {
	Log      *slog.Logger
	Config   config.Config
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Accounts handlers.AccountService
	Sessions Sessions
	Catalog  Catalog
	Carts    Carts
	Receipts handlers.ReceiptGenerator

	// Ping and Draining back /readyz.
	Ping     func(ctx context.Context) error
	Draining func() bool
	// LocalObjectsDir is served under /objects when images live on local disk.
	LocalObjectsDir string
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	if cfg.OTELEndpoint != "" {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	// cors.New panics on an empty origin list
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id", "If-None-Match"},
			ExposeHeaders:    []string{"X-Request-Id", "ETag", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))

	health := handlers.NewHealthHandler(d.Ping, d.Draining)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	if d.LocalObjectsDir != "" {
		r.Static("/objects", d.LocalObjectsDir)
	}

	authMw := middlewares.NewAuthMiddleware(d.Sessions)
	maxJSON := middlewares.MaxBodyBytes(jsonBodyLimit)
	requireJSON := middlewares.RequireJSON()

	credentials := []gin.HandlerFunc{maxJSON, requireJSON}
	if cfg.LoginRateLimit > 0 {
		limiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
		credentials = append(credentials, limiter.RateLimiterMiddleware(middlewares.KeyByEmailOrIP))
	}

	authH := handlers.NewAuthHandler(d.Accounts, d.Sessions)
	productsH := handlers.NewProductsHandler(d.Catalog)
	sellerH := handlers.NewSellerProductsHandler(d.Catalog, d.Accounts, cfg.MaxUploadBytes)
	cartH := handlers.NewCartHandler(d.Carts, d.Receipts)
	storefrontH := handlers.NewStorefrontHandler(d.Catalog, d.Carts)

	// public
	authGroup := r.Group("/auth")
	{
		creds := authGroup.Group("", credentials...)
		creds.POST("/signup", authH.SignUp)
		creds.POST("/login", authH.Login)
	}

	r.GET("/products", productsH.ListAvailable)
	r.GET("/products/:id", productsH.GetProduct)

	// any signed-in principal
	authed := r.Group("/")
	authed.Use(authMw.RequireAuth())
	{
		authed.POST("/auth/logout", authH.Logout)
		authed.POST("/auth/logout-all", authH.LogoutAll)
		authed.GET("/auth/me", authH.Me)
	}

	seller := r.Group("/seller")
	seller.Use(authMw.RequireAuth(), authMw.RequireRole(principal.RoleSeller))
	{
		seller.GET("/products", sellerH.List)
		// multipart form plus image; the body cap leaves room for the form fields
		seller.POST("/products", middlewares.MaxBodyBytes(cfg.MaxUploadBytes+jsonBodyLimit), middlewares.RequireProductForm(), sellerH.Create)
		seller.DELETE("/products/:id", sellerH.Delete)
		seller.PATCH("/products/:id/quantity", maxJSON, requireJSON, sellerH.UpdateQuantity)
	}

	customer := r.Group("/")
	customer.Use(authMw.RequireAuth(), authMw.RequireRole(principal.RoleCustomer))
	{
		customer.GET("/storefront", storefrontH.Get)
		customer.GET("/cart", cartH.Get)
		customer.GET("/cart/contains", cartH.Contains)
		customer.POST("/cart/toggle", maxJSON, requireJSON, cartH.Toggle)
		customer.DELETE("/cart", cartH.Clear)
		customer.GET("/cart/receipt", cartH.Receipt)
	}

	return r
}
