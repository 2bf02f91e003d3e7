// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/gateway"
	"github.com/rufinostore/bubastore/internal/handlers"
	"github.com/rufinostore/bubastore/internal/middleware"
	"github.com/rufinostore/bubastore/internal/services"
)

// Services bundles everything the router mounts. Built once in main so
// background workers share the same instances as the HTTP layer.
type Services struct {
	Auth        *services.AuthService
	User        *services.UserService
	Product     *services.ProductService
	Payment     *services.PaymentService
	Webhook     *services.WebhookService
	Sale        *services.SaleService
	Download    *services.DownloadService
	Storage     *services.StorageService
	Fulfillment *services.FulfillmentService
}

// BuildServices wires the service graph with injected gateway clients.
func BuildServices(db *gorm.DB, cfg *config.Config, stripe *gateway.StripeClient, mercadopago *gateway.MercadoPagoClient) (*Services, error) {
	storage, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	sale := services.NewSaleService(db, cfg)
	download := services.NewDownloadService(cfg)
	notification := services.NewNotificationService(cfg)
	fulfillment := services.NewFulfillmentService(db, cfg, sale, download, notification)

	return &Services{
		Auth:        services.NewAuthService(db, cfg),
		User:        services.NewUserService(db, cfg, storage),
		Product:     services.NewProductService(db, cfg, storage),
		Payment:     services.NewPaymentService(db, cfg, stripe, mercadopago),
		Webhook:     services.NewWebhookService(db, cfg, stripe, mercadopago, fulfillment),
		Sale:        sale,
		Download:    download,
		Storage:     storage,
		Fulfillment: fulfillment,
	}, nil
}

// Setup builds the HTTP router.
func Setup(cfg *config.Config, db *gorm.DB, svcs *Services) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.Locale(cfg.I18n.DefaultLocale))

	authHandler := handlers.NewAuthHandler(svcs.Auth, svcs.User)
	productHandler := handlers.NewProductHandler(svcs.Product)
	storefrontHandler := handlers.NewStorefrontHandler(svcs.User)
	paymentHandler := handlers.NewPaymentHandler(svcs.Payment)
	webhookHandler := handlers.NewWebhookHandler(svcs.Webhook)
	downloadHandler := handlers.NewDownloadHandler(svcs.Download, svcs.Product, svcs.Storage)
	saleHandler := handlers.NewSaleHandler(svcs.Sale)
	adminHandler := handlers.NewAdminHandler(services.NewAdminService(db, cfg), svcs.Sale)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimit())
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.StrictRateLimit(), authHandler.Register)
			auth.POST("/login", middleware.StrictRateLimit(), authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)

			me := auth.Group("")
			me.Use(middleware.AuthRequired())
			{
				me.GET("/me", authHandler.GetProfile)
				me.PUT("/me", authHandler.UpdateProfile)
				me.POST("/me/avatar", authHandler.UploadAvatar)
			}
		}

		products := api.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.ListMine)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
			products.POST("/:id/file", productHandler.UploadFile)
			products.POST("/:id/cover", productHandler.UploadCover)
		}

		// Public surfaces. Storefronts take an optional token so owners
		// see their inactive products.
		api.GET("/storefront/:username", middleware.OptionalAuth(), storefrontHandler.Get)
		api.GET("/download/:token", downloadHandler.Redeem)

		checkout := api.Group("/checkout")
		{
			checkout.POST("/stripe", paymentHandler.CreateStripeCheckout)
			checkout.POST("/mercadopago", paymentHandler.CreateMercadoPagoCheckout)
		}

		sales := api.Group("/sales")
		sales.Use(middleware.AuthRequired())
		{
			sales.GET("", saleHandler.ListMine)
			sales.GET("/summary", saleHandler.Summary)
			sales.GET("/:id", saleHandler.Get)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/products", adminHandler.ListProducts)
			admin.GET("/sales", adminHandler.ListSales)
		}
	}

	// Webhooks sit outside the rate limiter; gateways retry aggressively
	// and a 429 would delay fulfillment.
	webhooks := r.Group("/api/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.Stripe)
		webhooks.POST("/mercadopago", webhookHandler.MercadoPago)
	}

	return r
}
