package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"vendor-import-service/internal/clients"
	"vendor-import-service/internal/clients/ikas"
	"vendor-import-service/internal/config"
	"vendor-import-service/internal/database"
	"vendor-import-service/internal/handlers"
	"vendor-import-service/internal/middleware"
	"vendor-import-service/internal/models"
	"vendor-import-service/internal/repository"
	"vendor-import-service/internal/secrets"
	"vendor-import-service/internal/services"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Vendor{},
		&models.VendorProduct{},
		&models.VendorPrice{},
		&models.VendorImportLog{},
	); err != nil {
		logger.WithError(err).Warn("Auto-migration failed")
	}
	logger.Info("Database models migrated")

	// Resolve ikas credentials: env first, GCP Secret Manager as fallback
	ikasCreds := ikas.Credentials{
		ClientID:     cfg.IkasClientID,
		ClientSecret: cfg.IkasClientSecret,
		BaseURL:      cfg.IkasBaseURL,
	}
	if ikasCreds.ClientSecret == "" && cfg.GCPProjectID != "" {
		ctx := context.Background()
		secretManager, err := secrets.NewGCPSecretManager(ctx, cfg.GCPProjectID)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize GCP Secret Manager")
		} else {
			defer secretManager.Close()
			secretName := secretManager.BuildSecretName(cfg.IkasVendorCode)
			vendorSecret, err := secretManager.GetVendorSecret(ctx, secretName)
			if err != nil {
				logger.WithError(err).Warn("Failed to load ikas credentials from Secret Manager")
			} else {
				ikasCreds.ClientID = vendorSecret.ClientID
				ikasCreds.ClientSecret = vendorSecret.ClientSecret
				if vendorSecret.BaseURL != "" {
					ikasCreds.BaseURL = vendorSecret.BaseURL
				}
			}
		}
	}

	// Register vendor platform clients
	registry := clients.NewRegistry()
	registry.Register(cfg.IkasVendorCode, ikas.NewIkasClient(ikasCreds, logger))

	// Initialize repositories
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	vendorProductRepo := repository.NewVendorProductRepository(db)
	importLogRepo := repository.NewImportLogRepository(db)

	// Initialize services
	catalogService := services.NewCatalogService(registry, logger)
	catalogService.RegisterVendor(services.VendorIdentity{
		Code:        cfg.IkasVendorCode,
		Name:        cfg.IkasVendorName,
		Description: "Ikas e-commerce platform",
	})
	importService := services.NewImportService(vendorRepo, productRepo, vendorProductRepo, importLogRepo, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	vendorHandler := handlers.NewVendorHandler(catalogService, importService)
	vendorProductHandler := handlers.NewVendorProductHandler(importService)

	// Setup router
	router := setupRouter(cfg, logger, healthHandler, vendorHandler, vendorProductHandler)

	// Start server
	logger.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Vendor Import Service starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	healthHandler *handlers.HealthHandler,
	vendorHandler *handlers.VendorHandler,
	vendorProductHandler *handlers.VendorProductHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		// Vendor catalogs and imports
		vendors := v1.Group("/vendors")
		{
			vendors.GET("", vendorHandler.ListVendors)
			vendors.GET("/available", vendorHandler.ListAvailableVendors)
			vendors.GET("/:vendorCode", vendorHandler.GetVendor)
			vendors.GET("/:vendorCode/catalog", vendorHandler.GetCatalog)
			vendors.POST("/:vendorCode/import", vendorHandler.ImportProducts)
			vendors.GET("/:vendorCode/import-logs", vendorHandler.ListImportLogs)
			vendors.GET("/:vendorCode/products", vendorProductHandler.ListVendorProducts)
		}

		// Vendor product links
		vendorProducts := v1.Group("/vendor-products")
		{
			vendorProducts.POST("/:id/match", vendorProductHandler.MatchVendorProduct)
			vendorProducts.PUT("/:id/price", vendorProductHandler.UpdateVendorPrice)
		}

		// Vendor prices per internal product
		v1.GET("/products/:id/vendor-prices", vendorProductHandler.GetProductPrices)
	}

	return router
}
