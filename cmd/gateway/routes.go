package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"stockwise-system/config"
	"stockwise-system/internal/database"
	"stockwise-system/internal/gateway/handlers"
	"stockwise-system/internal/gateway/middleware"
	invhandler "stockwise-system/internal/services/inventory/handler"
	saleshandler "stockwise-system/internal/services/sales/handler"
	userhandler "stockwise-system/internal/services/user/handler"
	"stockwise-system/internal/utils"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig()
	utils.SetSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		logrus.Fatalf("Failed to connect to db: %v", err)
	}

	if err := database.MigrateInventoryDB(db); err != nil {
		logrus.Fatalf("Failed to migrate inventory tables: %v", err)
	}
	if err := database.MigrateUserDB(db); err != nil {
		logrus.Fatalf("Failed to migrate user tables: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	inventoryService := invhandler.NewInventoryHandler(db, redisClient)
	salesService := saleshandler.NewSalesHandler(db, redisClient)
	userService := userhandler.NewUserHandler(db, redisClient, cfg.Auth.TokenTTL)

	inventoryHandler := handlers.NewInventoryHTTPHandler(inventoryService, cfg.Policy)
	salesHandler := handlers.NewSalesHTTPHandler(salesService)
	userHandler := handlers.NewUserHTTPHandler(userService)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())
	r.Use(middleware.Metrics())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
			auth.POST("/register", userHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		users := protected.Group("/users")
		{
			users.GET("/:id", userHandler.GetUser)
		}

		roles := protected.Group("/roles")
		{
			roles.POST("", userHandler.CreateRole)
			roles.GET("", userHandler.ListRoles)
		}

		inventoryGroup := protected.Group("/inventory")
		{
			inventoryGroup.POST("/products", inventoryHandler.CreateProduct)
			inventoryGroup.GET("/products", inventoryHandler.ListProducts)
			inventoryGroup.GET("/products/:id", inventoryHandler.GetProduct)
			inventoryGroup.PUT("/products/:id", inventoryHandler.UpdateProduct)
			inventoryGroup.DELETE("/products/:id", inventoryHandler.DeleteProduct)

			inventoryGroup.POST("/stores", inventoryHandler.CreateStore)
			inventoryGroup.GET("/stores", inventoryHandler.ListStores)
			inventoryGroup.GET("/stores/:id", inventoryHandler.GetStore)
			inventoryGroup.PUT("/stores/:id", inventoryHandler.UpdateStore)
			inventoryGroup.DELETE("/stores/:id", inventoryHandler.DeleteStore)

			inventoryGroup.GET("/reorder-suggestions", inventoryHandler.ReorderSuggestions)
			inventoryGroup.POST("/restock", inventoryHandler.ApplyRestock)
			inventoryGroup.GET("/restock/:reference/movements", inventoryHandler.Movements)
			inventoryGroup.GET("/alerts/low-stock", inventoryHandler.LowStockAlerts)
			inventoryGroup.GET("/categories", inventoryHandler.CategorySummary)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", salesHandler.RecordSale)
			transactions.GET("", salesHandler.ListTransactions)
			transactions.GET("/summary", salesHandler.DailySummary)
		}
	}

	r.GET("/health", healthCheckHandler())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := ":" + cfg.Server.Port
	logrus.Infof("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}
