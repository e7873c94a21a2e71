package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-inventory-core/internal/config"
	"go-inventory-core/internal/handler"
	"go-inventory-core/internal/middleware"
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/internal/scheduler"
	"go-inventory-core/internal/service"
	"go-inventory-core/internal/ws"
	"go-inventory-core/pkg/database"
	"go-inventory-core/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.ConnectDB(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db,
		&model.Category{},
		&model.Item{},
		&model.SKU{},
		&model.User{},
		&model.TransactionType{},
		&model.Transaction{},
	); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	seedDefaults(db, log)

	wsHub := ws.NewHub(logger.Named(log, "ws"))
	go wsHub.Run()

	// Wiring
	categoryRepo := repository.NewCategoryRepo(db)
	itemRepo := repository.NewItemRepo(db)
	skuRepo := repository.NewSkuRepo(db)
	trRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(categoryRepo, itemRepo, db, logger.Named(log, "inventory"))
	skuService := service.NewSkuService(skuRepo, itemRepo, cfg, db, wsHub, logger.Named(log, "sku"))
	trService := service.NewTransactionService(trRepo, skuRepo, cfg, db, wsHub, logger.Named(log, "transaction"))
	userService := service.NewUserService(userRepo, cfg, logger.Named(log, "user"))
	authService := service.NewAuthService(userRepo, userService, logger.Named(log, "auth"))

	invHandler := handler.NewInventoryHandler(invService)
	skuHandler := handler.NewSkuHandler(skuService)
	trHandler := handler.NewTransactionHandler(trService)
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)

	sched := scheduler.NewScheduler(cfg, skuService, wsHub, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName: "Inventory Core v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Everything below requires a valid session token
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Get("/categories", invHandler.GetCategories)
	protected.Get("/categories/:id", invHandler.GetCategory)
	protected.Post("/categories", invHandler.CreateCategory)
	protected.Put("/categories/:id", invHandler.UpdateCategory)
	protected.Delete("/categories/:id", invHandler.DeleteCategory)
	protected.Post("/categories/save", invHandler.SaveCategories)

	protected.Get("/items", invHandler.GetItems)
	protected.Get("/items/:id", invHandler.GetItem)
	protected.Post("/items", invHandler.CreateItem)
	protected.Put("/items/:id", invHandler.UpdateItem)
	protected.Delete("/items/:id", invHandler.DeleteItem)
	protected.Post("/items/save", invHandler.SaveItems)

	protected.Get("/skus", skuHandler.GetSkus)
	protected.Get("/skus/low-stock", skuHandler.GetLowStock)
	protected.Get("/skus/:id", skuHandler.GetSku)
	protected.Get("/skus/:id/check-qty", skuHandler.CheckQty)
	protected.Post("/skus", skuHandler.CreateSku)
	protected.Put("/skus/:id", skuHandler.UpdateSku)
	protected.Delete("/skus/:id", skuHandler.DeleteSku)
	protected.Post("/skus/save", skuHandler.SaveSkus)

	protected.Get("/transactions", trHandler.GetTransactions)
	protected.Get("/transactions/:id", trHandler.GetTransaction)
	protected.Post("/transactions", trHandler.CreateTransaction)
	protected.Post("/transactions/import-emr", trHandler.ImportEmrTransactions)
	protected.Put("/transactions/:id", trHandler.UpdateTransaction)
	protected.Delete("/transactions/:id", trHandler.DeleteTransaction)
	protected.Post("/transactions/save", trHandler.SaveTransactions)

	// User management is restricted to the admin group
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequireAdmin(), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequireAdmin(), userHandler.UpdateUser)
	protected.Put("/users/:id/password", middleware.RequireAdmin(), userHandler.ChangePassword)
	protected.Delete("/users/:id", middleware.RequireAdmin(), userHandler.DeleteUser)

	// WebSocket route for live stock notifications
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// keep-alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// seedDefaults ensures the transaction type reference rows and the admin
// account exist. Safe to run on every start.
func seedDefaults(db *gorm.DB, log *zap.Logger) {
	for id := 1; id <= len(model.TrTypeNames); id++ {
		trType := model.TransactionType{TrTypeID: id, TrType: model.TrTypeNames[id]}
		if err := db.FirstOrCreate(&trType, model.TransactionType{TrTypeID: id}).Error; err != nil {
			log.Warn("failed to seed transaction type", zap.String("tr_type", trType.TrType), zap.Error(err))
		}
	}

	var count int64
	if err := db.Model(&model.User{}).Where("user_name = ?", "admin").Count(&count).Error; err != nil || count > 0 {
		return
	}

	admin := model.User{UserName: "admin"}
	password := os.Getenv("ADMIN_INITIAL_PASSWORD")
	if password == "" {
		password = "admin"
	}
	if err := admin.SetPassword(password); err != nil {
		log.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Warn("failed to seed admin user", zap.Error(err))
		return
	}
	log.Info("seeded default admin user")
}
