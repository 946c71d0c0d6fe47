package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-cloud/internal/billing"
	"go-inventory-cloud/internal/cache"
	"go-inventory-cloud/internal/config"
	"go-inventory-cloud/internal/draft"
	"go-inventory-cloud/internal/geocode"
	"go-inventory-cloud/internal/handler"
	"go-inventory-cloud/internal/middleware"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/service"
	"go-inventory-cloud/internal/ws"
	"go-inventory-cloud/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.User{}, &model.Organization{}, &model.Member{}, &model.InventoryItem{})

	// 3. Seed default organization and admin user
	seedDefaultOrgAndAdmin(db, cfg)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. List cache: Redis when configured, in-process otherwise
	var listCache cache.ListCache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		listCache = redisCache
		log.Println("Redis list cache enabled")
	} else {
		listCache = cache.NewMemoryCache()
		log.Println("In-memory list cache enabled (REDIS_ADDR not set)")
	}

	// 6. Geocoding client
	geoOpts := []geocode.Option{}
	if cfg.GeocodeBaseURL != "" {
		geoOpts = append(geoOpts, geocode.WithBaseURL(cfg.GeocodeBaseURL))
	}
	geoClient := geocode.NewClient(geoOpts...)

	// 7. Dependency Injection (Wiring Layers)
	itemRepo := repository.NewItemRepo(db)
	orgRepo := repository.NewOrgRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(itemRepo, listCache, wsHub)
	membershipService := service.NewMembershipService(memberRepo, orgRepo, userRepo, wsHub, cfg.InviteBaseURL)
	authService := service.NewAuthService(userRepo, memberRepo, orgRepo, membershipService)
	draftController := draft.NewController(invService, geoClient)

	provider := billing.NewProvider(cfg.PaymentSecret)
	sessionService := billing.NewSessionService(orgRepo, provider)
	reconciler := billing.NewReconciler(orgRepo, wsHub)

	authHandler := handler.NewAuthHandler(authService)
	itemHandler := handler.NewItemHandler(invService)
	sessionHandler := handler.NewSessionHandler(draftController)
	memberHandler := handler.NewMemberHandler(membershipService)
	billingHandler := handler.NewBillingHandler(sessionService, reconciler, cfg.WebhookSecret)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory Cloud v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 9. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// Provider webhooks (signature-verified, not bearer-authenticated)
	app.Post("/webhooks/billing", billingHandler.Webhook)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Inventory
	protected.Get("/items", itemHandler.GetItems)
	protected.Post("/items", itemHandler.CreateItem)
	protected.Get("/items/:id", itemHandler.GetItem)
	protected.Put("/items/:id", itemHandler.UpdateItem)
	protected.Delete("/items/:id", itemHandler.DeleteItem)
	protected.Get("/dashboard/stats", itemHandler.GetStats)

	// Item edit sessions
	protected.Post("/items/:id/session", sessionHandler.OpenSession)
	protected.Get("/sessions/:id", sessionHandler.GetSession)
	protected.Patch("/sessions/:id", sessionHandler.UpdateSession)
	protected.Post("/sessions/:id/locate", sessionHandler.UseCurrentLocation)
	protected.Post("/sessions/:id/save", sessionHandler.SaveSession)
	protected.Delete("/sessions/:id", sessionHandler.CancelSession)

	// Membership (admin checks live in the service layer)
	protected.Get("/members", memberHandler.GetMembers)
	protected.Post("/members/invite", memberHandler.Invite)
	protected.Delete("/members/:id", memberHandler.RemoveMember)
	protected.Put("/members/:id/role", memberHandler.ChangeRole)

	// Billing
	protected.Post("/billing/session", middleware.RequireAdmin(), billingHandler.CreateSession)

	// WebSocket Route
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
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 10. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedDefaultOrgAndAdmin creates a default organization with one admin user
// if no users exist yet.
func seedDefaultOrgAndAdmin(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count > 0 {
		return
	}

	org := &model.Organization{
		Name:          "Default Organization",
		Tier:          model.TierFree,
		BillingStatus: model.BillingInactive,
		MemberLimit:   model.FreeMemberLimit,
	}
	org.CreatedBy = "system"
	org.UpdatedBy = "system"
	if err := db.Create(org).Error; err != nil {
		log.Printf("Warning: Failed to seed organization: %v", err)
		return
	}

	admin := &model.User{
		Email:    cfg.SeedAdminEmail,
		FullName: "Administrator",
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(cfg.SeedAdminPass); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}

	member := &model.Member{
		OrgID:       org.ID,
		UserID:      &admin.ID,
		Email:       admin.Email,
		DisplayName: admin.FullName,
		Role:        model.RoleAdmin,
	}
	member.CreatedBy = "system"
	member.UpdatedBy = "system"
	if err := db.Create(member).Error; err != nil {
		log.Printf("Warning: Failed to create admin membership: %v", err)
		return
	}

	log.Printf("Admin user created: %s (admin of 'Default Organization')", cfg.SeedAdminEmail)
}
