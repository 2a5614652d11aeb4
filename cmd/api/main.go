package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/config"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/db"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/chatroom"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/wallet"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis unavailable, chat events will not be published:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.FreelancerProfile{},
		&models.FreelancerProject{},
		&models.FreelancerApplication{},
		&models.Project{},
		&models.Bid{},
		&models.Application{},
		&models.Chat{},
		&models.Message{},
		&models.Payment{},
		&models.Invoice{},
		&models.Notification{},
		&models.WalletTransaction{},
	); err != nil {
		log.Fatal(err)
	}

	walletSvc := wallet.NewService(gdb)
	workflowSvc := workflow.NewService(gdb, walletSvc)
	workflowSvc.RDB = rdb
	roomSvc := chatroom.NewService(gdb)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	projectH := handlers.NewProjectHandler(gdb, workflowSvc)
	applicationH := handlers.NewApplicationHandler(gdb, workflowSvc)
	freelancerH := handlers.NewFreelancerHandler(gdb, walletSvc)
	paymentH := handlers.NewPaymentHandler(gdb)
	notificationH := handlers.NewNotificationHandler(gdb)
	chatH := handlers.NewChatHandler(gdb, hub, rdb, roomSvc)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", func(c *fiber.Ctx) error {
		uid := c.Locals("userId")

		var user models.User
		if err := gdb.First(&user, "id = ?", uid).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	})

	// projects
	protected.Get("/projects", projectH.List)
	protected.Get("/projects/:id", projectH.Get)
	protected.Post("/projects", middleware.RequireRoles("client"), projectH.Create)
	protected.Post("/projects/:id/submission", middleware.RequireRoles("freelancer"), projectH.SubmitWork)
	protected.Post("/projects/:id/submission/approve", middleware.RequireRoles("client"), projectH.ApproveSubmission)
	protected.Post("/projects/:id/submission/reject", middleware.RequireRoles("client"), projectH.RejectSubmission)
	protected.Get("/projects/:id/applications", applicationH.ListByProject)

	// applications
	protected.Post("/projects/:id/bids", middleware.RequireRoles("freelancer"), applicationH.PlaceBid)
	protected.Get("/applications", applicationH.List)
	protected.Post("/applications/:id/approve", middleware.RequireRoles("client"), applicationH.Approve)
	protected.Post("/applications/:id/reject", middleware.RequireRoles("client"), applicationH.Reject)

	// freelancer profiles; earnings before :userId so it is not shadowed
	protected.Get("/freelancers/earnings", middleware.RequireRoles("freelancer"), freelancerH.GetEarnings)
	protected.Get("/freelancers/:userId", freelancerH.GetProfile)
	protected.Put("/freelancers", middleware.RequireRoles("freelancer"), freelancerH.UpdateProfile)

	// payments and invoices
	protected.Post("/payments", middleware.RequireRoles("client"), paymentH.CreatePayment)
	protected.Patch("/payments/:id", middleware.RequireRoles("client"), paymentH.UpdatePayment)
	protected.Get("/payments/client", middleware.RequireRoles("client"), paymentH.ListClientPayments)
	protected.Get("/payments/freelancer", middleware.RequireRoles("freelancer"), paymentH.ListFreelancerPayments)
	protected.Post("/invoices", middleware.RequireRoles("freelancer"), paymentH.CreateInvoice)
	protected.Patch("/invoices/:id", middleware.RequireRoles("client"), paymentH.UpdateInvoice)
	protected.Get("/invoices/client", middleware.RequireRoles("client"), paymentH.ListClientInvoices)
	protected.Get("/invoices/freelancer", middleware.RequireRoles("freelancer"), paymentH.ListFreelancerInvoices)

	// notifications
	protected.Get("/notifications", notificationH.List)
	protected.Post("/notifications/read-all", notificationH.MarkAllRead)
	protected.Post("/notifications/:id/read", notificationH.MarkRead)
	protected.Delete("/notifications/:id", notificationH.Delete)

	// chat history
	protected.Get("/chats/:projectId", chatH.GetChat)

	// websocket endpoint (no JWT middleware, auth via query param)
	app.Get("/ws/chat", websocket.New(chatH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
