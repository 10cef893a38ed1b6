package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/config"
	"github.com/example/arfood/internal/coupons"
	"github.com/example/arfood/internal/handlers"
	"github.com/example/arfood/internal/middleware"
	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/notify"
	"github.com/example/arfood/internal/orders"
	"github.com/example/arfood/internal/reports"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/services"
)

// Register wires up all HTTP routes. Order events go to the hub, the Telegram
// admin chat when configured, and any extra transports.
func Register(app *fiber.App, store repository.Store, cfg *config.Config, hub *notify.Hub, transports ...notify.Transport) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	dispatcher := notify.NewDispatcher(append([]notify.Transport{hub, telegramService}, transports...)...)

	manager := orders.NewManager(store, dispatcher)
	assembler := orders.NewAssembler(store)
	couponService := coupons.NewService(store, nil)
	reportService := reports.NewService(store, nil)

	authHandler := handlers.NewAuthHandler(store, cfg)
	foodHandler := handlers.NewFoodHandler(store)
	orderHandler := handlers.NewOrderHandler(store, manager, assembler)
	chefHandler := handlers.NewChefHandler(store, manager, assembler, reportService)
	adminHandler := handlers.NewAdminHandler(store, manager, assembler, reportService)
	couponHandler := handlers.NewCouponHandler(couponService)
	analyticsHandler := handlers.NewAnalyticsHandler(reportService)
	feedbackHandler := handlers.NewFeedbackHandler(store, manager, reportService)
	notificationHandler := handlers.NewNotificationHandler(hub)

	authRequired := middleware.AuthMiddleware(cfg)
	staffOnly := middleware.RequireRoles(models.RoleChef, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/update-profile", authRequired, authHandler.UpdateProfile)
	auth.Post("/logout", authRequired, authHandler.Logout)
	auth.Get("/me", authRequired, authHandler.Me)

	// Menu
	food := api.Group("/food")
	food.Get("/", foodHandler.ListFoods)
	food.Get("/categories", foodHandler.ListCategories)
	food.Get("/:id", foodHandler.GetFood)
	food.Post("/:id/like", authRequired, foodHandler.ToggleLike)
	food.Post("/:id/rate", authRequired, foodHandler.RateFood)

	// Customer orders
	ordersGroup := api.Group("/orders", authRequired)
	ordersGroup.Get("/", orderHandler.ListMyOrders)
	ordersGroup.Post("/", orderHandler.CreateOrder)
	ordersGroup.Get("/active", orderHandler.ActiveOrders)
	ordersGroup.Get("/history/:phone", orderHandler.OrderHistory)
	ordersGroup.Get("/:id", orderHandler.GetOrder)
	ordersGroup.Put("/:id", orderHandler.UpdateOrder)
	ordersGroup.Post("/:id/feedback", orderHandler.SubmitFeedback)
	ordersGroup.Get("/:id/receipt", orderHandler.Receipt)

	// Kitchen
	chef := api.Group("/chef", authRequired, staffOnly)
	chef.Get("/orders", chefHandler.Queue)
	chef.Get("/orders/:id", chefHandler.GetOrder)
	chef.Patch("/orders/:id/status", chefHandler.UpdateStatus)
	chef.Put("/orders/:id/deliver", chefHandler.Deliver)
	chef.Get("/stats", chefHandler.Stats)

	// Admin
	admin := api.Group("/admin", authRequired, adminOnly)
	admin.Get("/orders", adminHandler.ListOrders)
	admin.Put("/orders/:id", orderHandler.UpdateOrder)
	admin.Put("/orders/:id/feedback", adminHandler.AddShopNote)
	admin.Get("/customers", adminHandler.ListCustomers)
	admin.Get("/users/online", adminHandler.OnlineUsers)
	admin.Get("/users/login-history", adminHandler.LoginHistory)
	admin.Get("/feedback-summary", adminHandler.FeedbackSummary)
	admin.Get("/food", foodHandler.ListAllFoods)
	admin.Post("/food", foodHandler.CreateFood)
	admin.Put("/food/:id", foodHandler.UpdateFood)
	admin.Delete("/food/:id", foodHandler.DeleteFood)

	// Coupons
	couponsGroup := api.Group("/coupons", authRequired)
	couponsGroup.Get("/available", couponHandler.Available)
	couponsGroup.Get("/validate/:code", couponHandler.Validate)
	couponsGroup.Post("/apply", couponHandler.Apply)
	couponsGroup.Get("/admin/all", adminOnly, couponHandler.List)
	couponsGroup.Post("/admin/create", adminOnly, couponHandler.Create)
	couponsGroup.Put("/admin/:id", adminOnly, couponHandler.Update)
	couponsGroup.Delete("/admin/:id", adminOnly, couponHandler.Delete)
	couponsGroup.Patch("/admin/:id/toggle", adminOnly, couponHandler.Toggle)

	// Analytics
	analytics := api.Group("/analytics", authRequired, adminOnly)
	analytics.Get("/dashboard", analyticsHandler.Dashboard)
	analytics.Get("/daily-report", analyticsHandler.DailyReport)
	analytics.Get("/daily-report/export", analyticsHandler.ExportDailyReport)
	analytics.Get("/monthly-report", analyticsHandler.MonthlyReport)

	// Feedback
	feedback := api.Group("/feedback", authRequired)
	feedback.Post("/submit", feedbackHandler.Submit)
	feedback.Get("/all", adminOnly, feedbackHandler.List)
	feedback.Get("/stats", adminOnly, feedbackHandler.Stats)
	feedback.Get("/order/:orderId", feedbackHandler.ForOrder)

	itemFeedback := api.Group("/item-feedback")
	itemFeedback.Get("/items-with-ratings", feedbackHandler.RatedItems)
	itemFeedback.Get("/item/:id", foodHandler.ItemRatings)

	// Realtime
	api.Get("/notifications/stream", authRequired, notificationHandler.Stream)
}
