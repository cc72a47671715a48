package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Wirelextechs/datagod/controller"
	"github.com/Wirelextechs/datagod/middleware"
)

func Register(
	app *fiber.App,
	pc *controller.PaymentController,
	cc *controller.CatalogController,
	ac *controller.AdminController,
	jwtSecret string,
) {
	api := app.Group("/api")

	// =========================
	// PAYMENT ROUTES
	// =========================
	api.Post("/initialize-payment", pc.Initialize)
	api.Post("/verify-payment", pc.Verify)
	api.Post("/webhook/paystack", pc.Webhook)

	// =========================
	// STOREFRONT ROUTES
	// =========================
	api.Get("/packages", cc.ListPackages)
	api.Get("/orders/:short_id", cc.GetOrder)
	api.Get("/settings", cc.GetSettings)

	// =========================
	// ADMIN ROUTES
	// =========================
	admin := api.Group("/admin")
	admin.Post("/login", ac.Login)
	admin.Get("/orders", middleware.AdminRequired(jwtSecret), ac.ListOrders)
	admin.Patch("/orders/:short_id/status", middleware.AdminRequired(jwtSecret), ac.UpdateStatus)
}
