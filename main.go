package main

import (
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Wirelextechs/datagod/cache"
	"github.com/Wirelextechs/datagod/config"
	"github.com/Wirelextechs/datagod/controller"
	kafkax "github.com/Wirelextechs/datagod/kafka"
	"github.com/Wirelextechs/datagod/ledger"
	"github.com/Wirelextechs/datagod/metrics"
	"github.com/Wirelextechs/datagod/paystack"
	"github.com/Wirelextechs/datagod/reconcile"
	"github.com/Wirelextechs/datagod/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error: ", err)
	}

	ledgerClient := ledger.New(cfg.LedgerURL, cfg.LedgerKey)
	gateway := paystack.NewClient(cfg.PaystackSecret)
	catalogCache := cache.Connect(cfg.RedisAddr)
	producer := kafkax.NewProducer(cfg.KafkaBroker)
	payMetrics := metrics.NewPayments(prometheus.DefaultRegisterer)

	engine := reconcile.NewEngine(
		ledgerClient,
		gateway,
		producer,
		cfg.FeeRate,
		cfg.ToleranceMinor,
		cfg.CallbackURL,
		cfg.PaystackSecret,
	)

	pc := controller.NewPaymentController(engine, payMetrics)
	cc := controller.NewCatalogController(ledgerClient, catalogCache)
	ac := controller.NewAdminController(ledgerClient, cfg.AdminToken, cfg.JWTSecret)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app, pc, cc, ac, cfg.JWTSecret)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	log.Println("datagod payment backend listening on port " + cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("fiber error: ", err)
	}
}
