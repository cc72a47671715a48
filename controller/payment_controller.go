package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Wirelextechs/datagod/metrics"
	"github.com/Wirelextechs/datagod/reconcile"
)

type PaymentController struct {
	Engine  *reconcile.Engine
	Metrics *metrics.Payments
}

func NewPaymentController(engine *reconcile.Engine, m *metrics.Payments) *PaymentController {
	return &PaymentController{Engine: engine, Metrics: m}
}

func (pc *PaymentController) Initialize(c *fiber.Ctx) error {
	var body struct {
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		PackageID int64  `json:"package_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := pc.Engine.Initialize(ctx, reconcile.InitializeInput{
		Email:     body.Email,
		Phone:     body.Phone,
		PackageID: body.PackageID,
	})
	if err != nil {
		return pc.fail(c, err)
	}

	if pc.Metrics != nil {
		pc.Metrics.Initialized.Inc()
	}
	return c.JSON(fiber.Map{
		"success":            true,
		"authorization_url":  out.AuthorizationURL,
		"short_id":           out.ShortID,
		"paystack_reference": out.Reference,
		"amount":             out.AmountMinor,
	})
}

func (pc *PaymentController) Verify(c *fiber.Ctx) error {
	var body struct {
		Reference string `json:"reference"` // the order short id
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pc.Engine.VerifyByClient(ctx, body.Reference); err != nil {
		return pc.fail(c, err)
	}

	if pc.Metrics != nil {
		pc.Metrics.Confirmed.Inc()
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "payment verified",
		"reference": body.Reference,
	})
}

func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	// The signature covers the raw bytes as delivered; hand them to the
	// engine untouched.
	raw := c.Body()
	signature := c.Get("x-paystack-signature")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := pc.Engine.HandleWebhook(ctx, raw, signature)
	if err != nil {
		return pc.fail(c, err)
	}

	if res.Ignored {
		return c.JSON(fiber.Map{"status": "ignored"})
	}
	if pc.Metrics != nil {
		pc.Metrics.Confirmed.Inc()
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// fail maps the engine's error taxonomy onto one HTTP response per class,
// counting the security-relevant ones.
func (pc *PaymentController) fail(c *fiber.Ctx, err error) error {
	var (
		validation *reconcile.ValidationError
		notFound   *reconcile.NotFoundError
		authErr    *reconcile.AuthenticationError
		mismatch   *reconcile.AmountMismatchError
		upstream   *reconcile.UpstreamError
		configErr  *reconcile.ConfigError
	)

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": validation.Msg})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": notFound.Error()})
	case errors.As(err, &authErr):
		if pc.Metrics != nil {
			pc.Metrics.WebhooksRejected.Inc()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": authErr.Reason})
	case errors.As(err, &mismatch):
		if pc.Metrics != nil {
			pc.Metrics.Mismatches.Inc()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "payment amount does not match order total"})
	case errors.As(err, &upstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	case errors.As(err, &configErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "server misconfigured"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal error"})
	}
}
