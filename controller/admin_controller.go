package controller

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wirelextechs/datagod/model"
)

// AdminLedger is the slice of the record store the admin dashboard uses.
type AdminLedger interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	FindOrderByShortID(ctx context.Context, shortID string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, shortID string, from, to model.OrderStatus) (bool, error)
}

type AdminController struct {
	Ledger    AdminLedger
	tokenHash []byte
	jwtSecret string
}

// NewAdminController hashes the admin token once so the plaintext is not
// held for the life of the process.
func NewAdminController(ledger AdminLedger, adminToken, jwtSecret string) *AdminController {
	ac := &AdminController{Ledger: ledger, jwtSecret: jwtSecret}
	if adminToken != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("failed to hash admin token: %v", err)
		} else {
			ac.tokenHash = hash
		}
	}
	return ac
}

// Login exchanges the shared admin token for a short-lived admin JWT.
func (ac *AdminController) Login(c *fiber.Ctx) error {
	if ac.tokenHash == nil || ac.jwtSecret == "" {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "admin access not configured"})
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "token is required"})
	}

	if err := bcrypt.CompareHashAndPassword(ac.tokenHash, []byte(body.Token)); err != nil {
		log.Printf("SECURITY: failed admin login attempt")
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "invalid admin token"})
	}

	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ac.jwtSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "failed to issue token"})
	}

	return c.JSON(fiber.Map{"success": true, "token": signed})
}

// ListOrders returns every order, newest first, for the management table.
func (ac *AdminController) ListOrders(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	orders, err := ac.Ledger.ListOrders(ctx)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(orders)
}

// UpdateStatus moves an order through the fulfilment lifecycle. The
// reconciliation engine owns PENDING -> PAID; everything after that is
// admin-driven and validated against the transition table.
func (ac *AdminController) UpdateStatus(c *fiber.Ctx) error {
	shortID := c.Params("short_id")

	var body struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || !model.ValidStatus(body.Status) {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "a valid status is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, err := ac.Ledger.FindOrderByShortID(ctx, shortID)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	}
	if order == nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "order not found"})
	}

	if !model.CanTransition(order.Status, body.Status) {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "illegal status transition " + string(order.Status) + " -> " + string(body.Status),
		})
	}

	updated, err := ac.Ledger.UpdateOrderStatus(ctx, shortID, order.Status, body.Status)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	}
	if !updated {
		// The order moved between our read and the conditional update.
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "order changed, reload and retry"})
	}

	log.Printf("order %s moved to %s by admin", shortID, body.Status)
	return c.JSON(fiber.Map{"success": true})
}
