package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Wirelextechs/datagod/cache"
	"github.com/Wirelextechs/datagod/model"
)

// CatalogLedger is the slice of the record store the public storefront
// reads from.
type CatalogLedger interface {
	ListPackages(ctx context.Context) ([]model.Package, error)
	FindOrderByShortID(ctx context.Context, shortID string) (*model.Order, error)
	GetSettings(ctx context.Context) (*model.Settings, error)
}

type CatalogController struct {
	Ledger CatalogLedger
	Cache  *cache.Cache
}

func NewCatalogController(ledger CatalogLedger, c *cache.Cache) *CatalogController {
	return &CatalogController{Ledger: ledger, Cache: c}
}

// ListPackages serves the storefront catalog: enabled packages, smallest
// data volume first, cached for a few minutes.
func (cc *CatalogController) ListPackages(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if pkgs, ok := cc.Cache.GetPackages(ctx); ok {
		return c.JSON(pkgs)
	}

	pkgs, err := cc.Ledger.ListPackages(ctx)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	}
	if pkgs == nil {
		pkgs = []model.Package{}
	}
	cc.Cache.SetPackages(ctx, pkgs)

	return c.JSON(pkgs)
}

// GetOrder is the public status checker: it exposes only what the customer
// needs to track fulfilment, never the gateway reference.
func (cc *CatalogController) GetOrder(c *fiber.Ctx) error {
	shortID := c.Params("short_id")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, err := cc.Ledger.FindOrderByShortID(ctx, shortID)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	}
	if order == nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "order not found"})
	}

	return c.JSON(fiber.Map{
		"short_id":        order.ShortID,
		"package_details": order.PackageDetails,
		"status":          order.Status,
		"created_at":      order.CreatedAt,
	})
}

func (cc *CatalogController) GetSettings(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	settings, err := cc.Ledger.GetSettings(ctx)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "upstream service unavailable"})
	}
	return c.JSON(settings)
}
