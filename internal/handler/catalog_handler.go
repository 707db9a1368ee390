package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-offer-match/internal/model"
	"go-offer-match/internal/service"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(s service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: s, log: log}
}

// GetProducts lists the catalog
// GET /api/v1/products
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

// CreateProduct adds a product to the catalog
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var draft model.ProductDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), draft, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}
