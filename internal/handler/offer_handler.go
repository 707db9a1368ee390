package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-offer-match/internal/model"
	"go-offer-match/internal/service"
)

type OfferHandler struct {
	ingestion service.IngestionService
	review    service.ReviewService
	log       *zap.Logger
}

func NewOfferHandler(ingestion service.IngestionService, review service.ReviewService, log *zap.Logger) *OfferHandler {
	return &OfferHandler{ingestion: ingestion, review: review, log: log}
}

// IngestRequest is a batch of parsed supplier records
type IngestRequest struct {
	Offers []model.OfferRecord `json:"offers"`
}

// Ingest reconciles a batch of supplier records against the catalog
// POST /api/v1/offers/ingest
func (h *OfferHandler) Ingest(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if len(req.Offers) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "At least one offer is required"})
	}

	result, err := h.ingestion.Ingest(c.UserContext(), req.Offers, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}

// CreateProduct creates a catalog product from an unmatched offer and links them
// POST /api/v1/offers/:id/create-product
func (h *OfferHandler) CreateProduct(c *fiber.Ctx) error {
	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	var draft model.ProductDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.review.CreateProductFromOffer(c.UserContext(), offerID, draft, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(result)
}
