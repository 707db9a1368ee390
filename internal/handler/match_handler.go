package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-offer-match/internal/service"
)

type MatchHandler struct {
	review service.ReviewService
	log    *zap.Logger
}

func NewMatchHandler(review service.ReviewService, log *zap.Logger) *MatchHandler {
	return &MatchHandler{review: review, log: log}
}

// Approve links the match's offer to its product
// POST /api/v1/matches/:id/approve
func (h *MatchHandler) Approve(c *fiber.Ctx) error {
	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	result, err := h.review.Approve(c.UserContext(), matchID, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}

// Reject discards one candidate
// POST /api/v1/matches/:id/reject
func (h *MatchHandler) Reject(c *fiber.Ctx) error {
	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	result, err := h.review.Reject(c.UserContext(), matchID, actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}
