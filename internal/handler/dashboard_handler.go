package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-offer-match/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *zap.Logger
}

func NewDashboardHandler(s service.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, log: log}
}

// GetSummary returns offer and catalog counts
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}

// GetReviewQueue returns offers awaiting a human decision
// GET /api/v1/offers/review-queue
func (h *DashboardHandler) GetReviewQueue(c *fiber.Ctx) error {
	items, err := h.service.ReviewQueue(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(items)
}

// GetMatched returns matched offers with their product
// GET /api/v1/offers/matched
func (h *DashboardHandler) GetMatched(c *fiber.Ctx) error {
	items, err := h.service.Matched(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(items)
}
