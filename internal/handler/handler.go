package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-offer-match/internal/middleware"
	"go-offer-match/internal/service"
)

// actor builds the service actor from the JWT context (set by RequireAuth).
func actor(c *fiber.Ctx) service.Actor {
	a := service.Actor{}
	if v, ok := c.Locals(middleware.LocalUserID).(string); ok {
		a.ID = v
	}
	if v, ok := c.Locals(middleware.LocalUserName).(string); ok {
		a.Name = v
	}
	if v, ok := c.Locals(middleware.LocalUserEmail).(string); ok {
		a.Email = v
	}
	return a
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, service.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOfferNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrProductNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyMatched),
		errors.Is(err, service.ErrDuplicateSKU):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
