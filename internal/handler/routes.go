package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-offer-match/internal/middleware"
	"go-offer-match/internal/model"
	"go-offer-match/internal/service"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth      service.AuthService
	Catalog   service.CatalogService
	Ingestion service.IngestionService
	Review    service.ReviewService
	Dashboard service.DashboardService
}

// Register mounts the API on router. loginGuard, when set, runs in front of
// the login route (rate limiting).
func Register(router fiber.Router, svc Services, log *zap.Logger, loginGuard ...fiber.Handler) {
	if log == nil {
		log = zap.NewNop()
	}

	authHandler := NewAuthHandler(svc.Auth)
	catalogHandler := NewCatalogHandler(svc.Catalog, log)
	offerHandler := NewOfferHandler(svc.Ingestion, svc.Review, log)
	matchHandler := NewMatchHandler(svc.Review, log)
	dashHandler := NewDashboardHandler(svc.Dashboard, log)

	guarded := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, loginGuard...), h)
	}

	// ============ PUBLIC ROUTES ============
	// Registered before the protected group so RequireAuth never sees them
	auth := router.Group("/auth")
	auth.Post("/login", guarded(authHandler.Login)...)
	auth.Post("/reset-password", guarded(authHandler.ResetPassword)...)

	// ============ PROTECTED ROUTES ============
	protected := router.Group("", middleware.RequireAuth(svc.Auth))

	// Dashboard
	protected.Get("/dashboard/summary", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetSummary)

	// Catalog
	protected.Get("/products", middleware.RequirePrivilege(model.PrivCatalogView), catalogHandler.GetProducts)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivCatalogCreate), catalogHandler.CreateProduct)

	// Offers
	protected.Post("/offers/ingest", middleware.RequirePrivilege(model.PrivOfferIngest), offerHandler.Ingest)
	protected.Get("/offers/review-queue", middleware.RequirePrivilege(model.PrivOfferView), dashHandler.GetReviewQueue)
	protected.Get("/offers/matched", middleware.RequirePrivilege(model.PrivOfferView), dashHandler.GetMatched)
	protected.Post("/offers/:id/create-product",
		middleware.RequirePrivilege(model.PrivMatchReview),
		middleware.RequirePrivilege(model.PrivCatalogCreate),
		offerHandler.CreateProduct)

	// Review
	protected.Post("/matches/:id/approve", middleware.RequirePrivilege(model.PrivMatchReview), matchHandler.Approve)
	protected.Post("/matches/:id/reject", middleware.RequirePrivilege(model.PrivMatchReview), matchHandler.Reject)
}
