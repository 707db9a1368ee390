// Package app wires configuration into the store and the services shared by
// the API server and the catalog CLI.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"go-offer-match/internal/config"
	"go-offer-match/internal/events"
	"go-offer-match/internal/handler"
	"go-offer-match/internal/matching"
	"go-offer-match/internal/metrics"
	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
	"go-offer-match/internal/repository/memory"
	"go-offer-match/internal/service"
	"go-offer-match/pkg/database"
	"go-offer-match/pkg/jwt"
)

// OpenStore connects the configured store. The returned close func releases
// the database pool and is never nil.
func OpenStore(cfg *config.Config, log *zap.Logger) (repository.Store, func() error, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store, data is lost on exit")
		return memory.New(), func() error { return nil }, nil

	case "postgres":
		db, err := database.ConnectDB(cfg.DSN(), !cfg.IsProduction(), log)
		if err != nil {
			return nil, nil, err
		}
		// Auto Migrate (use a separate migration tool once the schema settles)
		if err := db.AutoMigrate(&model.Product{}, &model.Offer{}, &model.Match{}, &model.User{}, &model.Privilege{}); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewStore(db), sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Options carries the optional collaborators of the services.
type Options struct {
	Publisher events.Publisher
	Cache     service.SummaryCache
	Metrics   *metrics.Metrics
}

// NewServices builds every use case over one store.
func NewServices(cfg *config.Config, store repository.Store, opts Options, log *zap.Logger) handler.Services {
	scorer := matching.NewScorer(cfg.Match.Scorer())
	tokens := jwt.NewManager(cfg.Secret(), cfg.JWTTTL)

	return handler.Services{
		Auth:    service.NewAuthService(store, tokens, log.Named("auth")),
		Catalog: service.NewCatalogService(store, opts.Publisher, opts.Cache, log.Named("catalog")),
		Ingestion: service.NewIngestionService(store, scorer, service.IngestionConfig{
			AutoApproveThreshold: cfg.Match.AutoApproveThreshold,
			Workers:              cfg.IngestWorkers,
		}, opts.Publisher, opts.Cache, opts.Metrics, log.Named("ingest")),
		Review:    service.NewReviewService(store, opts.Publisher, opts.Cache, opts.Metrics, log.Named("review")),
		Dashboard: service.NewDashboardService(store, opts.Cache, log.Named("dashboard")),
	}
}
