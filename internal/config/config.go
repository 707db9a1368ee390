package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"go-offer-match/internal/matching"
)

// Config holds runtime configuration for the service.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL"`

	// StoreDriver selects persistence: postgres or memory.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"offer_match"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	SummaryCacheTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"30s"`

	KafkaBrokers      []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic        string        `envconfig:"KAFKA_TOPIC" default:"offer-match.events"`
	KafkaBatchTimeout time.Duration `envconfig:"KAFKA_BATCH_TIMEOUT" default:"10ms"`

	Match MatchConfig

	IngestWorkers int `envconfig:"INGEST_WORKERS" default:"4"`
}

// MatchConfig carries the tunable scoring parameters, read from MATCH_*.
type MatchConfig struct {
	AutoApproveThreshold float64 `envconfig:"AUTO_APPROVE_THRESHOLD" default:"0.88"`
	TopN                 int     `envconfig:"TOP_N" default:"3"`
	MinScore             float64 `envconfig:"MIN_SCORE" default:"0"`
	PrimaryWeight        float64 `envconfig:"PRIMARY_WEIGHT" default:"1.0"`
	AlternateWeight      float64 `envconfig:"ALTERNATE_WEIGHT" default:"0.95"`
	SimilarityWeight     float64 `envconfig:"SIMILARITY_WEIGHT" default:"0.8"`
	BrandWeight          float64 `envconfig:"BRAND_WEIGHT" default:"0.1"`
	PackSizeWeight       float64 `envconfig:"PACK_SIZE_WEIGHT" default:"0.05"`
	ScoreCap             float64 `envconfig:"SCORE_CAP" default:"1.2"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load(files...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// devAdminPassword is the ADMIN_PASSWORD default, refused in production.
const devAdminPassword = "admin123"

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.IsProduction() && (c.AdminPassword == "" || c.AdminPassword == devAdminPassword) {
		return errors.New("ADMIN_PASSWORD must be set in production")
	}
	if c.Match.TopN <= 0 {
		return errors.New("MATCH_TOP_N must be positive")
	}
	if c.Match.ScoreCap <= 0 {
		return errors.New("MATCH_SCORE_CAP must be positive")
	}
	if c.IngestWorkers <= 0 {
		c.IngestWorkers = 1
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// DSN returns DATABASE_URL or builds one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// Secret returns the JWT signing secret, with a development fallback.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("offer-match-dev-secret-change-me")
	}
	return []byte(c.JWTSecret)
}

// Scorer converts the match settings into a scorer configuration.
func (m MatchConfig) Scorer() matching.ScorerConfig {
	return matching.ScorerConfig{
		Weights: matching.Weights{
			Primary:    m.PrimaryWeight,
			Alternate:  m.AlternateWeight,
			Similarity: m.SimilarityWeight,
			Brand:      m.BrandWeight,
			PackSize:   m.PackSizeWeight,
			Cap:        m.ScoreCap,
		},
		TopN:     m.TopN,
		MinScore: m.MinScore,
	}
}
