package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/config"
	"github.com/oksasatya/mediscribe/internal/application"
	"github.com/oksasatya/mediscribe/internal/domain/gateway"
	repo "github.com/oksasatya/mediscribe/internal/domain/repository"
	"github.com/oksasatya/mediscribe/internal/infrastructure/gemini"
	pginfra "github.com/oksasatya/mediscribe/internal/infrastructure/postgres"
	"github.com/oksasatya/mediscribe/internal/infrastructure/quarantine"
	"github.com/oksasatya/mediscribe/internal/infrastructure/search"
	sqliteinfra "github.com/oksasatya/mediscribe/internal/infrastructure/sqlite"
	"github.com/oksasatya/mediscribe/pkg/events"
	"github.com/oksasatya/mediscribe/pkg/helpers"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Storage bundles the repositories of one database driver.
type Storage struct {
	Users         repo.UserRepository
	Consultations repo.ConsultationRepository
	Health        Pinger
	Close         func() error
}

// Container holds every component built at startup. It is created once in
// main and handed to the router; nothing here is global.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Storage   *Storage
	Redis     *redis.Client
	ES        *elasticsearch.Client
	GCS       *storage.Client
	JWT       *helpers.JWTManager
	Gateway   gateway.TranscriptionGateway
	Publisher *events.RabbitPublisher

	Auth          *application.AuthService
	Consultations *application.ConsultationService

	closers []func() error
}

// OpenStorage opens the database selected by DB_DRIVER.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		database, err := sqliteinfra.Open(cfg.DatabasePath(), logger)
		if err != nil {
			return nil, err
		}
		store := sqliteinfra.NewStore(database)
		logger.WithField("path", cfg.DatabasePath()).Info("sqlite storage ready")
		return &Storage{
			Users:         sqliteinfra.NewUserRepository(database),
			Consultations: sqliteinfra.NewConsultationRepository(database),
			Health:        store,
			Close:         store.Close,
		}, nil
	case config.DriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		store := pginfra.NewStore(pool)
		logger.Info("postgres storage ready")
		return &Storage{
			Users:         pginfra.NewUserRepository(pool),
			Consultations: pginfra.NewConsultationRepository(pool),
			Health:        store,
			Close:         store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Build wires storage, clients and services. Optional integrations that are
// not configured, or that fail to connect, are left nil.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	st, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Storage = st
	c.closers = append(c.closers, st.Close)

	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)

	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		c.Redis = rdb
		c.closers = append(c.closers, rdb.Close)
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
	} else {
		c.ES = es
	}

	if cfg.RabbitMQURL != "" {
		pub, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQConsultationQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq disabled")
		} else {
			c.Publisher = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs quarantine disabled")
		} else {
			c.GCS = gcs
			c.closers = append(c.closers, gcs.Close)
		}
	}

	if cfg.GeminiAPIKey != "" {
		gw, err := gemini.New(ctx, cfg.GeminiAPIKey, gemini.Options{
			Model:             cfg.GeminiModel,
			PollInterval:      cfg.AIPollInterval,
			ProcessingTimeout: cfg.AIProcessingTimeout,
		}, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Gateway = gw
	} else {
		logger.Warn("GEMINI_API_KEY is not set; consultation analysis is disabled")
	}

	c.Auth = application.NewAuthService(st.Users, c.JWT, logger)
	c.Consultations = application.NewConsultationService(st.Consultations, c.Gateway, cfg.AudioTmpDir, logger)
	if c.ES != nil {
		c.Consultations.Indexer = search.NewConsultationIndex(c.ES, cfg.ESConsultationsIndex, logger)
	}
	if c.Publisher != nil {
		c.Consultations.Publisher = c.Publisher
	}
	if c.GCS != nil {
		c.Consultations.Quarantine = quarantine.NewGCSStore(c.GCS, cfg.GCSBucket)
	}
	return c, nil
}

// Close releases everything Build opened, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && c.Logger != nil {
			c.Logger.WithError(err).Warn("close failed")
		}
	}
	c.closers = nil
}
