package di

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"credential-service/cmd/api/infrastructure"
	"credential-service/internal/adapter/cache"
	ginhandler "credential-service/internal/adapter/gin/handler"
	"credential-service/internal/adapter/gin/middleware"
	"credential-service/internal/adapter/repository/cached"
	mongostore "credential-service/internal/adapter/store/mongo"
	"credential-service/internal/config"
	"credential-service/internal/usecase/provision"
	redisclient "credential-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	MongoClient *mongo.Client
	RedisClient *redisclient.Client
	ProvisionUC *provision.Usecase
	RateLimiter *middleware.RateLimiter
	Handler     *ginhandler.ProvisionHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize the student record store
	mongoClient, err := infrastructure.NewMongoClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	coll := mongoClient.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	studentRepo := mongostore.NewStudentRepo(coll, l)

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := studentRepo.EnsureIndexes(indexCtx); err != nil {
		_ = infrastructure.CloseMongoClient(mongoClient)
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseMongoClient(mongoClient)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize cache layer
	credentialCache := cache.NewRedisCredentialCache(
		rdb.Client,
		time.Duration(cfg.Redis.CacheTTL)*time.Second,
		l,
	)
	repo := cached.NewCachedStudentRepository(studentRepo, credentialCache, l)

	// Initialize mailer
	mailer, err := infrastructure.NewMailer(cfg, l)
	if err != nil {
		_ = infrastructure.CloseMongoClient(mongoClient)
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Optional duplicate-provisioning guard
	var deduper provision.Deduper
	if cfg.Provision.DedupeEnabled {
		deduper = cache.NewRedisProvisionGuard(
			rdb.Client,
			time.Duration(cfg.Provision.DedupeTTLSeconds)*time.Second,
			l,
		)
	}

	// Initialize use case
	provisionUC := provision.New(mailer, repo, deduper, l)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(
		rdb.Client,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			WindowSeconds:     cfg.RateLimit.WindowSeconds,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	// Initialize Gin handler
	handler := ginhandler.NewProvisionHandler(provisionUC, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		MongoClient: mongoClient,
		RedisClient: rdb,
		ProvisionUC: provisionUC,
		RateLimiter: rateLimiter,
		Handler:     handler,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close MongoDB connection
	if c.MongoClient != nil {
		if err := infrastructure.CloseMongoClient(c.MongoClient); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
