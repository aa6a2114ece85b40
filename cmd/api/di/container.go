package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"microblog-account-service/cmd/api/infrastructure"
	"microblog-account-service/internal/adapter/cache"
	ginhandler "microblog-account-service/internal/adapter/gin/handler"
	"microblog-account-service/internal/adapter/gin/middleware"
	"microblog-account-service/internal/adapter/repository/cached"
	"microblog-account-service/internal/adapter/repository/mongodb"
	"microblog-account-service/internal/adapter/repository/postgres"
	"microblog-account-service/internal/config"
	"microblog-account-service/internal/usecase/auth"
	redisclient "microblog-account-service/pkg/redis"
	"microblog-account-service/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB      // set for postgres and sqlite stores
	Mongo       *mongo.Client // set for the mongo store
	RedisClient *redisclient.Client
	Registry    *prometheus.Registry
	AuthUC      auth.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.AuthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   l,
		Registry: prometheus.NewRegistry(),
	}
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := c.newStore(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.RedisRequired() {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
	}

	var repo auth.Repository = store
	if cfg.Cache.Enabled {
		userCache := cache.NewRedisUserCache(
			c.RedisClient.Client,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(store, userCache, l)
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	c.AuthUC = auth.New(repo, hasher, l)

	if cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	c.GinHandler = ginhandler.NewAuthHandler(c.AuthUC, l)

	l.Info("container initialized",
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int("bcrypt_cost", hasher.Cost()),
	)

	return c, nil
}

// newStore connects the credential store selected by STORE_DRIVER and
// prepares its schema.
func (c *Container) newStore(ctx context.Context) (auth.Repository, error) {
	switch c.Config.Store.Driver {
	case config.DriverMongo:
		client, err := infrastructure.NewMongoClient(ctx, c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		c.Mongo = client

		coll := client.Database(c.Config.Mongo.Database).Collection(c.Config.Mongo.Collection)
		repo := mongodb.NewUserRepoMongo(coll, c.Logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		return repo, nil

	default:
		db, err := infrastructure.NewDatabase(c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		repo := postgres.NewUserRepoPG(db, c.Logger)
		if err := repo.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repo, nil
	}
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

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := infrastructure.CloseMongo(ctx, c.Mongo); err != nil {
			errs = append(errs, err)
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
