package di

import (
	"context"
	"fmt"
	"sync"

	"mongo-admin/internal/admin"
	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container owns the process-wide store handles and the modules built on them.
// Handles are created once here and passed down explicitly.
type Container struct {
	mu sync.RWMutex

	Config *config.Config
	Logger logger.Logger

	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	AdminModule *admin.AdminModule
}

// NewContainer creates an empty container for cfg.
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{Config: cfg, Logger: log}
}

// ConnectMongo dials and pings the document store.
func (c *Container) ConnectMongo(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mc := c.Config.Mongo
	clientOpts := options.Client().
		ApplyURI(mc.URI).
		SetMaxPoolSize(mc.MaxPoolSize).
		SetMinPoolSize(mc.MinPoolSize).
		SetTimeout(mc.Timeout)

	connectCtx, cancel := context.WithTimeout(ctx, mc.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c.MongoClient = client
	c.MongoDB = client.Database(mc.Database)
	c.Logger.Infof("Connected to MongoDB database %s", mc.Database)
	return nil
}

// ConnectRedis creates the audit log client when Redis is enabled. A failed
// ping disables the audit log instead of failing startup.
func (c *Container) ConnectRedis(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Config.Redis.Enabled {
		c.Logger.Info("Redis disabled, audit log will not be recorded")
		return
	}
	client := config.NewRedisClient(&c.Config.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warnf("Redis unavailable at %s, audit log disabled: %v", c.Config.Redis.GetAddr(), err)
		_ = client.Close()
		return
	}
	c.RedisClient = client
	c.Logger.Infof("Connected to Redis at %s", c.Config.Redis.GetAddr())
}

// InitializeAdmin builds the admin module over the connected handles.
func (c *Container) InitializeAdmin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be connected before the admin module")
	}
	module, err := admin.NewAdminModule(c.Config, c.Logger, c.MongoDB, c.RedisClient)
	if err != nil {
		return fmt.Errorf("failed to create admin module: %w", err)
	}
	c.AdminModule = module
	return nil
}

// GetAdminModule returns the admin module instance.
func (c *Container) GetAdminModule() *admin.AdminModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AdminModule
}

// HealthCheck pings every connected store.
func (c *Container) HealthCheck(ctx context.Context) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := map[string]string{}
	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			status["mongodb"] = "down"
		} else {
			status["mongodb"] = "up"
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		} else {
			status["redis"] = "up"
		}
	}
	return status
}

// Healthy reports whether every entry of a HealthCheck result is up.
func Healthy(status map[string]string) bool {
	for _, s := range status {
		if s != "up" {
			return false
		}
	}
	return true
}

// Cleanup stops modules and closes store handles in reverse order.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.AdminModule != nil {
		if err := c.AdminModule.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin module: %w", err))
		}
		c.AdminModule = nil
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
		c.RedisClient = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb: %w", err))
		}
		c.MongoClient = nil
		c.MongoDB = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
