package admin

import (
	"context"
	"fmt"

	httpadapter "mongo-admin/internal/admin/adapter/http"
	"mongo-admin/internal/admin/adapter/persistence"
	mongodbpersistence "mongo-admin/internal/admin/adapter/persistence/mongodb"
	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/admin/domain/service"
	"mongo-admin/internal/admin/usecase"
	"mongo-admin/internal/shared/eventbus"
	"mongo-admin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminModule wires the catalog, query, mutation and audit components over one
// database handle.
type AdminModule struct {
	Config       *config.Config
	Logger       logger.Logger
	EventBus     *eventbus.EventBus
	AdminUsecase usecase.AdminUsecase
	AuditStore   repository.AuditStore
	HTTPHandler  *httpadapter.HTTPHandler

	auditSub eventbus.Subscription
}

// NewAdminModule builds the module. redisClient may be nil, in which case the
// audit log is disabled.
func NewAdminModule(cfg *config.Config, log logger.Logger, db *mongo.Database, redisClient *redis.Client) (*AdminModule, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	if db == nil {
		return nil, fmt.Errorf("mongo database handle is required")
	}
	log.Info("Initializing admin module...")

	dbAdapter := mongodbpersistence.NewMongoDatabaseAdapter(db)
	docs := mongodbpersistence.NewDocumentRepository(dbAdapter, log)
	catalogRepo := mongodbpersistence.NewCatalogRepository(dbAdapter, log)
	metaRepo := mongodbpersistence.NewMetadataRepository(dbAdapter, cfg.Mongo.MetadataCollection, log)

	var audit repository.AuditStore = persistence.NoopAuditStore{}
	if redisClient != nil {
		audit = persistence.NewRedisAuditStore(redisClient, cfg.Redis.StreamMaxLength, log)
		log.Info("Redis audit store enabled.")
	}

	return newModule(cfg, log, docs, catalogRepo, metaRepo, audit), nil
}

// newModule assembles the services over already-built ports.
func newModule(
	cfg *config.Config,
	log logger.Logger,
	docs repository.DocumentRepository,
	catalogRepo repository.CatalogRepository,
	metaRepo repository.MetadataRepository,
	audit repository.AuditStore,
) *AdminModule {
	if log == nil {
		log = logger.NewNopLogger()
	}
	bus := eventbus.NewEventBus(log)

	planner := service.NewQueryPlanner(service.PlannerOptions{
		DefaultLimit:      cfg.Query.DefaultLimit,
		TableDefaultLimit: cfg.Query.TableDefaultLimit,
		MaxLimit:          cfg.Query.MaxLimit,
	}, log)
	schemas := service.NewSchemaInferenceService(docs, cfg.Query.SchemaSampleSize, log)
	catalog := service.NewCollectionCatalog(catalogRepo, docs, metaRepo, schemas, cfg.Query.CatalogConcurrency, log)

	adminUC := usecase.NewAdminUsecase(usecase.Dependencies{
		Catalog:  catalog,
		Queries:  service.NewQueryService(docs, planner, log),
		Gateway:  service.NewMutationGateway(docs, log),
		Schemas:  schemas,
		Audit:    audit,
		EventBus: bus,
		Logger:   log,
	})
	sub := usecase.NewAuditSubscriber(audit, log).Register(bus)

	return &AdminModule{
		Config:       cfg,
		Logger:       log,
		EventBus:     bus,
		AdminUsecase: adminUC,
		AuditStore:   audit,
		HTTPHandler:  httpadapter.NewAdminHTTPHandler(adminUC, cfg.Auth, bus, log),
		auditSub:     sub,
	}
}

// RegisterRoutes mounts the REST API and the change feed.
func (m *AdminModule) RegisterRoutes(router fiber.Router) {
	m.HTTPHandler.RegisterRoutes(router)
	m.Logger.Info("Admin HTTP routes registered.")
}

// Stop detaches the audit subscriber. The store handles are owned by the caller.
func (m *AdminModule) Stop(_ context.Context) error {
	m.Logger.Info("Stopping admin module...")
	m.EventBus.Unsubscribe(m.auditSub)
	return nil
}
