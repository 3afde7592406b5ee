package mongodb

import (
	"context"

	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository implements repository.CatalogRepository with
// listCollections, create, drop and collStats.
type CatalogRepository struct {
	db  DatabaseInterface
	log logger.Logger
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a catalog repository.
func NewCatalogRepository(db DatabaseInterface, log logger.Logger) *CatalogRepository {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CatalogRepository{db: db, log: log.WithComponent("catalog_repository")}
}

// ListNames lists collections whose name starts with the tenant prefix. Views
// and system collections are excluded.
func (r *CatalogRepository) ListNames(ctx context.Context, tenantID string) (_ []string, err error) {
	defer observe("list_collections", &err)
	filter := bson.D{
		{Key: "name", Value: primitive.Regex{Pattern: namespace.PrefixPattern(tenantID)}},
		{Key: "type", Value: "collection"},
	}
	names, err := r.db.ListCollectionNames(ctx, filter, options.ListCollections().SetNameOnly(true))
	if err != nil {
		return nil, translate("list_collections", err)
	}
	return names, nil
}

func (r *CatalogRepository) Exists(ctx context.Context, name namespace.PhysicalName) (_ bool, err error) {
	defer observe("list_collections", &err)
	names, err := r.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name.String()}}, options.ListCollections().SetNameOnly(true))
	if err != nil {
		return false, translate("list_collections", err)
	}
	return len(names) > 0, nil
}

func (r *CatalogRepository) Create(ctx context.Context, name namespace.PhysicalName) (err error) {
	defer observe("create_collection", &err)
	return translate("create_collection", r.db.CreateCollection(ctx, name.String()))
}

// Drop relies on the driver ignoring "ns not found", which makes it idempotent.
func (r *CatalogRepository) Drop(ctx context.Context, name namespace.PhysicalName) (err error) {
	defer observe("drop_collection", &err)
	return translate("drop_collection", r.db.Collection(name.String()).Drop(ctx))
}

// StorageSize reads the collStats size in bytes.
func (r *CatalogRepository) StorageSize(ctx context.Context, name namespace.PhysicalName) (_ int64, err error) {
	defer observe("coll_stats", &err)
	var stats bson.M
	cmd := bson.D{{Key: "collStats", Value: name.String()}}
	if err := r.db.RunCommand(ctx, cmd).Decode(&stats); err != nil {
		return 0, translate("coll_stats", err)
	}
	size, ok := toInt64(stats["size"])
	if !ok {
		return 0, errors.NewInternalError("collStats returned no size").WithDetail("collection", name.String())
	}
	return size, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
