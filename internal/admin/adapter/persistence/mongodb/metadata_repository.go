package mongodb

import (
	"context"
	stderrors "errors"
	"time"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMetadataCollection holds one record per tenant.
const DefaultMetadataCollection = "orgCollectionsMeta"

// MetadataRepository implements repository.MetadataRepository.
type MetadataRepository struct {
	coll CollectionInterface
	log  logger.Logger
	now  func() time.Time
}

var _ repository.MetadataRepository = (*MetadataRepository)(nil)

// NewMetadataRepository stores tenant metadata in collection (default orgCollectionsMeta).
func NewMetadataRepository(db DatabaseInterface, collection string, log logger.Logger) *MetadataRepository {
	if collection == "" {
		collection = DefaultMetadataCollection
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MetadataRepository{
		coll: db.Collection(collection),
		log:  log.WithComponent("metadata_repository"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MetadataRepository) AddCollection(ctx context.Context, tenantID, logical string) (err error) {
	defer observe("metadata_add", &err)
	now := r.now()
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "collections", Value: logical}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	_, err = r.coll.UpdateOne(ctx, bson.D{{Key: "orgId", Value: tenantID}}, update, options.Update().SetUpsert(true))
	return translate("metadata_add", err)
}

func (r *MetadataRepository) RemoveCollection(ctx context.Context, tenantID, logical string) (err error) {
	defer observe("metadata_remove", &err)
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "collections", Value: logical}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
	}
	_, err = r.coll.UpdateOne(ctx, bson.D{{Key: "orgId", Value: tenantID}}, update)
	return translate("metadata_remove", err)
}

func (r *MetadataRepository) Get(ctx context.Context, tenantID string) (_ *model.TenantCollectionsMeta, err error) {
	defer observe("metadata_get", &err)
	var meta model.TenantCollectionsMeta
	err = r.coll.FindOne(ctx, bson.D{{Key: "orgId", Value: tenantID}}).Decode(&meta)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return &model.TenantCollectionsMeta{OrgID: tenantID, Collections: []string{}}, nil
	}
	if err != nil {
		return nil, translate("metadata_get", err)
	}
	if meta.Collections == nil {
		meta.Collections = []string{}
	}
	return &meta, nil
}
