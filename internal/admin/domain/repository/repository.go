package repository

import (
	"context"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"

	"go.mongodb.org/mongo-driver/bson"
)

// FindOptions bounds a find. Limit <= 0 means no limit.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// DocumentRepository is the document-level port over one physical collection.
// Every method takes a PhysicalName so no caller can address a collection by
// raw string.
type DocumentRepository interface {
	Find(ctx context.Context, name namespace.PhysicalName, filter bson.D, opts FindOptions) ([]bson.M, error)
	Count(ctx context.Context, name namespace.PhysicalName, filter bson.D) (int64, error)
	// Sample returns the first limit documents in natural order, keeping field order.
	Sample(ctx context.Context, name namespace.PhysicalName, limit int64) ([]bson.D, error)
	FindOne(ctx context.Context, name namespace.PhysicalName, filter bson.D) (bson.M, error)
	InsertOne(ctx context.Context, name namespace.PhysicalName, doc bson.D) (interface{}, error)
	InsertMany(ctx context.Context, name namespace.PhysicalName, docs []bson.D) ([]interface{}, error)
	// UpdateOne returns the matched count.
	UpdateOne(ctx context.Context, name namespace.PhysicalName, filter, update bson.D) (int64, error)
	// UpdateMany returns the modified count.
	UpdateMany(ctx context.Context, name namespace.PhysicalName, filter, update bson.D) (int64, error)
	DeleteOne(ctx context.Context, name namespace.PhysicalName, filter bson.D) (int64, error)
	DeleteMany(ctx context.Context, name namespace.PhysicalName, filter bson.D) (int64, error)
	Aggregate(ctx context.Context, name namespace.PhysicalName, pipeline bson.A) ([]bson.M, error)
	// Each streams matching documents to fn until fn returns an error.
	Each(ctx context.Context, name namespace.PhysicalName, filter bson.D, sort bson.D, fn func(bson.D) error) error
}

// CatalogRepository enumerates and manages physical collections.
type CatalogRepository interface {
	// ListNames returns raw collection names starting with the tenant prefix.
	ListNames(ctx context.Context, tenantID string) ([]string, error)
	Exists(ctx context.Context, name namespace.PhysicalName) (bool, error)
	// Create fails with a conflict error when the collection already exists.
	Create(ctx context.Context, name namespace.PhysicalName) error
	// Drop succeeds when the collection is already absent.
	Drop(ctx context.Context, name namespace.PhysicalName) error
	StorageSize(ctx context.Context, name namespace.PhysicalName) (int64, error)
}

// MetadataRepository maintains the per-tenant list of created collections.
type MetadataRepository interface {
	AddCollection(ctx context.Context, tenantID, logical string) error
	RemoveCollection(ctx context.Context, tenantID, logical string) error
	// Get returns an empty record when the tenant has none.
	Get(ctx context.Context, tenantID string) (*model.TenantCollectionsMeta, error)
}

// AuditStore persists change events per tenant.
type AuditStore interface {
	Append(ctx context.Context, event model.ChangeEvent) error
	Recent(ctx context.Context, tenantID string, limit int64) ([]model.AuditEntry, error)
}
