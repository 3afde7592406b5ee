package service

import (
	"context"
	"sort"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// DefaultCatalogConcurrency bounds the per-collection fan-out of a listing.
const DefaultCatalogConcurrency = 8

// CollectionCatalog enumerates, creates and drops a tenant's collections.
type CollectionCatalog struct {
	catalog     repository.CatalogRepository
	docs        repository.DocumentRepository
	meta        repository.MetadataRepository
	schemas     *SchemaInferenceService
	concurrency int
	log         logger.Logger
}

// NewCollectionCatalog wires the catalog over its repositories.
func NewCollectionCatalog(
	catalog repository.CatalogRepository,
	docs repository.DocumentRepository,
	meta repository.MetadataRepository,
	schemas *SchemaInferenceService,
	concurrency int,
	log logger.Logger,
) *CollectionCatalog {
	if concurrency <= 0 {
		concurrency = DefaultCatalogConcurrency
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CollectionCatalog{
		catalog:     catalog,
		docs:        docs,
		meta:        meta,
		schemas:     schemas,
		concurrency: concurrency,
		log:         log.WithComponent("collection_catalog"),
	}
}

// ListTenantCollections returns every live collection owned by tenantID with an
// exact document count and a best-effort storage size. A failing stats lookup
// reports size 0; any other store failure fails the listing.
func (c *CollectionCatalog) ListTenantCollections(ctx context.Context, tenantID string, withSchema bool) ([]model.CollectionSummary, error) {
	if err := namespace.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	raw, err := c.catalog.ListNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	owned := make([]namespace.PhysicalName, 0, len(raw))
	for _, name := range raw {
		if pn, ok := namespace.OwnedBy(tenantID, name); ok {
			owned = append(owned, pn)
		}
	}

	summaries := make([]model.CollectionSummary, len(owned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, pn := range owned {
		i, pn := i, pn
		g.Go(func() error {
			s, err := c.summarize(gctx, pn, withSchema)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (c *CollectionCatalog) summarize(ctx context.Context, pn namespace.PhysicalName, withSchema bool) (model.CollectionSummary, error) {
	count, err := c.docs.Count(ctx, pn, bson.D{})
	if err != nil {
		return model.CollectionSummary{}, err
	}
	size, err := c.catalog.StorageSize(ctx, pn)
	if err != nil {
		c.log.WithContext(ctx).Warnf("Stats lookup failed for %s, reporting size 0: %v", pn, err)
		size = 0
	}
	summary := model.CollectionSummary{
		Name:     pn.Logical(),
		FullName: pn.String(),
		Type:     "collection",
		Count:    count,
		Size:     size,
	}
	if withSchema && c.schemas != nil {
		schema, err := c.schemas.Describe(ctx, pn)
		if err != nil {
			return model.CollectionSummary{}, err
		}
		summary.Schema = schema
	}
	return summary, nil
}

// Listing returns the live collections plus the tenant's metadata hint. A
// metadata read failure drops the hint but keeps the listing.
func (c *CollectionCatalog) Listing(ctx context.Context, tenantID string, withSchema bool) (*model.CollectionListing, error) {
	collections, err := c.ListTenantCollections(ctx, tenantID, withSchema)
	if err != nil {
		return nil, err
	}
	meta, err := c.meta.Get(ctx, tenantID)
	if err != nil {
		c.log.WithContext(ctx).Warnf("Metadata read failed for tenant %s: %v", tenantID, err)
		meta = nil
	}
	return &model.CollectionListing{Collections: collections, Metadata: meta}, nil
}

// CreateCollection creates tenantID's logical collection, seeds it with
// initial documents and records it in the metadata hint. The steps are not
// transactional.
func (c *CollectionCatalog) CreateCollection(ctx context.Context, tenantID, logical string, initial []bson.D) (namespace.PhysicalName, error) {
	pn, err := namespace.Resolve(tenantID, logical)
	if err != nil {
		return namespace.PhysicalName{}, err
	}
	exists, err := c.catalog.Exists(ctx, pn)
	if err != nil {
		return namespace.PhysicalName{}, err
	}
	if exists {
		return namespace.PhysicalName{}, errors.NewConflictError("collection already exists").WithDetail("collection", logical)
	}
	if err := c.catalog.Create(ctx, pn); err != nil {
		return namespace.PhysicalName{}, err
	}
	if len(initial) > 0 {
		if _, err := c.docs.InsertMany(ctx, pn, initial); err != nil {
			return namespace.PhysicalName{}, err
		}
	}
	if err := c.meta.AddCollection(ctx, tenantID, logical); err != nil {
		return namespace.PhysicalName{}, err
	}
	c.log.WithContext(ctx).Infof("Created collection %s with %d initial documents", pn, len(initial))
	return pn, nil
}

// DeleteCollection drops the collection and removes it from the metadata
// hint. Dropping an absent collection succeeds.
func (c *CollectionCatalog) DeleteCollection(ctx context.Context, tenantID, logical string) error {
	pn, err := namespace.Resolve(tenantID, logical)
	if err != nil {
		return err
	}
	if err := c.catalog.Drop(ctx, pn); err != nil {
		return err
	}
	if err := c.meta.RemoveCollection(ctx, tenantID, logical); err != nil {
		return err
	}
	c.log.WithContext(ctx).Infof("Dropped collection %s", pn)
	return nil
}

// Metadata returns the tenant's metadata hint.
func (c *CollectionCatalog) Metadata(ctx context.Context, tenantID string) (*model.TenantCollectionsMeta, error) {
	if err := namespace.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	return c.meta.Get(ctx, tenantID)
}
