package service

import (
	"context"
	"strings"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// MutationGateway performs writes against one physical collection. Single and
// bulk paths are separate methods; a missing id never widens into a bulk write.
type MutationGateway struct {
	docs repository.DocumentRepository
	log  logger.Logger
}

// NewMutationGateway creates a gateway over docs.
func NewMutationGateway(docs repository.DocumentRepository, log logger.Logger) *MutationGateway {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MutationGateway{docs: docs, log: log.WithComponent("mutation_gateway")}
}

// Apply dispatches a MutationRequest to the matching write path.
func (g *MutationGateway) Apply(ctx context.Context, name namespace.PhysicalName, req model.MutationRequest) (*model.MutationResult, error) {
	switch req.Kind {
	case model.MutationInsert:
		return g.Insert(ctx, name, req.Document)
	case model.MutationImport:
		return g.InsertMany(ctx, name, req.Documents)
	case model.MutationSingleUpdate:
		return g.UpdateOne(ctx, name, req.ID, req.Patch)
	case model.MutationBulkUpdate:
		return g.UpdateMany(ctx, name, req.Filter, req.Patch)
	case model.MutationSingleDelete:
		return g.DeleteOne(ctx, name, req.ID)
	case model.MutationBulkDelete:
		return g.DeleteMany(ctx, name, req.Filter)
	default:
		return nil, errors.NewValidationError("unsupported mutation kind").WithDetail("kind", string(req.Kind))
	}
}

// Insert stores one document and returns the generated or supplied id.
func (g *MutationGateway) Insert(ctx context.Context, name namespace.PhysicalName, doc bson.D) (*model.MutationResult, error) {
	if doc == nil {
		return nil, errors.NewValidationError("document is required")
	}
	id, err := g.docs.InsertOne(ctx, name, doc)
	if err != nil {
		return nil, err
	}
	return &model.MutationResult{Kind: model.MutationInsert, InsertedID: id, InsertedCount: 1}, nil
}

// InsertMany imports documents in one batch.
func (g *MutationGateway) InsertMany(ctx context.Context, name namespace.PhysicalName, docs []bson.D) (*model.MutationResult, error) {
	if len(docs) == 0 {
		return nil, errors.NewValidationError("no documents to import")
	}
	ids, err := g.docs.InsertMany(ctx, name, docs)
	if err != nil {
		return nil, err
	}
	g.log.WithContext(ctx).Infof("Imported %d documents into %s", len(ids), name)
	return &model.MutationResult{Kind: model.MutationImport, InsertedIDs: ids, InsertedCount: int64(len(ids))}, nil
}

// UpdateOne applies patch to the document with id. Zero matched is reported in
// the result, not as an error.
func (g *MutationGateway) UpdateOne(ctx context.Context, name namespace.PhysicalName, id string, patch bson.D) (*model.MutationResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewValidationError("document id is required")
	}
	clean, err := SanitizePatch(patch)
	if err != nil {
		return nil, err
	}
	matched, err := g.docs.UpdateOne(ctx, name, IDFilter(id), SetUpdate(clean))
	if err != nil {
		return nil, err
	}
	return &model.MutationResult{Kind: model.MutationSingleUpdate, MatchedCount: matched}, nil
}

// UpdateMany applies patch to every document matching filter. A nil filter is
// rejected; an explicit empty filter matches all documents.
func (g *MutationGateway) UpdateMany(ctx context.Context, name namespace.PhysicalName, filter, patch bson.D) (*model.MutationResult, error) {
	if filter == nil {
		return nil, errors.NewValidationError("bulk update requires a filter")
	}
	clean, err := SanitizePatch(patch)
	if err != nil {
		return nil, err
	}
	modified, err := g.docs.UpdateMany(ctx, name, filter, SetUpdate(clean))
	if err != nil {
		return nil, err
	}
	g.log.WithContext(ctx).Infof("Bulk update on %s modified %d documents", name, modified)
	return &model.MutationResult{Kind: model.MutationBulkUpdate, ModifiedCount: modified}, nil
}

// DeleteOne removes the document with id.
func (g *MutationGateway) DeleteOne(ctx context.Context, name namespace.PhysicalName, id string) (*model.MutationResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewValidationError("document id is required")
	}
	deleted, err := g.docs.DeleteOne(ctx, name, IDFilter(id))
	if err != nil {
		return nil, err
	}
	return &model.MutationResult{Kind: model.MutationSingleDelete, DeletedCount: deleted}, nil
}

// DeleteMany removes every document matching filter.
func (g *MutationGateway) DeleteMany(ctx context.Context, name namespace.PhysicalName, filter bson.D) (*model.MutationResult, error) {
	if filter == nil {
		return nil, errors.NewValidationError("bulk delete requires a filter")
	}
	deleted, err := g.docs.DeleteMany(ctx, name, filter)
	if err != nil {
		return nil, err
	}
	g.log.WithContext(ctx).Infof("Bulk delete on %s removed %d documents", name, deleted)
	return &model.MutationResult{Kind: model.MutationBulkDelete, DeletedCount: deleted}, nil
}
