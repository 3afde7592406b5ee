package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/admin/domain/service"
	"mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/eventbus"
	"mongo-admin/internal/shared/logger"
	"mongo-admin/internal/shared/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUsecase is the tenant-scoped operation surface. The tenant always comes
// from the request context, never from arguments.
type AdminUsecase interface {
	ListCollections(ctx context.Context, withSchema bool) (*model.CollectionListing, error)
	CreateCollection(ctx context.Context, req CreateCollectionRequest) (*CreateCollectionResponse, error)
	DeleteCollection(ctx context.Context, collection string) error

	GetPage(ctx context.Context, collection string, params model.QueryParams) (*model.PageResult, error)
	GetDocument(ctx context.Context, collection, id string) (bson.M, error)
	InsertDocument(ctx context.Context, collection string, doc bson.D) (*model.MutationResult, error)
	UpdateDocument(ctx context.Context, collection, id string, patch bson.D) (*model.MutationResult, error)
	BulkUpdate(ctx context.Context, collection string, filter, patch bson.D) (*model.MutationResult, error)
	DeleteDocument(ctx context.Context, collection, id string) (*model.MutationResult, error)
	BulkDelete(ctx context.Context, collection string, filter bson.D) (*model.MutationResult, error)
	ImportDocuments(ctx context.Context, collection string, docs []bson.D) (*model.MutationResult, error)

	GetSchema(ctx context.Context, collection string) (*model.Schema, error)
	Aggregate(ctx context.Context, collection string, pipeline []bson.D) ([]bson.M, error)
	Export(ctx context.Context, collection string, params model.QueryParams, fn func(bson.D) error) error
	RecentAudit(ctx context.Context, limit int64) ([]model.AuditEntry, error)

	// Resolve maps a logical collection of the context tenant to its physical name.
	Resolve(ctx context.Context, collection string) (namespace.PhysicalName, error)
}

// Dependencies groups the collaborators of the admin usecase.
type Dependencies struct {
	Catalog  *service.CollectionCatalog
	Queries  *service.QueryService
	Gateway  *service.MutationGateway
	Schemas  *service.SchemaInferenceService
	Audit    repository.AuditStore
	EventBus eventbus.EventBusInterface
	Logger   logger.Logger
}

type adminUsecaseImpl struct {
	catalog *service.CollectionCatalog
	queries *service.QueryService
	gateway *service.MutationGateway
	schemas *service.SchemaInferenceService
	audit   repository.AuditStore
	bus     eventbus.EventBusInterface
	log     logger.Logger
}

// NewAdminUsecase creates the admin usecase.
func NewAdminUsecase(deps Dependencies) AdminUsecase {
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &adminUsecaseImpl{
		catalog: deps.Catalog,
		queries: deps.Queries,
		gateway: deps.Gateway,
		schemas: deps.Schemas,
		audit:   deps.Audit,
		bus:     deps.EventBus,
		log:     log.WithComponent("admin_usecase"),
	}
}

func tenantFrom(ctx context.Context) (string, error) {
	tenantID, err := utils.GetTenantIDFromContext(ctx)
	if err != nil {
		return "", errors.NewMissingTenantError()
	}
	return tenantID, nil
}

func (uc *adminUsecaseImpl) Resolve(ctx context.Context, collection string) (namespace.PhysicalName, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return namespace.PhysicalName{}, err
	}
	return namespace.Resolve(tenantID, collection)
}

func (uc *adminUsecaseImpl) ListCollections(ctx context.Context, withSchema bool) (*model.CollectionListing, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}
	return uc.catalog.Listing(ctx, tenantID, withSchema)
}

func (uc *adminUsecaseImpl) CreateCollection(ctx context.Context, req CreateCollectionRequest) (*CreateCollectionResponse, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}
	pn, err := uc.catalog.CreateCollection(ctx, tenantID, req.CollectionName, req.InitialData)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, pn, model.MutationCreate, "", int64(len(req.InitialData)))
	return &CreateCollectionResponse{Name: pn.Logical(), FullName: pn.String(), Inserted: len(req.InitialData)}, nil
}

func (uc *adminUsecaseImpl) DeleteCollection(ctx context.Context, collection string) error {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return err
	}
	if err := uc.catalog.DeleteCollection(ctx, pn.TenantID(), pn.Logical()); err != nil {
		return err
	}
	uc.publish(ctx, pn, model.MutationDrop, "", 0)
	return nil
}

func (uc *adminUsecaseImpl) GetPage(ctx context.Context, collection string, params model.QueryParams) (*model.PageResult, error) {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return nil, err
	}
	return uc.queries.GetPage(ctx, pn, params)
}

func (uc *adminUsecaseImpl) GetDocument(ctx context.Context, collection, id string) (bson.M, error) {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return nil, err
	}
	return uc.queries.FindByID(ctx, pn, id)
}

func (uc *adminUsecaseImpl) InsertDocument(ctx context.Context, collection string, doc bson.D) (*model.MutationResult, error) {
	return uc.mutate(ctx, collection, model.MutationRequest{Kind: model.MutationInsert, Document: doc})
}

func (uc *adminUsecaseImpl) UpdateDocument(ctx context.Context, collection, id string, patch bson.D) (*model.MutationResult, error) {
	return uc.mutate(ctx, collection, model.MutationRequest{Kind: model.MutationSingleUpdate, ID: id, Patch: patch})
}

func (uc *adminUsecaseImpl) BulkUpdate(ctx context.Context, collection string, filter, patch bson.D) (*model.MutationResult, error) {
	return uc.mutate(ctx, collection, model.MutationRequest{Kind: model.MutationBulkUpdate, Filter: filter, Patch: patch})
}

func (uc *adminUsecaseImpl) DeleteDocument(ctx context.Context, collection, id string) (*model.MutationResult, error) {
	return uc.mutate(ctx, collection, model.MutationRequest{Kind: model.MutationSingleDelete, ID: id})
}

func (uc *adminUsecaseImpl) BulkDelete(ctx context.Context, collection string, filter bson.D) (*model.MutationResult, error) {
	return uc.mutate(ctx, collection, model.MutationRequest{Kind: model.MutationBulkDelete, Filter: filter})
}

func (uc *adminUsecaseImpl) ImportDocuments(ctx context.Context, collection string, docs []bson.D) (*model.MutationResult, error) {
	return uc.mutate(ctx, collection, model.MutationRequest{Kind: model.MutationImport, Documents: docs})
}

// mutate resolves the collection, applies req and publishes a change event
// when anything was touched.
func (uc *adminUsecaseImpl) mutate(ctx context.Context, collection string, req model.MutationRequest) (*model.MutationResult, error) {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return nil, err
	}
	res, err := uc.gateway.Apply(ctx, pn, req)
	if err != nil {
		return nil, err
	}
	if res.Affected() > 0 {
		docID := req.ID
		if res.InsertedID != nil {
			docID = identifierString(res.InsertedID)
		}
		uc.publish(ctx, pn, req.Kind, docID, res.Affected())
	}
	return res, nil
}

func (uc *adminUsecaseImpl) GetSchema(ctx context.Context, collection string) (*model.Schema, error) {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return nil, err
	}
	return uc.schemas.Describe(ctx, pn)
}

func (uc *adminUsecaseImpl) Aggregate(ctx context.Context, collection string, pipeline []bson.D) ([]bson.M, error) {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return nil, err
	}
	return uc.queries.Aggregate(ctx, pn, pipeline)
}

func (uc *adminUsecaseImpl) Export(ctx context.Context, collection string, params model.QueryParams, fn func(bson.D) error) error {
	pn, err := uc.Resolve(ctx, collection)
	if err != nil {
		return err
	}
	return uc.queries.Export(ctx, pn, params, fn)
}

func (uc *adminUsecaseImpl) RecentAudit(ctx context.Context, limit int64) ([]model.AuditEntry, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := namespace.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}
	if uc.audit == nil {
		return []model.AuditEntry{}, nil
	}
	entries, err := uc.audit.Recent(ctx, tenantID, limit)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("audit_recent", err).WithComponent("audit")
	}
	return entries, nil
}

// publish emits a change event. Delivery failures are logged and never
// surface to the caller. Subscribers may hold the event past the request, so
// its strings must not alias transport buffers.
func (uc *adminUsecaseImpl) publish(ctx context.Context, pn namespace.PhysicalName, kind model.MutationKind, docID string, affected int64) {
	if uc.bus == nil {
		return
	}
	actor := utils.GetSubjectFromContext(ctx)
	requestID, _ := utils.GetRequestIDFromContext(ctx)
	event := model.ChangeEvent{
		ID:         uuid.NewString(),
		TenantID:   strings.Clone(pn.TenantID()),
		Collection: strings.Clone(pn.Logical()),
		Kind:       kind,
		DocumentID: strings.Clone(docID),
		Affected:   affected,
		Actor:      actor,
		RequestID:  requestID,
		OccurredAt: time.Now().UTC(),
	}
	err := uc.bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeCollectionChanged, event, "admin_usecase"))
	if err != nil {
		uc.log.WithContext(ctx).Warnf("Change event delivery failed for %s: %v", pn, err)
	}
}

func identifierString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
