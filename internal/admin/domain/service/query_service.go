package service

import (
	"context"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// QueryService executes planned reads against one physical collection.
type QueryService struct {
	docs    repository.DocumentRepository
	planner *QueryPlanner
	log     logger.Logger
}

// NewQueryService creates a read service.
func NewQueryService(docs repository.DocumentRepository, planner *QueryPlanner, log logger.Logger) *QueryService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &QueryService{docs: docs, planner: planner, log: log.WithComponent("query_service")}
}

// Planner exposes the planner used for every page.
func (s *QueryService) Planner() *QueryPlanner { return s.planner }

// GetPage plans params and runs the page find and the total count with the
// same filter concurrently.
func (s *QueryService) GetPage(ctx context.Context, name namespace.PhysicalName, params model.QueryParams) (*model.PageResult, error) {
	q := s.planner.BuildQuery(params)

	var (
		docs  []bson.M
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.docs.Find(gctx, name, q.Filter, repository.FindOptions{Sort: q.Sort, Skip: q.Skip, Limit: q.Limit})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.docs.Count(gctx, name, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}

	return &model.PageResult{
		Documents: docs,
		Total:     total,
		Page:      q.Page,
		Limit:     q.Limit,
		Pages:     model.TotalPages(total, q.Limit),
	}, nil
}

// FindByID returns one document or a not-found error.
func (s *QueryService) FindByID(ctx context.Context, name namespace.PhysicalName, id string) (bson.M, error) {
	return s.docs.FindOne(ctx, name, IDFilter(id))
}

// Aggregate runs a guarded pipeline capped at the planner's max limit.
func (s *QueryService) Aggregate(ctx context.Context, name namespace.PhysicalName, pipeline []bson.D) ([]bson.M, error) {
	guarded, err := GuardPipeline(pipeline, s.planner.MaxLimit())
	if err != nil {
		return nil, err
	}
	out, err := s.docs.Aggregate(ctx, name, guarded)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []bson.M{}
	}
	return out, nil
}

// Export streams every document matching the planned filter and sort to fn.
// Paging parameters are ignored.
func (s *QueryService) Export(ctx context.Context, name namespace.PhysicalName, params model.QueryParams, fn func(bson.D) error) error {
	q := s.planner.BuildQuery(params)
	return s.docs.Each(ctx, name, q.Filter, q.Sort, fn)
}
