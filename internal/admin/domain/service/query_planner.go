package service

import (
	"math"
	"strconv"
	"strings"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// PlannerOptions holds paging defaults.
type PlannerOptions struct {
	DefaultLimit      int64
	TableDefaultLimit int64
	MaxLimit          int64
}

// DefaultPlannerOptions mirrors the list view (20) and table view (25) page sizes.
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{DefaultLimit: 20, TableDefaultLimit: 25, MaxLimit: 1000}
}

// QueryPlanner turns raw page request parameters into a bounded find.
type QueryPlanner struct {
	opts PlannerOptions
	log  logger.Logger
}

// NewQueryPlanner creates a planner. Non-positive options fall back to defaults.
func NewQueryPlanner(opts PlannerOptions, log logger.Logger) *QueryPlanner {
	def := DefaultPlannerOptions()
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = def.DefaultLimit
	}
	if opts.TableDefaultLimit <= 0 {
		opts.TableDefaultLimit = def.TableDefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = def.MaxLimit
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &QueryPlanner{opts: opts, log: log.WithComponent("query_planner")}
}

// MaxLimit is the largest page the planner will produce.
func (p *QueryPlanner) MaxLimit() int64 { return p.opts.MaxLimit }

// BuildQuery resolves paging, sort and filter.
//
// Sort: sortBy wins (asc -> 1, anything else -> -1), then a raw structured
// sort, then {_id: -1}. Filter: search wins ($text), then a raw structured
// filter, then match-all. Raw sort/filter that fail to parse are treated as
// absent, never as an error.
func (p *QueryPlanner) BuildQuery(params model.QueryParams) model.PlannedQuery {
	defLimit := p.opts.DefaultLimit
	if params.Tabular {
		defLimit = p.opts.TableDefaultLimit
	}
	page := positiveInt(params.Page, 1)
	limit := positiveInt(params.Limit, defLimit)
	if limit > p.opts.MaxLimit {
		limit = p.opts.MaxLimit
	}
	if page > math.MaxInt64/limit {
		page = math.MaxInt64 / limit
	}

	return model.PlannedQuery{
		Page:   page,
		Limit:  limit,
		Skip:   (page - 1) * limit,
		Sort:   p.resolveSort(params),
		Filter: p.resolveFilter(params),
	}
}

func (p *QueryPlanner) resolveSort(params model.QueryParams) bson.D {
	if field := strings.TrimSpace(params.SortBy); field != "" {
		dir := -1
		if params.SortOrder == "asc" {
			dir = 1
		}
		return bson.D{{Key: field, Value: dir}}
	}
	if params.Sort != "" {
		if sort, ok := ParseStructured(params.Sort); ok && len(sort) > 0 {
			return sort
		}
		p.log.Debugf("Ignoring unparseable sort parameter")
	}
	return DefaultSort()
}

func (p *QueryPlanner) resolveFilter(params model.QueryParams) bson.D {
	if term := strings.TrimSpace(params.Search); term != "" {
		return TextSearchFilter(term)
	}
	if params.Filter != "" {
		if filter, ok := ParseStructured(params.Filter); ok {
			return filter
		}
		p.log.Debugf("Ignoring unparseable filter parameter")
	}
	return bson.D{}
}

// DefaultSort orders newest-first by the synthetic identifier.
func DefaultSort() bson.D {
	return bson.D{{Key: "_id", Value: -1}}
}

// TextSearchFilter builds a full-text predicate over the collection's text index.
func TextSearchFilter(term string) bson.D {
	return bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: term}}}}
}

// ParseStructured decodes a relaxed Extended JSON object into an ordered
// document, so {"$oid": ...} and {"$date": ...} literals survive.
func ParseStructured(raw string) (bson.D, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '{' {
		return nil, false
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(raw), false, &doc); err != nil {
		return nil, false
	}
	if doc == nil {
		doc = bson.D{}
	}
	return doc, true
}

func positiveInt(raw string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}
