package model

import "go.mongodb.org/mongo-driver/bson"

// QueryParams are the raw, unvalidated paging and selection inputs of a page request.
type QueryParams struct {
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
	Search    string
	Sort      string
	Filter    string
	// Tabular selects the table view default page size.
	Tabular bool
}

// PlannedQuery is a bounded find: skip/limit are always positive-derived.
type PlannedQuery struct {
	Page   int64
	Limit  int64
	Skip   int64
	Sort   bson.D
	Filter bson.D
}

// PageResult is one page of documents and the total matching the same filter.
type PageResult struct {
	Documents []bson.M `json:"data"`
	Total     int64    `json:"total"`
	Page      int64    `json:"page"`
	Limit     int64    `json:"limit"`
	Pages     int64    `json:"pages"`
}

// TotalPages computes ceil(total/limit).
func TotalPages(total, limit int64) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
