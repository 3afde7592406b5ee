package model

import "go.mongodb.org/mongo-driver/bson"

// MutationKind discriminates the write paths. Bulk kinds are only produced by
// requests that explicitly ask for them.
type MutationKind string

const (
	MutationInsert       MutationKind = "insert"
	MutationImport       MutationKind = "import"
	MutationSingleUpdate MutationKind = "update_one"
	MutationBulkUpdate   MutationKind = "update_many"
	MutationSingleDelete MutationKind = "delete_one"
	MutationBulkDelete   MutationKind = "delete_many"
	MutationCreate       MutationKind = "create_collection"
	MutationDrop         MutationKind = "drop_collection"
)

// MutationRequest carries one write. Exactly the fields relevant to Kind are set.
type MutationRequest struct {
	Kind      MutationKind
	ID        string
	Filter    bson.D
	Patch     bson.D
	Document  bson.D
	Documents []bson.D
}

// MutationResult reports what a write touched.
type MutationResult struct {
	Kind          MutationKind  `json:"kind"`
	InsertedID    interface{}   `json:"insertedId,omitempty"`
	InsertedIDs   []interface{} `json:"insertedIds,omitempty"`
	InsertedCount int64         `json:"insertedCount,omitempty"`
	MatchedCount  int64         `json:"matchedCount"`
	ModifiedCount int64         `json:"modifiedCount"`
	DeletedCount  int64         `json:"deletedCount"`
}

// Affected returns the count most relevant to Kind.
func (r *MutationResult) Affected() int64 {
	switch r.Kind {
	case MutationInsert:
		return 1
	case MutationImport:
		return r.InsertedCount
	case MutationSingleUpdate:
		return r.MatchedCount
	case MutationBulkUpdate:
		return r.ModifiedCount
	case MutationSingleDelete, MutationBulkDelete:
		return r.DeletedCount
	default:
		return 0
	}
}
