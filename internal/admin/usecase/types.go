package usecase

import (
	"go.mongodb.org/mongo-driver/bson"
)

// CreateCollectionRequest is decoded from relaxed Extended JSON so initial
// documents keep their field order and typed literals.
type CreateCollectionRequest struct {
	CollectionName string   `bson:"collectionName" json:"collectionName"`
	InitialData    []bson.D `bson:"initialData,omitempty" json:"initialData,omitempty"`
}

// CreateCollectionResponse reports the created collection.
type CreateCollectionResponse struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Inserted int    `json:"inserted"`
}

// ImportRequest carries documents for a batch import.
type ImportRequest struct {
	Data []bson.D `bson:"data" json:"data"`
}

// AggregateRequest carries a user pipeline.
type AggregateRequest struct {
	Pipeline []bson.D `bson:"pipeline" json:"pipeline"`
}

// DefaultAuditLimit and MaxAuditLimit bound audit reads.
const (
	DefaultAuditLimit int64 = 50
	MaxAuditLimit     int64 = 500
)
