package model

import "time"

// CollectionSummary describes one tenant collection in a catalog listing.
// Count and Size are fetched separately and may disagree under concurrent writes.
type CollectionSummary struct {
	Name     string  `json:"name"`
	FullName string  `json:"fullName"`
	Type     string  `json:"type"`
	Count    int64   `json:"count"`
	Size     int64   `json:"size"`
	Schema   *Schema `json:"schema,omitempty"`
}

// TenantCollectionsMeta is the per-tenant display hint listing collections the
// tenant created through this service. Live enumeration stays authoritative.
type TenantCollectionsMeta struct {
	OrgID       string    `json:"orgId" bson:"orgId"`
	Collections []string  `json:"collections" bson:"collections"`
	CreatedAt   time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// CollectionListing is the catalog response: live collections plus the hint.
type CollectionListing struct {
	Collections []CollectionSummary    `json:"collections"`
	Metadata    *TenantCollectionsMeta `json:"metadata"`
}
