package service

import (
	"strings"

	"mongo-admin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the store's identifier field.
const IDField = "_id"

// NormalizeID converts a canonical 24-hex identifier to an ObjectID and keeps
// anything else as an opaque string, so imported documents with string ids stay
// addressable.
func NormalizeID(id string) interface{} {
	if len(id) == 24 {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			return oid
		}
	}
	return id
}

// IDFilter matches exactly one identifier.
func IDFilter(id string) bson.D {
	return bson.D{{Key: IDField, Value: NormalizeID(id)}}
}

// SanitizePatch drops every _id entry so an update can never change a
// document's identity. Operator keys are rejected because the patch is applied
// under $set.
func SanitizePatch(patch bson.D) (bson.D, error) {
	clean := make(bson.D, 0, len(patch))
	for _, e := range patch {
		if e.Key == IDField {
			continue
		}
		if strings.HasPrefix(e.Key, "$") {
			return nil, errors.NewValidationError("update operators are not allowed in a patch").
				WithDetail("field", e.Key)
		}
		clean = append(clean, e)
	}
	if len(clean) == 0 {
		return nil, errors.NewValidationError("patch has no updatable fields")
	}
	return clean, nil
}

// SetUpdate wraps a sanitized patch in a $set update document.
func SetUpdate(patch bson.D) bson.D {
	return bson.D{{Key: "$set", Value: patch}}
}
