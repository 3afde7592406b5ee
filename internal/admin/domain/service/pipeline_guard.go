package service

import (
	"mongo-admin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
)

// forbiddenStages either write outside the collection or read from another
// collection, which would cross the tenant boundary.
var forbiddenStages = map[string]struct{}{
	"$out":         {},
	"$merge":       {},
	"$lookup":      {},
	"$graphLookup": {},
	"$unionWith":   {},
}

// GuardPipeline validates a user-supplied aggregation pipeline and appends a
// $limit so results stay bounded.
func GuardPipeline(pipeline []bson.D, maxResults int64) (bson.A, error) {
	if len(pipeline) == 0 {
		return nil, errors.NewValidationError("pipeline must contain at least one stage")
	}
	out := make(bson.A, 0, len(pipeline)+1)
	for i, stage := range pipeline {
		if err := checkStage(stage); err != nil {
			return nil, err.WithDetail("stage", i)
		}
		out = append(out, stage)
	}
	out = append(out, bson.D{{Key: "$limit", Value: maxResults}})
	return out, nil
}

func checkStage(stage bson.D) *errors.AppError {
	if len(stage) != 1 {
		return errors.NewValidationError("each pipeline stage must have exactly one operator")
	}
	op := stage[0].Key
	if _, bad := forbiddenStages[op]; bad {
		return errors.NewValidationError("pipeline stage is not allowed").WithDetail("operator", op)
	}
	if op != "$facet" {
		return nil
	}
	facets, ok := stage[0].Value.(bson.D)
	if !ok {
		return errors.NewValidationError("$facet must be a document")
	}
	for _, facet := range facets {
		sub, ok := facet.Value.(bson.A)
		if !ok {
			return errors.NewValidationError("$facet branches must be arrays")
		}
		for _, s := range sub {
			d, ok := s.(bson.D)
			if !ok {
				return errors.NewValidationError("$facet stages must be documents")
			}
			if err := checkStage(d); err != nil {
				return err
			}
		}
	}
	return nil
}
