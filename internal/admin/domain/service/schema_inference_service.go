package service

import (
	"context"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultSampleSize bounds how many documents feed one inference.
const DefaultSampleSize int64 = 100

// InferSchema merges the top-level fields of samples into one schema: the union
// of fields, the union of observed types per field, nullable once any sample
// holds null or undefined, and the first MaxExamples present values in order.
// It never fails; an empty sample yields an empty schema.
func InferSchema(samples []bson.D) *model.Schema {
	schema := model.NewSchema()
	for _, doc := range samples {
		for _, elem := range doc {
			field := schema.Upsert(elem.Key)
			tag := model.TypeOf(elem.Value)
			if !field.HasType(tag) {
				field.Types = append(field.Types, tag)
			}
			if tag == model.TypeNull || tag == model.TypeUndefined {
				field.Nullable = true
				continue
			}
			if len(field.Examples) < model.MaxExamples {
				field.Examples = append(field.Examples, model.ExampleValue(elem.Value))
			}
		}
	}
	return schema
}

// SchemaInferenceService samples a collection and infers its schema. Schemas
// are rebuilt on every call.
type SchemaInferenceService struct {
	docs       repository.DocumentRepository
	sampleSize int64
	log        logger.Logger
}

// NewSchemaInferenceService creates a sampler bounded by sampleSize documents.
func NewSchemaInferenceService(docs repository.DocumentRepository, sampleSize int64, log logger.Logger) *SchemaInferenceService {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SchemaInferenceService{docs: docs, sampleSize: sampleSize, log: log.WithComponent("schema_inference")}
}

// Describe fetches the bounded sample for name and infers its schema. Fetch
// failures propagate; inference itself cannot fail.
func (s *SchemaInferenceService) Describe(ctx context.Context, name namespace.PhysicalName) (*model.Schema, error) {
	samples, err := s.docs.Sample(ctx, name, s.sampleSize)
	if err != nil {
		return nil, err
	}
	schema := InferSchema(samples)
	s.log.WithContext(ctx).Debugf("Inferred %d fields for %s from %d documents", schema.Len(), name, len(samples))
	return schema, nil
}
