package service

import (
	"mongo-admin/internal/admin/domain/model"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPISchema renders an inferred schema as an OpenAPI object schema. A
// field observed with several types becomes a oneOf; null and undefined only
// set the nullable flag.
func OpenAPISchema(schema *model.Schema) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	for _, f := range schema.Fields() {
		props[f.Field] = &openapi3.SchemaRef{Value: fieldSchema(f)}
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

func fieldSchema(f *model.FieldSchema) *openapi3.Schema {
	var variants []*openapi3.Schema
	for _, t := range f.Types {
		if s := typeTagSchema(t); s != nil {
			variants = append(variants, s)
		}
	}

	var out *openapi3.Schema
	switch len(variants) {
	case 0:
		out = &openapi3.Schema{}
	case 1:
		out = variants[0]
	default:
		refs := make(openapi3.SchemaRefs, 0, len(variants))
		for _, v := range variants {
			refs = append(refs, &openapi3.SchemaRef{Value: v})
		}
		out = &openapi3.Schema{OneOf: refs}
	}
	out.Nullable = f.Nullable
	if len(f.Examples) > 0 {
		out.Example = f.Examples[0]
	}
	return out
}

// typeTagSchema maps a tag to its OpenAPI type; nil for null and undefined.
func typeTagSchema(t model.TypeTag) *openapi3.Schema {
	switch t {
	case model.TypeString:
		return &openapi3.Schema{Type: &openapi3.Types{"string"}}
	case model.TypeNumber:
		return &openapi3.Schema{Type: &openapi3.Types{"number"}}
	case model.TypeBoolean:
		return &openapi3.Schema{Type: &openapi3.Types{"boolean"}}
	case model.TypeDate:
		return &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}
	case model.TypeObjectID:
		return &openapi3.Schema{Type: &openapi3.Types{"string"}, Pattern: "^[0-9a-fA-F]{24}$"}
	case model.TypeArray:
		return &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: &openapi3.SchemaRef{Value: &openapi3.Schema{}}}
	case model.TypeObject:
		return &openapi3.Schema{Type: &openapi3.Types{"object"}}
	default:
		return nil
	}
}
