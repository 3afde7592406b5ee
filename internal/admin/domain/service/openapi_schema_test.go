package service

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOpenAPISchema(t *testing.T) {
	schema := InferSchema([]bson.D{
		{{Key: "title", Value: "A"}, {Key: "done", Value: false}, {Key: "n", Value: 1}},
		{{Key: "title", Value: "B"}, {Key: "done", Value: nil}, {Key: "n", Value: "one"}},
		{{Key: "gone", Value: nil}},
	})

	ref := OpenAPISchema(schema)
	require.NotNil(t, ref.Value)
	assert.True(t, ref.Value.Type.Is(openapi3.TypeObject))
	require.Len(t, ref.Value.Properties, 4)

	title := ref.Value.Properties["title"].Value
	assert.True(t, title.Type.Is(openapi3.TypeString))
	assert.False(t, title.Nullable)
	assert.Equal(t, "A", title.Example)

	done := ref.Value.Properties["done"].Value
	assert.True(t, done.Type.Is(openapi3.TypeBoolean))
	assert.True(t, done.Nullable)

	n := ref.Value.Properties["n"].Value
	assert.Nil(t, n.Type)
	require.Len(t, n.OneOf, 2)
	assert.True(t, n.OneOf[0].Value.Type.Is(openapi3.TypeNumber))
	assert.True(t, n.OneOf[1].Value.Type.Is(openapi3.TypeString))

	gone := ref.Value.Properties["gone"].Value
	assert.True(t, gone.Nullable)
	assert.Nil(t, gone.Type)
}

func TestOpenAPISchema_NestedExampleIsPlainObject(t *testing.T) {
	ref := OpenAPISchema(InferSchema([]bson.D{
		{{Key: "meta", Value: bson.D{{Key: "owner", Value: "ann"}}}},
	}))

	meta := ref.Value.Properties["meta"].Value
	require.NotNil(t, meta)
	assert.Equal(t, bson.M{"owner": "ann"}, meta.Example)
}
