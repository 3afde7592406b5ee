package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInferSchema(t *testing.T) {
	t.Run("should return empty schema for no samples", func(t *testing.T) {
		schema := InferSchema(nil)
		require.NotNil(t, schema)
		assert.Equal(t, 0, schema.Len())
	})

	t.Run("should union fields across documents", func(t *testing.T) {
		schema := InferSchema([]bson.D{
			{{Key: "a", Value: 1}},
			{{Key: "b", Value: "x"}},
		})

		assert.Equal(t, []string{"a", "b"}, schema.Names())
		assert.False(t, schema.Field("a").Nullable)
		assert.False(t, schema.Field("b").Nullable)
		assert.Equal(t, []model.TypeTag{model.TypeNumber}, schema.Field("a").Types)
		assert.Equal(t, []model.TypeTag{model.TypeString}, schema.Field("b").Types)
	})

	t.Run("should mark field nullable when any sample is null", func(t *testing.T) {
		schema := InferSchema([]bson.D{
			{{Key: "a", Value: 1}},
			{{Key: "a", Value: nil}},
		})

		a := schema.Field("a")
		require.NotNil(t, a)
		assert.True(t, a.Nullable)
		assert.Equal(t, []model.TypeTag{model.TypeNumber, model.TypeNull}, a.Types)
		assert.Equal(t, []interface{}{1}, a.Examples)
	})

	t.Run("should treat undefined as nullable", func(t *testing.T) {
		schema := InferSchema([]bson.D{{{Key: "u", Value: primitive.Undefined{}}}})

		u := schema.Field("u")
		assert.True(t, u.Nullable)
		assert.Equal(t, []model.TypeTag{model.TypeUndefined}, u.Types)
		assert.Empty(t, u.Examples)
	})

	t.Run("should keep only the first three examples in order", func(t *testing.T) {
		samples := make([]bson.D, 0, 10)
		for i := 0; i < 10; i++ {
			samples = append(samples, bson.D{{Key: "x", Value: fmt.Sprintf("v%d", i)}})
		}

		x := InferSchema(samples).Field("x")
		assert.Equal(t, []interface{}{"v0", "v1", "v2"}, x.Examples)
		assert.Equal(t, []model.TypeTag{model.TypeString}, x.Types)
	})

	t.Run("should keep embedded documents as plain objects", func(t *testing.T) {
		schema := InferSchema([]bson.D{
			{{Key: "meta", Value: bson.D{{Key: "owner", Value: "ann"}}}},
			{{Key: "tags", Value: bson.A{bson.D{{Key: "k", Value: "v"}}, "x"}}},
		})

		assert.Equal(t, []interface{}{bson.M{"owner": "ann"}}, schema.Field("meta").Examples)

		raw, err := json.Marshal(schema)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"meta": {"types": ["object"], "nullable": false, "examples": [{"owner": "ann"}]},
			"tags": {"types": ["array"], "nullable": false, "examples": [[{"k": "v"}, "x"]]}
		}`, string(raw))
	})

	t.Run("should record each type once in first-seen order", func(t *testing.T) {
		oid := primitive.NewObjectID()
		schema := InferSchema([]bson.D{
			{{Key: "v", Value: true}},
			{{Key: "v", Value: oid}},
			{{Key: "v", Value: false}},
			{{Key: "v", Value: bson.A{1, 2}}},
			{{Key: "v", Value: bson.D{{Key: "n", Value: 1}}}},
		})

		assert.Equal(t, []model.TypeTag{
			model.TypeBoolean, model.TypeObjectID, model.TypeArray, model.TypeObject,
		}, schema.Field("v").Types)
	})

	t.Run("should preserve field order of first appearance", func(t *testing.T) {
		schema := InferSchema([]bson.D{
			{{Key: "z", Value: 1}, {Key: "a", Value: 2}},
			{{Key: "m", Value: 3}, {Key: "z", Value: 4}},
		})
		assert.Equal(t, []string{"z", "a", "m"}, schema.Names())
	})
}

func TestSchemaInferenceService_Describe(t *testing.T) {
	ctx := context.Background()
	pn, err := namespace.Resolve("org1", "tasks")
	require.NoError(t, err)

	t.Run("should sample at most the configured size", func(t *testing.T) {
		store := testutil.NewMemStore()
		store.Seed(pn.String(),
			bson.D{{Key: "first", Value: 1}},
			bson.D{{Key: "second", Value: 2}},
			bson.D{{Key: "third", Value: 3}},
		)
		svc := NewSchemaInferenceService(store, 2, nil)

		schema, err := svc.Describe(ctx, pn)
		require.NoError(t, err)
		assert.NotNil(t, schema.Field("first"))
		assert.NotNil(t, schema.Field("second"))
		assert.Nil(t, schema.Field("third"))
	})

	t.Run("should propagate sampling failures", func(t *testing.T) {
		store := testutil.NewMemStore()
		store.Fail["sample"] = errors.New("connection reset")
		svc := NewSchemaInferenceService(store, 0, nil)

		_, err := svc.Describe(ctx, pn)
		assert.EqualError(t, err, "connection reset")
	})
}
