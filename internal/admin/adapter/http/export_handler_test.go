package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"mongo-admin/internal/admin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExport_CSV(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	env.store.Seed("org1_items",
		bson.D{{Key: "_id", Value: a}, {Key: "name", Value: "alpha"}, {Key: "qty", Value: int32(3)}},
		bson.D{{Key: "_id", Value: b}, {Key: "name", Value: "beta"}, {Key: "tags", Value: bson.A{"x", "y"}}},
	)

	resp, raw := env.do(t, "GET", "/api/v1/collections/items/export?format=csv&sortBy=name&sortOrder=asc", "")
	require.Equal(t, 200, resp.StatusCode, string(raw))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="items.csv"`)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"_id", "name", "qty", "tags"}, records[0])
	assert.Equal(t, []string{a.Hex(), "alpha", "3", ""}, records[1])
	assert.Equal(t, []string{b.Hex(), "beta", "", `["x","y"]`}, records[2])
}

func TestExport_JSON(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	env.store.Seed("org1_items",
		bson.D{{Key: "name", Value: "alpha"}, {Key: "status", Value: "open"}},
		bson.D{{Key: "name", Value: "beta"}, {Key: "status", Value: "done"}},
		bson.D{{Key: "name", Value: "gamma"}, {Key: "status", Value: "open"}},
	)

	resp, raw := env.do(t, "GET", `/api/v1/collections/items/export?filter=%7B%22status%22%3A%22open%22%7D`, "")
	require.Equal(t, 200, resp.StatusCode, string(raw))

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &docs), string(raw))
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, "open", d["status"])
		oid := d["_id"].(map[string]interface{})
		assert.Len(t, oid["$oid"], 24)
	}
}

func TestExport_EmptyCollectionIsEmptyArray(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	resp, raw := env.do(t, "GET", "/api/v1/collections/items/export?format=json", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "[]", string(raw))
}

func TestExport_Rejections(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	resp, _ := env.do(t, "GET", "/api/v1/collections/items/export?format=xlsx", "")
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/api/v1/collections/bad-name/export", "")
	assert.Equal(t, 400, resp.StatusCode)
	assert.False(t, env.store.Called("each"))
}

func TestCellValue(t *testing.T) {
	oid := primitive.NewObjectID()
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{true, "true"},
		{int32(7), "7"},
		{int64(-2), "-2"},
		{1.5, "1.5"},
		{oid, oid.Hex()},
		{primitive.NewDateTimeFromTime(mustTime(t, "2024-01-02T03:04:05Z")), "2024-01-02T03:04:05Z"},
		{bson.D{{Key: "a", Value: int32(1)}}, `{"a":1}`},
		{bson.A{"x", int32(2)}, `["x",2]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellValue(tt.in))
	}
}
