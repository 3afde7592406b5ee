package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_UpsertKeepsFirstSeenOrder(t *testing.T) {
	s := NewSchema()
	s.Upsert("z")
	s.Upsert("a")
	s.Upsert("z")
	assert.Equal(t, []string{"z", "a"}, s.Names())
	assert.Equal(t, 2, s.Len())
	assert.Nil(t, s.Field("missing"))
}

func TestSchema_MarshalJSON(t *testing.T) {
	s := NewSchema()
	title := s.Upsert("title")
	title.Types = append(title.Types, TypeString)
	title.Examples = append(title.Examples, "A")
	done := s.Upsert("done")
	done.Types = append(done.Types, TypeBoolean, TypeNull)
	done.Nullable = true

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"title":{"types":["string"],"nullable":false,"examples":["A"]},"done":{"types":["boolean","null"],"nullable":true,"examples":[]}}`,
		string(raw))
	assert.Less(t, strings.Index(string(raw), `"title"`), strings.Index(string(raw), `"done"`))
}

func TestSchema_NilAndEmpty(t *testing.T) {
	var s *Schema
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Fields())

	raw, err := json.Marshal(NewSchema())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestFieldSchema_HasType(t *testing.T) {
	f := &FieldSchema{Types: []TypeTag{TypeNumber}}
	assert.True(t, f.HasType(TypeNumber))
	assert.False(t, f.HasType(TypeNull))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 20))
	assert.Equal(t, int64(1), TotalPages(20, 20))
	assert.Equal(t, int64(2), TotalPages(21, 20))
	assert.Equal(t, int64(0), TotalPages(5, 0))
}

func TestMutationResult_Affected(t *testing.T) {
	assert.Equal(t, int64(4), (&MutationResult{Kind: MutationImport, InsertedCount: 4}).Affected())
	assert.Equal(t, int64(1), (&MutationResult{Kind: MutationSingleUpdate, MatchedCount: 1}).Affected())
	assert.Equal(t, int64(7), (&MutationResult{Kind: MutationBulkUpdate, ModifiedCount: 7}).Affected())
	assert.Equal(t, int64(2), (&MutationResult{Kind: MutationBulkDelete, DeletedCount: 2}).Affected())
}
