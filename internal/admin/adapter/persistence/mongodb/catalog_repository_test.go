package mongodb

import (
	"context"
	"errors"
	"testing"

	"mongo-admin/internal/admin/domain/namespace"
	apperrors "mongo-admin/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCatalogRepository_ListNames(t *testing.T) {
	db := newFakeDatabase()
	db.names = []string{"org1_tasks", "org1_notes"}
	repo := NewCatalogRepository(db, nil)

	names, err := repo.ListNames(context.Background(), "org.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"org1_tasks", "org1_notes"}, names)

	filter, ok := db.lastListFilter.(bson.D)
	require.True(t, ok)
	assert.Equal(t, primitive.Regex{Pattern: `^org\.1_`}, filter[0].Value)
}

func TestCatalogRepository_Exists(t *testing.T) {
	db := newFakeDatabase()
	repo := NewCatalogRepository(db, nil)
	pn, _ := namespace.Resolve("org1", "tasks")

	exists, err := repo.Exists(context.Background(), pn)
	require.NoError(t, err)
	assert.False(t, exists)

	db.names = []string{"org1_tasks"}
	exists, err = repo.Exists(context.Background(), pn)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, bson.D{{Key: "name", Value: "org1_tasks"}}, db.lastListFilter)
}

func TestCatalogRepository_Create(t *testing.T) {
	pn, _ := namespace.Resolve("org1", "tasks")

	t.Run("should create the physical collection", func(t *testing.T) {
		db := newFakeDatabase()
		require.NoError(t, NewCatalogRepository(db, nil).Create(context.Background(), pn))
		assert.Equal(t, []string{"org1_tasks"}, db.created)
	})

	t.Run("should map namespace exists to conflict", func(t *testing.T) {
		db := newFakeDatabase()
		db.createErr = mongo.CommandError{Code: 48, Name: "NamespaceExists", Message: "collection already exists"}
		err := NewCatalogRepository(db, nil).Create(context.Background(), pn)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestCatalogRepository_Drop(t *testing.T) {
	db := newFakeDatabase()
	pn, _ := namespace.Resolve("org1", "tasks")

	require.NoError(t, NewCatalogRepository(db, nil).Drop(context.Background(), pn))
	assert.True(t, db.coll("org1_tasks").dropped)
}

func TestCatalogRepository_StorageSize(t *testing.T) {
	pn, _ := namespace.Resolve("org1", "tasks")

	t.Run("should read size from collStats", func(t *testing.T) {
		db := newFakeDatabase()
		db.stats = &fakeSingleResult{doc: bson.D{{Key: "ns", Value: "db.org1_tasks"}, {Key: "size", Value: int32(2048)}}}

		size, err := NewCatalogRepository(db, nil).StorageSize(context.Background(), pn)
		require.NoError(t, err)
		assert.Equal(t, int64(2048), size)
		assert.Equal(t, bson.D{{Key: "collStats", Value: "org1_tasks"}}, db.lastCommand)
	})

	t.Run("should accept double sizes", func(t *testing.T) {
		db := newFakeDatabase()
		db.stats = &fakeSingleResult{doc: bson.D{{Key: "size", Value: 4096.0}}}

		size, err := NewCatalogRepository(db, nil).StorageSize(context.Background(), pn)
		require.NoError(t, err)
		assert.Equal(t, int64(4096), size)
	})

	t.Run("should fail when stats are unavailable", func(t *testing.T) {
		db := newFakeDatabase()
		db.stats = &fakeSingleResult{err: errors.New("unauthorized")}

		_, err := NewCatalogRepository(db, nil).StorageSize(context.Background(), pn)
		assert.Error(t, err)
	})
}
