package mongodb

import (
	"context"
	"errors"
	"testing"

	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	apperrors "mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/metrics"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func tasks(t *testing.T) namespace.PhysicalName {
	t.Helper()
	pn, err := namespace.Resolve("org1", "tasks")
	require.NoError(t, err)
	return pn
}

func TestDocumentRepository_Find(t *testing.T) {
	ctx := context.Background()
	pn := tasks(t)

	t.Run("should pass sort skip and limit to the driver", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").docs = []interface{}{bson.D{{Key: "title", Value: "A"}}}
		repo := NewDocumentRepository(db, nil)

		docs, err := repo.Find(ctx, pn, bson.D{{Key: "done", Value: false}}, repository.FindOptions{
			Sort:  bson.D{{Key: "_id", Value: -1}},
			Skip:  10,
			Limit: 5,
		})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "A", docs[0]["title"])

		c := db.coll("org1_tasks")
		assert.Equal(t, bson.D{{Key: "done", Value: false}}, c.lastFilter)
		require.NotNil(t, c.lastFindOpts)
		assert.Equal(t, bson.D{{Key: "_id", Value: -1}}, c.lastFindOpts.Sort)
		assert.Equal(t, int64(10), *c.lastFindOpts.Skip)
		assert.Equal(t, int64(5), *c.lastFindOpts.Limit)
		assert.True(t, c.cursor.closed)
	})

	t.Run("should return empty slice when nothing matches", func(t *testing.T) {
		repo := NewDocumentRepository(newFakeDatabase(), nil)
		docs, err := repo.Find(ctx, pn, bson.D{}, repository.FindOptions{})
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("should wrap driver failures without leaking them", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").err = errors.New("server selection timeout on 10.0.0.4")
		repo := NewDocumentRepository(db, nil)

		_, err := repo.Find(ctx, pn, bson.D{}, repository.FindOptions{})
		require.Error(t, err)
		assert.True(t, apperrors.IsStoreUnavailable(err))
		assert.NotContains(t, apperrors.PublicMessage(err), "10.0.0.4")
	})
}

func TestDocumentRepository_Sample(t *testing.T) {
	db := newFakeDatabase()
	db.coll("org1_tasks").docs = []interface{}{
		bson.D{{Key: "z", Value: 1}, {Key: "a", Value: "x"}},
	}
	repo := NewDocumentRepository(db, nil)

	docs, err := repo.Sample(context.Background(), tasks(t), 100)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "z", docs[0][0].Key)
	assert.Equal(t, "a", docs[0][1].Key)
	assert.Equal(t, int64(100), *db.coll("org1_tasks").lastFindOpts.Limit)
}

func TestDocumentRepository_FindOne(t *testing.T) {
	ctx := context.Background()

	t.Run("should map no documents to not found", func(t *testing.T) {
		repo := NewDocumentRepository(newFakeDatabase(), nil)
		_, err := repo.FindOne(ctx, tasks(t), bson.D{{Key: "_id", Value: "x"}})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("should decode the document", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").one = &fakeSingleResult{doc: bson.D{{Key: "_id", Value: "x"}, {Key: "n", Value: int32(3)}}}
		repo := NewDocumentRepository(db, nil)

		doc, err := repo.FindOne(ctx, tasks(t), bson.D{{Key: "_id", Value: "x"}})
		require.NoError(t, err)
		assert.Equal(t, int32(3), doc["n"])
	})
}

func TestDocumentRepository_Writes(t *testing.T) {
	ctx := context.Background()

	t.Run("should map duplicate keys to conflict", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").err = mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
		repo := NewDocumentRepository(db, nil)

		_, err := repo.InsertOne(ctx, tasks(t), bson.D{{Key: "_id", Value: "x"}})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("should insert many and return ids", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").ids = []interface{}{"a", "b"}
		repo := NewDocumentRepository(db, nil)

		ids, err := repo.InsertMany(ctx, tasks(t), []bson.D{{{Key: "_id", Value: "a"}}, {{Key: "_id", Value: "b"}}})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a", "b"}, ids)
		assert.Len(t, db.coll("org1_tasks").inserted, 2)
	})

	t.Run("should report matched for single and modified for bulk updates", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").update = fakeUpdateResult{matched: 3, modified: 2}
		repo := NewDocumentRepository(db, nil)

		matched, err := repo.UpdateOne(ctx, tasks(t), bson.D{}, bson.D{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), matched)

		modified, err := repo.UpdateMany(ctx, tasks(t), bson.D{}, bson.D{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), modified)
	})

	t.Run("should report deleted counts", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").delete = fakeDeleteResult{deleted: 4}
		repo := NewDocumentRepository(db, nil)

		n, err := repo.DeleteOne(ctx, tasks(t), bson.D{{Key: "_id", Value: "x"}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)

		n, err = repo.DeleteMany(ctx, tasks(t), bson.D{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestDocumentRepository_Each(t *testing.T) {
	ctx := context.Background()

	t.Run("should stream documents in order", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").docs = []interface{}{bson.D{{Key: "n", Value: int32(1)}}, bson.D{{Key: "n", Value: int32(2)}}}
		repo := NewDocumentRepository(db, nil)

		var seen []interface{}
		err := repo.Each(ctx, tasks(t), bson.D{}, bson.D{{Key: "n", Value: 1}}, func(d bson.D) error {
			seen = append(seen, d[0].Value)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{int32(1), int32(2)}, seen)
	})

	t.Run("should stop on callback error and close the cursor", func(t *testing.T) {
		db := newFakeDatabase()
		db.coll("org1_tasks").docs = []interface{}{bson.D{{Key: "n", Value: int32(1)}}, bson.D{{Key: "n", Value: int32(2)}}}
		repo := NewDocumentRepository(db, nil)

		stop := errors.New("client went away")
		calls := 0
		err := repo.Each(ctx, tasks(t), bson.D{}, nil, func(bson.D) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
		assert.True(t, db.coll("org1_tasks").cursor.closed)
	})
}

func TestDocumentRepository_Aggregate(t *testing.T) {
	db := newFakeDatabase()
	db.coll("org1_tasks").docs = []interface{}{bson.D{{Key: "_id", Value: "open"}, {Key: "n", Value: int32(2)}}}
	repo := NewDocumentRepository(db, nil)

	pipeline := bson.A{bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}}}}}
	out, err := repo.Aggregate(context.Background(), tasks(t), pipeline)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "open", out[0]["_id"])
	assert.Equal(t, pipeline, db.coll("org1_tasks").lastPipeline)
}

func TestDocumentRepository_RecordsOutcome(t *testing.T) {
	ctx := context.Background()
	pn := tasks(t)
	okCounter := metrics.StoreOperations.WithLabelValues("find", "ok")
	errCounter := metrics.StoreOperations.WithLabelValues("find", "error")

	repo := NewDocumentRepository(newFakeDatabase(), nil)
	okBefore := promtestutil.ToFloat64(okCounter)
	_, err := repo.Find(ctx, pn, bson.D{}, repository.FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, okBefore+1, promtestutil.ToFloat64(okCounter))

	db := newFakeDatabase()
	db.coll("org1_tasks").err = errors.New("down")
	repo = NewDocumentRepository(db, nil)
	errBefore := promtestutil.ToFloat64(errCounter)
	_, err = repo.Find(ctx, pn, bson.D{}, repository.FindOptions{})
	require.Error(t, err)
	assert.Equal(t, errBefore+1, promtestutil.ToFloat64(errCounter))
	assert.Equal(t, okBefore+1, promtestutil.ToFloat64(okCounter))
}
