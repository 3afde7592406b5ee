package service

import (
	"context"
	"errors"
	"testing"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/testutil"
	apperrors "mongo-admin/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newQueryService(store *testutil.MemStore) *QueryService {
	return NewQueryService(store, NewQueryPlanner(DefaultPlannerOptions(), nil), nil)
}

func TestQueryService_GetPage(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	catalog := newCatalog(store)
	pn, err := catalog.CreateCollection(ctx, "org1", "items", nil)
	require.NoError(t, err)
	for i := 1; i <= 25; i++ {
		store.Seed(pn.String(), bson.D{{Key: "_id", Value: i}, {Key: "even", Value: i%2 == 0}})
	}
	svc := newQueryService(store)

	t.Run("should return one page with total and pages", func(t *testing.T) {
		page, err := svc.GetPage(ctx, pn, model.QueryParams{Page: "2", Limit: "10"})
		require.NoError(t, err)
		assert.Len(t, page.Documents, 10)
		assert.Equal(t, int64(25), page.Total)
		assert.Equal(t, int64(3), page.Pages)
		assert.Equal(t, 15, page.Documents[0]["_id"])
	})

	t.Run("should return the same set on repeated calls", func(t *testing.T) {
		first, err := svc.GetPage(ctx, pn, model.QueryParams{Page: "1", Limit: "5"})
		require.NoError(t, err)
		second, err := svc.GetPage(ctx, pn, model.QueryParams{Page: "1", Limit: "5"})
		require.NoError(t, err)
		assert.Equal(t, first.Documents, second.Documents)
	})

	t.Run("should count with the same filter", func(t *testing.T) {
		page, err := svc.GetPage(ctx, pn, model.QueryParams{Filter: `{"even": true}`, Limit: "3"})
		require.NoError(t, err)
		assert.Len(t, page.Documents, 3)
		assert.Equal(t, int64(12), page.Total)
	})

	t.Run("should return empty data past the last page", func(t *testing.T) {
		page, err := svc.GetPage(ctx, pn, model.QueryParams{Page: "9", Limit: "10"})
		require.NoError(t, err)
		assert.NotNil(t, page.Documents)
		assert.Empty(t, page.Documents)
	})

	t.Run("should propagate store failures", func(t *testing.T) {
		failing := testutil.NewMemStore()
		failing.Fail["count"] = apperrors.NewStoreUnavailableError("count", errors.New("timeout"))
		_, err := newQueryService(failing).GetPage(ctx, pn, model.QueryParams{})
		assert.True(t, apperrors.IsStoreUnavailable(err))
	})
}

func TestQueryService_FindByID(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	pn, err := newCatalog(store).CreateCollection(ctx, "org1", "tasks", []bson.D{
		{{Key: "_id", Value: "t-1"}, {Key: "title", Value: "A"}},
	})
	require.NoError(t, err)
	svc := newQueryService(store)

	doc, err := svc.FindByID(ctx, pn, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "A", doc["title"])

	_, err = svc.FindByID(ctx, pn, "t-2")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestQueryService_Aggregate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	pn, err := newCatalog(store).CreateCollection(ctx, "org1", "tasks", []bson.D{
		{{Key: "done", Value: true}},
		{{Key: "done", Value: false}},
	})
	require.NoError(t, err)
	svc := newQueryService(store)

	t.Run("should run guarded pipeline", func(t *testing.T) {
		out, err := svc.Aggregate(ctx, pn, []bson.D{{{Key: "$match", Value: bson.D{{Key: "done", Value: true}}}}})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("should reject cross-collection stages", func(t *testing.T) {
		_, err := svc.Aggregate(ctx, pn, []bson.D{{{Key: "$lookup", Value: bson.D{{Key: "from", Value: "org2_secrets"}}}}})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestQueryService_Export(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	pn, err := newCatalog(store).CreateCollection(ctx, "org1", "tasks", nil)
	require.NoError(t, err)
	for i := 1; i <= 30; i++ {
		store.Seed(pn.String(), bson.D{{Key: "_id", Value: i}})
	}

	var seen []interface{}
	err = newQueryService(store).Export(ctx, pn, model.QueryParams{Limit: "5", SortBy: "_id", SortOrder: "asc"}, func(d bson.D) error {
		seen = append(seen, d[0].Value)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 30)
	assert.Equal(t, 1, seen[0])
}

func TestEndToEnd_TasksScenario(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	catalog := newCatalog(store)

	pn, err := catalog.CreateCollection(ctx, "org1", "tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, "org1_tasks", pn.String())

	gw := NewMutationGateway(store, nil)
	_, err = gw.Insert(ctx, pn, bson.D{{Key: "title", Value: "A"}, {Key: "done", Value: false}})
	require.NoError(t, err)
	_, err = gw.Insert(ctx, pn, bson.D{{Key: "title", Value: "B"}, {Key: "done", Value: nil}})
	require.NoError(t, err)

	schema, err := NewSchemaInferenceService(store, 100, nil).Describe(ctx, pn)
	require.NoError(t, err)

	title := schema.Field("title")
	require.NotNil(t, title)
	assert.Equal(t, []model.TypeTag{model.TypeString}, title.Types)
	assert.False(t, title.Nullable)

	done := schema.Field("done")
	require.NotNil(t, done)
	assert.Equal(t, []model.TypeTag{model.TypeBoolean, model.TypeNull}, done.Types)
	assert.True(t, done.Nullable)

	page, err := newQueryService(store).GetPage(ctx, pn, model.QueryParams{Page: "1", Limit: "1"})
	require.NoError(t, err)
	assert.Len(t, page.Documents, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "B", page.Documents[0]["title"])
}
