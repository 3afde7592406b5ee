package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --- Shared fakes for the mongodb package tests ---

func roundTrip(src, dst interface{}) error {
	raw, err := bson.Marshal(src)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, dst)
}

type fakeSingleResult struct {
	doc interface{}
	err error
}

func (r *fakeSingleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	if r.doc == nil {
		return mongo.ErrNoDocuments
	}
	return roundTrip(r.doc, v)
}

type fakeCursor struct {
	docs   []interface{}
	idx    int
	err    error
	closed bool
}

func (c *fakeCursor) Next(context.Context) bool {
	if c.idx >= len(c.docs) {
		return false
	}
	c.idx++
	return true
}

func (c *fakeCursor) Decode(val interface{}) error { return roundTrip(c.docs[c.idx-1], val) }
func (c *fakeCursor) Err() error                   { return c.err }

func (c *fakeCursor) Close(context.Context) error {
	c.closed = true
	return nil
}

type fakeUpdateResult struct{ matched, modified int64 }

func (r fakeUpdateResult) Matched() int64  { return r.matched }
func (r fakeUpdateResult) Modified() int64 { return r.modified }

type fakeDeleteResult struct{ deleted int64 }

func (r fakeDeleteResult) Deleted() int64 { return r.deleted }

type fakeCollection struct {
	name string

	docs   []interface{}
	cursor *fakeCursor
	one    *fakeSingleResult
	count  int64
	ids    []interface{}
	update fakeUpdateResult
	delete fakeDeleteResult
	err    error

	lastFilter   interface{}
	lastUpdate   interface{}
	lastFindOpts *options.FindOptions
	lastUpdOpts  []*options.UpdateOptions
	lastPipeline interface{}
	inserted     []interface{}
	dropped      bool
}

func (c *fakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	c.lastFilter = filter
	return c.count, c.err
}

func (c *fakeCollection) InsertOne(_ context.Context, doc interface{}) (interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.inserted = append(c.inserted, doc)
	if len(c.ids) > 0 {
		return c.ids[0], nil
	}
	return "generated", nil
}

func (c *fakeCollection) InsertMany(_ context.Context, docs []interface{}) ([]interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.inserted = append(c.inserted, docs...)
	return c.ids, nil
}

func (c *fakeCollection) FindOne(_ context.Context, filter interface{}) SingleResultInterface {
	c.lastFilter = filter
	if c.one != nil {
		return c.one
	}
	return &fakeSingleResult{err: c.err}
}

func (c *fakeCollection) UpdateOne(_ context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (UpdateResultInterface, error) {
	c.lastFilter, c.lastUpdate, c.lastUpdOpts = filter, update, opts
	if c.err != nil {
		return nil, c.err
	}
	return c.update, nil
}

func (c *fakeCollection) UpdateMany(_ context.Context, filter, update interface{}) (UpdateResultInterface, error) {
	c.lastFilter, c.lastUpdate = filter, update
	if c.err != nil {
		return nil, c.err
	}
	return c.update, nil
}

func (c *fakeCollection) DeleteOne(_ context.Context, filter interface{}) (DeleteResultInterface, error) {
	c.lastFilter = filter
	if c.err != nil {
		return nil, c.err
	}
	return c.delete, nil
}

func (c *fakeCollection) DeleteMany(_ context.Context, filter interface{}) (DeleteResultInterface, error) {
	c.lastFilter = filter
	if c.err != nil {
		return nil, c.err
	}
	return c.delete, nil
}

func (c *fakeCollection) Find(_ context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	c.lastFilter = filter
	if len(opts) > 0 {
		c.lastFindOpts = opts[0]
	}
	if c.err != nil {
		return nil, c.err
	}
	c.cursor = &fakeCursor{docs: c.docs}
	return c.cursor, nil
}

func (c *fakeCollection) Aggregate(_ context.Context, pipeline interface{}, _ ...*options.AggregateOptions) (CursorInterface, error) {
	c.lastPipeline = pipeline
	if c.err != nil {
		return nil, c.err
	}
	c.cursor = &fakeCursor{docs: c.docs}
	return c.cursor, nil
}

func (c *fakeCollection) Drop(context.Context) error {
	c.dropped = true
	return c.err
}

type fakeDatabase struct {
	collections map[string]*fakeCollection
	names       []string
	listErr     error
	createErr   error
	stats       *fakeSingleResult

	lastListFilter interface{}
	lastCommand    interface{}
	created        []string
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{collections: map[string]*fakeCollection{}}
}

func (d *fakeDatabase) coll(name string) *fakeCollection {
	c, ok := d.collections[name]
	if !ok {
		c = &fakeCollection{name: name}
		d.collections[name] = c
	}
	return c
}

func (d *fakeDatabase) Collection(name string) CollectionInterface { return d.coll(name) }

func (d *fakeDatabase) ListCollectionNames(_ context.Context, filter interface{}, _ ...*options.ListCollectionsOptions) ([]string, error) {
	d.lastListFilter = filter
	return d.names, d.listErr
}

func (d *fakeDatabase) CreateCollection(_ context.Context, name string) error {
	if d.createErr != nil {
		return d.createErr
	}
	d.created = append(d.created, name)
	return nil
}

func (d *fakeDatabase) RunCommand(_ context.Context, cmd interface{}) SingleResultInterface {
	d.lastCommand = cmd
	if d.stats == nil {
		return &fakeSingleResult{}
	}
	return d.stats
}
