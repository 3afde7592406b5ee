package mongodb

import (
	"context"

	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository implements repository.DocumentRepository over one database.
type DocumentRepository struct {
	db  DatabaseInterface
	log logger.Logger
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a document repository.
func NewDocumentRepository(db DatabaseInterface, log logger.Logger) *DocumentRepository {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &DocumentRepository{db: db, log: log.WithComponent("document_repository")}
}

func (r *DocumentRepository) coll(name namespace.PhysicalName) CollectionInterface {
	return r.db.Collection(name.String())
}

func (r *DocumentRepository) Find(ctx context.Context, name namespace.PhysicalName, filter bson.D, opts repository.FindOptions) (_ []bson.M, err error) {
	defer observe("find", &err)
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	cur, err := r.coll(name).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, translate("find", err)
	}
	docs := []bson.M{}
	if err := drain(ctx, cur, func() error {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	}); err != nil {
		return nil, translate("find", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Count(ctx context.Context, name namespace.PhysicalName, filter bson.D) (_ int64, err error) {
	defer observe("count", &err)
	n, err := r.coll(name).CountDocuments(ctx, filter)
	if err != nil {
		return 0, translate("count", err)
	}
	return n, nil
}

func (r *DocumentRepository) Sample(ctx context.Context, name namespace.PhysicalName, limit int64) (_ []bson.D, err error) {
	defer observe("sample", &err)
	cur, err := r.coll(name).Find(ctx, bson.D{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, translate("sample", err)
	}
	var docs []bson.D
	if err := drain(ctx, cur, func() error {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	}); err != nil {
		return nil, translate("sample", err)
	}
	return docs, nil
}

func (r *DocumentRepository) FindOne(ctx context.Context, name namespace.PhysicalName, filter bson.D) (_ bson.M, err error) {
	defer observe("find_one", &err)
	var doc bson.M
	if err := r.coll(name).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate("find_one", err)
	}
	return doc, nil
}

func (r *DocumentRepository) InsertOne(ctx context.Context, name namespace.PhysicalName, doc bson.D) (_ interface{}, err error) {
	defer observe("insert_one", &err)
	id, err := r.coll(name).InsertOne(ctx, doc)
	if err != nil {
		return nil, translate("insert_one", err)
	}
	return id, nil
}

func (r *DocumentRepository) InsertMany(ctx context.Context, name namespace.PhysicalName, docs []bson.D) (_ []interface{}, err error) {
	defer observe("insert_many", &err)
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	ids, err := r.coll(name).InsertMany(ctx, batch)
	if err != nil {
		return nil, translate("insert_many", err)
	}
	return ids, nil
}

func (r *DocumentRepository) UpdateOne(ctx context.Context, name namespace.PhysicalName, filter, update bson.D) (_ int64, err error) {
	defer observe("update_one", &err)
	res, err := r.coll(name).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, translate("update_one", err)
	}
	return res.Matched(), nil
}

func (r *DocumentRepository) UpdateMany(ctx context.Context, name namespace.PhysicalName, filter, update bson.D) (_ int64, err error) {
	defer observe("update_many", &err)
	res, err := r.coll(name).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, translate("update_many", err)
	}
	return res.Modified(), nil
}

func (r *DocumentRepository) DeleteOne(ctx context.Context, name namespace.PhysicalName, filter bson.D) (_ int64, err error) {
	defer observe("delete_one", &err)
	res, err := r.coll(name).DeleteOne(ctx, filter)
	if err != nil {
		return 0, translate("delete_one", err)
	}
	return res.Deleted(), nil
}

func (r *DocumentRepository) DeleteMany(ctx context.Context, name namespace.PhysicalName, filter bson.D) (_ int64, err error) {
	defer observe("delete_many", &err)
	res, err := r.coll(name).DeleteMany(ctx, filter)
	if err != nil {
		return 0, translate("delete_many", err)
	}
	return res.Deleted(), nil
}

func (r *DocumentRepository) Aggregate(ctx context.Context, name namespace.PhysicalName, pipeline bson.A) (_ []bson.M, err error) {
	defer observe("aggregate", &err)
	cur, err := r.coll(name).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate("aggregate", err)
	}
	out := []bson.M{}
	if err := drain(ctx, cur, func() error {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		out = append(out, doc)
		return nil
	}); err != nil {
		return nil, translate("aggregate", err)
	}
	return out, nil
}

// Each streams documents without buffering the whole result.
func (r *DocumentRepository) Each(ctx context.Context, name namespace.PhysicalName, filter bson.D, sort bson.D, fn func(bson.D) error) (err error) {
	defer observe("export", &err)
	findOpts := options.Find()
	if len(sort) > 0 {
		findOpts.SetSort(sort)
	}
	cur, err := r.coll(name).Find(ctx, filter, findOpts)
	if err != nil {
		return translate("export", err)
	}
	var cbErr error
	err = drain(ctx, cur, func() error {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			cbErr = err
			return err
		}
		return nil
	})
	if cbErr != nil {
		return cbErr
	}
	return translate("export", err)
}

// drain iterates cur, calling step for each document, and always closes it.
func drain(ctx context.Context, cur CursorInterface, step func() error) error {
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		if err := step(); err != nil {
			return err
		}
	}
	return cur.Err()
}
